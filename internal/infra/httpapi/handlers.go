package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"isitpayday/internal/app"
	"isitpayday/internal/domain/payday"
	"isitpayday/internal/infra/holidays"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// Tracker is the part of app.TrackerService the API reads and refreshes.
type Tracker interface {
	States() []app.State
	State(profileID int64) (app.State, bool)
	Refresh(ctx context.Context) error
}

// CountryLister returns the countries holidays can be fetched for.
type CountryLister interface {
	AvailableCountries(ctx context.Context) ([]holidays.Country, error)
}

// Handler holds dependencies for the HTTP handlers.
type Handler struct {
	Engine    *app.PaydayEngine
	Tracker   Tracker
	Profiles  *app.ProfileService
	Countries CountryLister
	Logger    *logrus.Entry
	Now       func() time.Time
	APIToken  string // bearer token for profile changes; empty disables them
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// ListPaydays returns the latest state of every profile.
func (h *Handler) ListPaydays(w http.ResponseWriter, r *http.Request) {
	states := h.Tracker.States()
	out := make([]StateDTO, 0, len(states))
	for _, st := range states {
		out = append(out, toStateDTO(st))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetPayday returns the latest state of one profile.
func (h *Handler) GetPayday(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	st, found := h.Tracker.State(id)
	if !found {
		writeError(w, http.StatusNotFound, "Payday state not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toStateDTO(st))
}

// Compute runs the engine for an ad-hoc configuration.
func (h *Handler) Compute(w http.ResponseWriter, r *http.Request) {
	var req ComputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	today := payday.DateOf(h.now())
	if req.Today != "" {
		d, err := payday.ParseDate(req.Today)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid today, want YYYY-MM-DD", err)
			return
		}
		today = d
	}

	res, err := h.Engine.ComputeParams(r.Context(), req.Params, today)
	switch {
	case errors.Is(err, payday.ErrValidation):
		writeError(w, http.StatusBadRequest, "Invalid payday configuration", err)
		return
	case errors.Is(err, payday.ErrCalculation):
		writeError(w, http.StatusUnprocessableEntity, "Unable to calculate payday", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to compute payday", err)
		return
	}

	writeJSON(w, http.StatusOK, ComputeResponse{
		NextPayday: res.Date.String(),
		IsPayday:   res.IsPayday(today),
		Degraded:   res.Degraded,
		Periods:    res.Periods,
		Today:      today.String(),
		Policy:     string(h.Engine.Policy()),
	})
}

// ListProfiles returns the stored profiles.
func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Profiles.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list profiles", err)
		return
	}
	out := make([]ProfileDTO, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toProfileDTO(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateProfile validates and stores a profile.
func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := h.Profiles.AddProfile(r.Context(), req.Name, req.Params)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrProfileNameRequired):
			writeError(w, http.StatusBadRequest, "Profile name is required", nil)
		case errors.Is(err, payday.ErrValidation):
			writeError(w, http.StatusBadRequest, "Invalid payday configuration", err)
		case errors.Is(err, payday.ErrCalculation):
			writeError(w, http.StatusUnprocessableEntity, "Unable to calculate payday", err)
		case errors.Is(err, payday.ErrDuplicateProfileName):
			writeError(w, http.StatusConflict, "Profile name already in use", err)
		case errors.Is(err, payday.ErrProfilesReadOnly):
			writeError(w, http.StatusForbidden, "Profiles are read-only without a database", err)
		default:
			writeError(w, http.StatusInternalServerError, "Failed to create profile", err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, toProfileDTO(p))
}

// DeleteProfile removes a profile.
func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.Profiles.RemoveProfile(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, payday.ErrProfileNotFound):
			writeError(w, http.StatusNotFound, "Profile not found", nil)
		case errors.Is(err, payday.ErrProfilesReadOnly):
			writeError(w, http.StatusForbidden, "Profiles are read-only without a database", err)
		default:
			writeError(w, http.StatusInternalServerError, "Failed to delete profile", err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RefreshPaydays recomputes every profile and returns the new states.
func (h *Handler) RefreshPaydays(w http.ResponseWriter, r *http.Request) {
	if err := h.Tracker.Refresh(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to refresh paydays", err)
		return
	}
	h.ListPaydays(w, r)
}

// ListCountries proxies the holiday source's country list.
func (h *Handler) ListCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.Countries.AvailableCountries(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to fetch supported countries", err)
		return
	}
	writeJSON(w, http.StatusOK, countries)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
