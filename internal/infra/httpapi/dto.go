package httpapi

import (
	"time"

	"isitpayday/internal/app"
	"isitpayday/internal/domain/payday"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// StateDTO is one profile's latest tracker state. NextPayday is "unknown" when the last
// computation failed.
type StateDTO struct {
	ProfileID  int64  `json:"profile_id"`
	Name       string `json:"name"`
	IsPayday   bool   `json:"is_payday"`
	NextPayday string `json:"next_payday"`
	Degraded   bool   `json:"degraded"`
	Error      string `json:"error,omitempty"`
	RunID      string `json:"run_id"`
	UpdatedAt  string `json:"updated_at"`
}

func toStateDTO(st app.State) StateDTO {
	return StateDTO{
		ProfileID:  st.ProfileID,
		Name:       st.Name,
		IsPayday:   st.IsPayday,
		NextPayday: st.NextPaydayString(),
		Degraded:   st.Degraded,
		Error:      st.Error,
		RunID:      st.RunID,
		UpdatedAt:  st.UpdatedAt.Format(time.RFC3339),
	}
}

// ComputeRequest carries engine parameters plus an optional reference date.
type ComputeRequest struct {
	payday.Params
	Today string `json:"today,omitempty"`
}

type ComputeResponse struct {
	NextPayday string `json:"next_payday"`
	IsPayday   bool   `json:"is_payday"`
	Degraded   bool   `json:"degraded"`
	Periods    int    `json:"periods"`
	Today      string `json:"today"`
	Policy     string `json:"today_policy"`
}

type ProfileDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	payday.Params
}

func toProfileDTO(p *payday.Profile) ProfileDTO {
	return ProfileDTO{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		Params:    payday.ParamsOf(p.Config),
	}
}

type CreateProfileRequest struct {
	Name string `json:"name"`
	payday.Params
}
