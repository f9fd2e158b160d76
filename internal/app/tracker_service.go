// internal/app/tracker_service.go
package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"isitpayday/internal/domain/payday"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UnknownPayday is published instead of a date when the computation failed.
const UnknownPayday = "unknown"

// State is the published view of one profile after a refresh.
type State struct {
	ProfileID  int64
	Name       string
	NextPayday *payday.Date // nil when the last computation failed
	IsPayday   bool
	Degraded   bool
	Error      string
	RunID      string
	UpdatedAt  time.Time
}

// NextPaydayString returns the ISO date, or UnknownPayday.
func (s State) NextPaydayString() string {
	if s.NextPayday == nil {
		return UnknownPayday
	}
	return s.NextPayday.String()
}

// Notifier announces that today is payday for a profile.
type Notifier interface {
	NotifyPayday(ctx context.Context, state State) error
}

// PaydayGauge exposes the distance to the next payday per profile.
type PaydayGauge interface {
	SetDaysUntilPayday(profile string, days int)
	ForgetProfile(profile string)
}

// TrackerService recomputes every profile's payday and keeps the latest states.
type TrackerService struct {
	engine   *PaydayEngine
	profiles payday.ProfileRepository
	notifier Notifier    // may be nil
	gauge    PaydayGauge // may be nil
	logger   *logrus.Entry
	now      func() time.Time

	refreshMu sync.Mutex // serializes Refresh

	mu       sync.RWMutex
	states   map[int64]State
	notified map[int64]payday.Date // last payday a notice was sent for
}

func NewTrackerService(
	engine *PaydayEngine,
	profiles payday.ProfileRepository,
	notifier Notifier,
	gauge PaydayGauge,
	logger *logrus.Entry,
) *TrackerService {
	return &TrackerService{
		engine:   engine,
		profiles: profiles,
		notifier: notifier,
		gauge:    gauge,
		logger:   logger,
		now:      time.Now,
		states:   make(map[int64]State),
		notified: make(map[int64]payday.Date),
	}
}

// SetClock replaces the wall clock, for tests.
func (s *TrackerService) SetClock(now func() time.Time) {
	s.now = now
}

// Refresh recomputes all profiles. A failed computation replaces the previous state with
// an unknown one rather than keeping a stale date.
func (s *TrackerService) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	runID := uuid.NewString()
	log := s.logger.WithField("run_id", runID)

	profiles, err := s.profiles.List(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list payday profiles")
		return fmt.Errorf("failed to list payday profiles: %w", err)
	}

	now := s.now()
	today := payday.DateOf(now)
	states := make(map[int64]State, len(profiles))
	failures := 0

	for _, p := range profiles {
		st := State{ProfileID: p.ID, Name: p.Name, RunID: runID, UpdatedAt: now}

		res, err := s.engine.Compute(ctx, p.Config, today)
		if err != nil {
			failures++
			st.Error = err.Error()
			log.WithError(err).WithField("profile_id", p.ID).Warn("Payday unknown for profile")
			if s.gauge != nil {
				s.gauge.ForgetProfile(p.Name)
			}
		} else {
			next := res.Date
			st.NextPayday = &next
			st.IsPayday = res.IsPayday(today)
			st.Degraded = res.Degraded
			if s.gauge != nil {
				s.gauge.SetDaysUntilPayday(p.Name, next.DaysSince(today))
			}
		}
		states[p.ID] = st
	}

	var due []State
	s.mu.Lock()
	for id, old := range s.states {
		if _, ok := states[id]; !ok {
			delete(s.notified, id)
			if s.gauge != nil {
				s.gauge.ForgetProfile(old.Name)
			}
		}
	}
	s.states = states
	for _, st := range states {
		if st.IsPayday && s.notified[st.ProfileID] != today {
			due = append(due, st)
		}
	}
	s.mu.Unlock()

	if s.notifier != nil {
		for _, st := range due {
			if err := s.notifier.NotifyPayday(ctx, st); err != nil {
				// Retried on the next refresh.
				log.WithError(err).WithField("profile_id", st.ProfileID).Error("Failed to send payday notice")
				continue
			}
			s.mu.Lock()
			s.notified[st.ProfileID] = today
			s.mu.Unlock()
		}
	}

	log.WithFields(logrus.Fields{
		"profiles": len(profiles),
		"failures": failures,
		"notices":  len(due),
	}).Info("Payday states refreshed")
	return nil
}

// States returns the latest states ordered by profile ID.
func (s *TrackerService) States() []State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]State, 0, len(s.states))
	for _, st := range s.states {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProfileID < out[j].ProfileID })
	return out
}

// State returns the latest state of one profile.
func (s *TrackerService) State(profileID int64) (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[profileID]
	return st, ok
}
