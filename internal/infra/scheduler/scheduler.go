package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	refreshTimeout = 1 * time.Minute
	purgeTimeout   = 30 * time.Second
)

// Refresher recomputes the published payday states.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// CachePurger drops cached holiday data.
type CachePurger interface {
	Purge(ctx context.Context) error
}

type PaydayScheduler struct {
	cronEngine         *cron.Cron
	refresher          Refresher
	purger             CachePurger // may be nil
	logger             *logrus.Entry
	cronSpecPoll       string
	cronSpecCacheReset string
	resetEntry         cron.EntryID
}

func NewPaydayScheduler(
	refresher Refresher,
	purger CachePurger,
	logger *logrus.Entry,
	cronSpecPoll string, // e.g., "*/5 * * * *" (every 5 minutes)
	cronSpecCacheReset string, // e.g., "0 0 * * *" (local midnight)
) *PaydayScheduler {
	return &PaydayScheduler{
		cronEngine: cron.New(
			cron.WithLocation(time.Local), // Use server's local time for cron
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(logger))),
		),
		refresher:          refresher,
		purger:             purger,
		logger:             logger,
		cronSpecPoll:       cronSpecPoll,
		cronSpecCacheReset: cronSpecCacheReset,
	}
}

// Start registers the jobs, refreshes once synchronously so states exist before the
// first tick, and starts the cron engine.
func (s *PaydayScheduler) Start() error {
	s.logger.Info("Starting payday scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpecPoll, s.refresh); err != nil {
		return fmt.Errorf("could not add payday poll job %q: %w", s.cronSpecPoll, err)
	}

	if s.purger != nil {
		// Purge before refreshing so the first poll of the day sees the new day's holidays.
		id, err := s.cronEngine.AddFunc(s.cronSpecCacheReset, func() {
			s.purge()
			s.refresh()
		})
		if err != nil {
			return fmt.Errorf("could not add holiday cache reset job %q: %w", s.cronSpecCacheReset, err)
		}
		s.resetEntry = id
	}

	s.refresh()
	s.cronEngine.Start()
	s.logger.WithField("jobs", len(s.cronEngine.Entries())).Info("Payday scheduler started with jobs.")
	return nil
}

func (s *PaydayScheduler) refresh() {
	s.logger.Debug("Cron job triggered for payday refresh.")
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	if err := s.refresher.Refresh(ctx); err != nil {
		s.logger.WithError(err).Error("Error during payday refresh")
	}
}

func (s *PaydayScheduler) purge() {
	s.logger.Info("Cron job triggered for holiday cache reset.")
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()
	if err := s.purger.Purge(ctx); err != nil {
		s.logger.WithError(err).Error("Error during holiday cache reset")
	}
}

func (s *PaydayScheduler) Stop() {
	s.logger.Info("Stopping payday scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Payday scheduler gracefully stopped.")
}
