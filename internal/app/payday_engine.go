// internal/app/payday_engine.go
package app

import (
	"context"
	"fmt"
	"strings"

	"isitpayday/internal/domain/payday"

	"github.com/sirupsen/logrus"
)

// ComputeRecorder receives one observation per computation.
type ComputeRecorder interface {
	RecordCompute(frequency string, outcome string, degraded bool)
}

// Result is the outcome of one computation.
type Result struct {
	Date     payday.Date
	Degraded bool // Holiday data for at least one consulted year was unavailable
	Periods  int  // Periods tried before a date was accepted
}

// IsPayday reports whether the computed payday is today.
func (r Result) IsPayday(today payday.Date) bool {
	return r.Date == today
}

// PaydayEngine validates a configuration, gathers holidays and runs the resolver.
type PaydayEngine struct {
	holidays payday.HolidaySource
	policy   payday.TodayPolicy
	logger   *logrus.Entry
	recorder ComputeRecorder
}

func NewPaydayEngine(
	holidays payday.HolidaySource,
	policy payday.TodayPolicy,
	logger *logrus.Entry,
	recorder ComputeRecorder, // may be nil
) *PaydayEngine {
	if policy == "" {
		policy = payday.DefaultTodayPolicy
	}
	return &PaydayEngine{
		holidays: holidays,
		policy:   policy,
		logger:   logger,
		recorder: recorder,
	}
}

// Policy returns the acceptance policy applied to "today".
func (e *PaydayEngine) Policy() payday.TodayPolicy {
	return e.policy
}

// Compute returns the next payday for cfg as seen from today. Validation and calculation
// errors are returned; holiday fetch failures only degrade the result.
func (e *PaydayEngine) Compute(ctx context.Context, cfg payday.Config, today payday.Date) (Result, error) {
	log := e.logger.WithFields(logrus.Fields{
		"country":   cfg.Country,
		"frequency": cfg.Frequency,
		"today":     today.String(),
	})

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Warn("Rejected payday configuration")
		e.record(cfg, "invalid", false)
		return Result{}, err
	}

	book := newHolidayBook(ctx, e.holidays, strings.ToUpper(cfg.Country), log)
	book.load(today.Year)

	log.Debugf("Calculating next payday using frequency %s.", cfg.Frequency)
	date, periods, err := payday.Resolve(cfg, today, e.policy, book)
	if err != nil {
		log.WithError(err).Error("Unable to calculate a valid payday")
		e.record(cfg, "error", book.degraded)
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		e.record(cfg, "canceled", book.degraded)
		return Result{}, fmt.Errorf("payday computation canceled: %w", err)
	}

	log.WithFields(logrus.Fields{
		"payday":   date.String(),
		"periods":  periods,
		"degraded": book.degraded,
	}).Info("Next payday calculated")
	e.record(cfg, "ok", book.degraded)

	return Result{Date: date, Degraded: book.degraded, Periods: periods}, nil
}

// ComputeParams is the loose entry point: it builds the Config from params first.
func (e *PaydayEngine) ComputeParams(ctx context.Context, params payday.Params, today payday.Date) (Result, error) {
	cfg, err := params.Config()
	if err != nil {
		e.logger.WithError(err).Warn("Rejected payday parameters")
		e.record(payday.Config{Frequency: payday.Frequency(params.Frequency)}, "invalid", false)
		return Result{}, err
	}
	return e.Compute(ctx, cfg, today)
}

func (e *PaydayEngine) record(cfg payday.Config, outcome string, degraded bool) {
	if e.recorder != nil {
		e.recorder.RecordCompute(string(cfg.Frequency), outcome, degraded)
	}
}

// holidayBook loads holiday sets per year on first use, so walks across January 1st
// consult the right year. Fetch failures are absorbed into an empty set.
type holidayBook struct {
	ctx      context.Context
	source   payday.HolidaySource
	country  string
	logger   *logrus.Entry
	years    map[int]payday.HolidaySet
	degraded bool
}

func newHolidayBook(ctx context.Context, source payday.HolidaySource, country string, logger *logrus.Entry) *holidayBook {
	return &holidayBook{
		ctx:     ctx,
		source:  source,
		country: country,
		logger:  logger,
		years:   make(map[int]payday.HolidaySet),
	}
}

func (b *holidayBook) Contains(d payday.Date) bool {
	return b.load(d.Year).Contains(d)
}

func (b *holidayBook) load(year int) payday.HolidaySet {
	if set, ok := b.years[year]; ok {
		return set
	}

	set, err := b.source.Holidays(b.ctx, b.country, year)
	if err != nil {
		b.degraded = true
		b.logger.WithError(fmt.Errorf("%w: %v", payday.ErrHolidaySourceDegraded, err)).
			WithField("year", year).
			Warn("No holidays could be fetched. Using empty list.")
		set = payday.HolidaySet{}
	}
	b.years[year] = set
	return set
}
