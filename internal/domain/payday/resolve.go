// internal/domain/payday/resolve.go
package payday

// MaxPeriods bounds the advancement loop. Only a holiday set closing every business
// day for years could exhaust it.
const MaxPeriods = 64

// Resolver derives rule-only payday candidates, one per period.
type Resolver struct {
	cfg    Config
	today  Date
	policy TodayPolicy
}

func NewResolver(cfg Config, today Date, policy TodayPolicy) Resolver {
	return Resolver{cfg: cfg, today: today, policy: policy}
}

// Candidate returns the date satisfying the recurrence rule alone for the given period.
// Period 0 is the earliest period that can still produce an acceptable payday.
func (r Resolver) Candidate(period int) (Date, error) {
	switch r.cfg.Frequency {
	case FrequencyMonthly:
		return r.monthlyCandidate(period)
	case FrequencyWeekly:
		if r.cfg.Weekday == nil {
			return Date{}, validationError("weekday", "is required for weekly frequency")
		}
		return r.weeklyCandidate(period), nil
	}

	if n, ok := r.cfg.Frequency.IntervalDays(); ok {
		if r.cfg.AnchorDate == nil {
			return Date{}, validationError("anchor_date", "is required for %s frequency", r.cfg.Frequency)
		}
		return r.intervalCandidate(n, period), nil
	}
	if m, ok := r.cfg.Frequency.IntervalMonths(); ok {
		if r.cfg.AnchorDate == nil {
			return Date{}, validationError("anchor_date", "is required for %s frequency", r.cfg.Frequency)
		}
		return r.monthIntervalCandidate(m, period), nil
	}
	return Date{}, calculationError("unknown frequency %q", r.cfg.Frequency)
}

func (r Resolver) monthlyCandidate(period int) (Date, error) {
	year, month := addMonths(r.today.Year, r.today.Month, period)
	switch r.cfg.MonthlyRule {
	case RuleSpecificDay:
		return clampedDate(year, month, r.cfg.SpecificDay), nil
	case RuleFirstBankDay:
		return Date{Year: year, Month: month, Day: 1}, nil
	case RuleLastBankDay:
		return clampedDate(year, month, 31), nil
	}
	return Date{}, calculationError("unknown monthly rule %q", r.cfg.MonthlyRule)
}

// intervalCandidate steps from the anchor in n-day increments. The anchor is the last
// actual payday and is never recomputed.
func (r Resolver) intervalCandidate(n, period int) Date {
	anchor := *r.cfg.AnchorDate
	k := 1
	if gap := r.today.DaysSince(anchor); gap > n {
		k = gap / n
	}
	for !r.policy.Accepts(anchor.AddDays(k*n), r.today) {
		k++
	}
	return anchor.AddDays((k + period) * n)
}

func (r Resolver) monthIntervalCandidate(m, period int) Date {
	anchor := *r.cfg.AnchorDate
	at := func(k int) Date {
		year, month := addMonths(anchor.Year, anchor.Month, k*m)
		return clampedDate(year, month, anchor.Day)
	}

	k := 1
	if months := (r.today.Year-anchor.Year)*12 + int(r.today.Month) - int(anchor.Month); months > m {
		k = months / m
	}
	for !r.policy.Accepts(at(k), r.today) {
		k++
	}
	return at(k + period)
}

func (r Resolver) weeklyCandidate(period int) Date {
	ahead := (int(*r.cfg.Weekday) - int(WeekdayOf(r.today)) + 7) % 7
	if ahead == 0 && r.policy == StrictlyFuture {
		ahead = 7
	}
	return r.today.AddDays(ahead + 7*period)
}

// Settle turns a rule-only candidate into the business day paid in its period.
func (r Resolver) Settle(candidate Date, holidays Holidays) Date {
	if r.cfg.Frequency == FrequencyMonthly {
		switch r.cfg.MonthlyRule {
		case RuleFirstBankDay:
			return firstBusinessDayOnOrAfter(candidate, holidays)
		case RuleLastBankDay:
			lastBankDay := Adjust(candidate, holidays)
			return Adjust(lastBankDay.AddDays(-r.cfg.BankOffset), holidays)
		}
	}
	return Adjust(candidate, holidays)
}

// Resolve runs the advancement loop: each period's candidate is settled onto a business
// day before the acceptance test, and a rejected date escalates to the next period.
// It returns the payday and the number of periods tried.
func Resolve(cfg Config, today Date, policy TodayPolicy, holidays Holidays) (Date, int, error) {
	r := NewResolver(cfg, today, policy)
	for period := 0; period < MaxPeriods; period++ {
		candidate, err := r.Candidate(period)
		if err != nil {
			return Date{}, period, err
		}
		if d := r.Settle(candidate, holidays); policy.Accepts(d, today) {
			return d, period + 1, nil
		}
	}
	return Date{}, MaxPeriods, calculationError("no acceptable payday within %d periods", MaxPeriods)
}
