// internal/domain/payday/config.go
package payday

import (
	"strconv"
	"strings"
	"time"
)

// Frequency is how often payday recurs.
type Frequency string

const (
	FrequencyMonthly Frequency = "monthly"
	Frequency14Days  Frequency = "14_days"
	Frequency28Days  Frequency = "28_days"
	FrequencyWeekly  Frequency = "weekly"

	// Fixed-month intervals counted from the anchor date.
	FrequencyBimonthly  Frequency = "bimonthly"
	FrequencyQuarterly  Frequency = "quarterly"
	FrequencySemiannual Frequency = "semiannual"
	FrequencyAnnual     Frequency = "annual"
)

// IntervalDays returns the length of a fixed-day frequency.
func (f Frequency) IntervalDays() (int, bool) {
	switch f {
	case Frequency14Days:
		return 14, true
	case Frequency28Days:
		return 28, true
	}
	return 0, false
}

// IntervalMonths returns the length of a fixed-month frequency.
func (f Frequency) IntervalMonths() (int, bool) {
	switch f {
	case FrequencyBimonthly:
		return 2, true
	case FrequencyQuarterly:
		return 3, true
	case FrequencySemiannual:
		return 6, true
	case FrequencyAnnual:
		return 12, true
	}
	return 0, false
}

func (f Frequency) needsAnchor() bool {
	_, days := f.IntervalDays()
	_, months := f.IntervalMonths()
	return days || months
}

// MonthlyRule selects the day of the month for FrequencyMonthly.
type MonthlyRule string

const (
	RuleLastBankDay  MonthlyRule = "last_bank_day"
	RuleFirstBankDay MonthlyRule = "first_bank_day"
	RuleSpecificDay  MonthlyRule = "specific_day"
)

// TodayPolicy decides whether a payday falling on "today" is an acceptable result.
type TodayPolicy string

const (
	// TodayCounts accepts today. Required for an "is it payday" flag to ever be true.
	TodayCounts TodayPolicy = "today_counts"
	// StrictlyFuture only accepts dates after today.
	StrictlyFuture TodayPolicy = "strictly_future"
)

// DefaultTodayPolicy is applied when no policy is configured.
const DefaultTodayPolicy = TodayCounts

// ParseTodayPolicy parses a policy name; the empty string yields DefaultTodayPolicy.
func ParseTodayPolicy(s string) (TodayPolicy, error) {
	switch p := TodayPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DefaultTodayPolicy, nil
	case TodayCounts, StrictlyFuture:
		return p, nil
	}
	return "", validationError("today_policy", "must be %q or %q, got %q", TodayCounts, StrictlyFuture, s)
}

// Accepts reports whether d is an acceptable payday as seen from today.
func (p TodayPolicy) Accepts(d, today Date) bool {
	if p == StrictlyFuture {
		return d.After(today)
	}
	return !d.Before(today)
}

// MaxBankOffset caps BankOffset at one month of calendar days.
const MaxBankOffset = 31

// Config is an immutable recurrence policy for one jurisdiction.
type Config struct {
	Country     string
	Frequency   Frequency
	MonthlyRule MonthlyRule
	SpecificDay int
	AnchorDate  *Date
	Weekday     *time.Weekday
	BankOffset  int
}

// Validate checks the per-frequency requirements. Unknown frequency or rule tags are
// left for the resolver, which rejects them with a CalculationError.
func (c Config) Validate() error {
	if !isCountryCode(c.Country) {
		return validationError("country", "must be an ISO-3166 alpha-2 code, got %q", c.Country)
	}
	if c.Frequency == "" {
		return validationError("frequency", "is required")
	}
	if c.BankOffset < 0 || c.BankOffset > MaxBankOffset {
		return validationError("bank_offset", "must be between 0 and %d, got %d", MaxBankOffset, c.BankOffset)
	}

	switch {
	case c.Frequency == FrequencyMonthly:
		if c.MonthlyRule == "" {
			return validationError("monthly_rule", "is required for monthly frequency")
		}
		if c.MonthlyRule == RuleSpecificDay && (c.SpecificDay < 1 || c.SpecificDay > 31) {
			return validationError("specific_day", "must be between 1 and 31, got %d", c.SpecificDay)
		}
	case c.Frequency == FrequencyWeekly:
		if c.Weekday == nil {
			return validationError("weekday", "is required for weekly frequency")
		}
		if *c.Weekday < time.Sunday || *c.Weekday > time.Saturday {
			return validationError("weekday", "is out of range: %d", int(*c.Weekday))
		}
	case c.Frequency.needsAnchor():
		if c.AnchorDate == nil {
			return validationError("anchor_date", "is required for %s frequency", c.Frequency)
		}
		if !c.AnchorDate.IsValid() {
			return validationError("anchor_date", "is not a valid date: %s", c.AnchorDate)
		}
	}
	return nil
}

func isCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

var weekdayNames = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// WeekdayFromIndex converts the stored weekday index (0=Monday .. 6=Sunday).
func WeekdayFromIndex(i int) (time.Weekday, error) {
	if i < 0 || i > 6 {
		return 0, validationError("weekday", "must be between 0 (Monday) and 6 (Sunday), got %d", i)
	}
	return time.Weekday((i + 1) % 7), nil
}

// WeekdayIndex is the inverse of WeekdayFromIndex.
func WeekdayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// ParseWeekday accepts an index (0=Monday) or an English weekday name.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if i, err := strconv.Atoi(s); err == nil {
		return WeekdayFromIndex(i)
	}
	if wd, ok := weekdayNames[s]; ok {
		return wd, nil
	}
	return 0, validationError("weekday", "unknown weekday %q", s)
}

// Params is the loose form of a Config accepted at the engine entry point.
type Params struct {
	Country     string `json:"country"`
	Frequency   string `json:"frequency"`
	MonthlyRule string `json:"monthly_rule,omitempty"`
	SpecificDay *int   `json:"specific_day,omitempty"`
	AnchorDate  string `json:"anchor_date,omitempty"`
	Weekday     *int   `json:"weekday,omitempty"`
	BankOffset  *int   `json:"bank_offset,omitempty"`
}

// Config converts p into a validated Config.
func (p Params) Config() (Config, error) {
	cfg := Config{
		Country:     strings.ToUpper(strings.TrimSpace(p.Country)),
		Frequency:   Frequency(strings.ToLower(strings.TrimSpace(p.Frequency))),
		MonthlyRule: MonthlyRule(strings.ToLower(strings.TrimSpace(p.MonthlyRule))),
	}
	if p.SpecificDay != nil {
		cfg.SpecificDay = *p.SpecificDay
	}
	if p.BankOffset != nil {
		cfg.BankOffset = *p.BankOffset
	}
	if p.AnchorDate != "" {
		anchor, err := ParseDate(strings.TrimSpace(p.AnchorDate))
		if err != nil {
			return Config{}, validationError("anchor_date", "must be YYYY-MM-DD: %v", err)
		}
		cfg.AnchorDate = &anchor
	}
	if p.Weekday != nil {
		wd, err := WeekdayFromIndex(*p.Weekday)
		if err != nil {
			return Config{}, err
		}
		cfg.Weekday = &wd
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParamsOf is the inverse of Params.Config, used when a Config leaves the process.
func ParamsOf(c Config) Params {
	p := Params{
		Country:     c.Country,
		Frequency:   string(c.Frequency),
		MonthlyRule: string(c.MonthlyRule),
	}
	if c.SpecificDay != 0 {
		day := c.SpecificDay
		p.SpecificDay = &day
	}
	if c.BankOffset != 0 {
		offset := c.BankOffset
		p.BankOffset = &offset
	}
	if c.AnchorDate != nil {
		p.AnchorDate = c.AnchorDate.String()
	}
	if c.Weekday != nil {
		idx := WeekdayIndex(*c.Weekday)
		p.Weekday = &idx
	}
	return p
}
