package payday_test

import (
	"testing"
	"time"

	"isitpayday/internal/domain/payday"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) payday.Date {
	t.Helper()
	d, err := payday.ParseDate(s)
	require.NoError(t, err)
	return d
}

func weekday(wd time.Weekday) *time.Weekday { return &wd }

func monthly(rule payday.MonthlyRule, day, offset int) payday.Config {
	return payday.Config{
		Country:     "DK",
		Frequency:   payday.FrequencyMonthly,
		MonthlyRule: rule,
		SpecificDay: day,
		BankOffset:  offset,
	}
}

func resolve(t *testing.T, cfg payday.Config, today string, policy payday.TodayPolicy, holidays payday.HolidaySet) payday.Date {
	t.Helper()
	d, _, err := payday.Resolve(cfg, date(t, today), policy, holidays)
	require.NoError(t, err)
	return d
}

func TestAdjust_WalksBackwardOverWeekendAndHolidays(t *testing.T) {
	none := payday.HolidaySet{}
	assert.Equal(t, date(t, "2024-05-31"), payday.Adjust(date(t, "2024-06-01"), none), "saturday -> friday")
	assert.Equal(t, date(t, "2024-05-31"), payday.Adjust(date(t, "2024-06-02"), none), "sunday -> friday")
	assert.Equal(t, date(t, "2024-06-03"), payday.Adjust(date(t, "2024-06-03"), none), "business day unchanged")

	holidays := payday.NewHolidaySet(date(t, "2024-05-31"), date(t, "2024-05-30"))
	assert.Equal(t, date(t, "2024-05-29"), payday.Adjust(date(t, "2024-06-02"), holidays))
}

func TestResolve_SpecificDayClampsToMonthEnd(t *testing.T) {
	// September 2024 has 30 days and the 30th is a Monday.
	got := resolve(t, monthly(payday.RuleSpecificDay, 31, 0), "2024-09-02", payday.TodayCounts, payday.HolidaySet{})
	assert.Equal(t, date(t, "2024-09-30"), got)

	// June 30th 2024 is a Sunday: clamp to the 30th, then adjust back to Friday.
	got = resolve(t, monthly(payday.RuleSpecificDay, 31, 0), "2024-06-03", payday.TodayCounts, payday.HolidaySet{})
	assert.Equal(t, date(t, "2024-06-28"), got)
}

func TestResolve_LastBankDayWithOffset(t *testing.T) {
	// April 30th 2025 is a Wednesday, so the 28th is returned.
	got := resolve(t, monthly(payday.RuleLastBankDay, 0, 2), "2025-04-01", payday.TodayCounts, payday.HolidaySet{})
	assert.Equal(t, date(t, "2025-04-28"), got)

	// September 30th 2025 is a Tuesday; the 28th is a Sunday and moves back to the 26th.
	got = resolve(t, monthly(payday.RuleLastBankDay, 0, 2), "2025-09-01", payday.TodayCounts, payday.HolidaySet{})
	assert.Equal(t, date(t, "2025-09-26"), got)
}

func TestResolve_LastBankDayOffsetAppliesAfterAdjustment(t *testing.T) {
	// May 31st 2025 is a Saturday: last bank day is Friday the 30th, minus one is the 29th,
	// a holiday, so the result is the 28th.
	holidays := payday.NewHolidaySet(date(t, "2025-05-29"))
	got := resolve(t, monthly(payday.RuleLastBankDay, 0, 1), "2025-05-02", payday.TodayCounts, holidays)
	assert.Equal(t, date(t, "2025-05-28"), got)
}

func TestResolve_FirstBankDaySearchesForwardWithinMonth(t *testing.T) {
	// December 1st 2024 (Sunday) resolves to the 2nd, already past; January 1st 2025 is
	// a holiday, so the 2nd is returned.
	holidays := payday.NewHolidaySet(date(t, "2025-01-01"))
	got := resolve(t, monthly(payday.RuleFirstBankDay, 0, 0), "2024-12-15", payday.TodayCounts, holidays)
	assert.Equal(t, date(t, "2025-01-02"), got)
}

func TestResolve_MonthlyAdvancesWhenDateHasPassed(t *testing.T) {
	// The 25th of January has passed; February 25th 2024 is a Sunday.
	got := resolve(t, monthly(payday.RuleSpecificDay, 25, 0), "2024-01-31", payday.TodayCounts, payday.HolidaySet{})
	assert.Equal(t, date(t, "2024-02-23"), got)
}

func TestResolve_MonthlyEscalatesWhenAdjustmentCrossesToday(t *testing.T) {
	// Sunday September 15th 2024 adjusts back to Friday the 13th, before today.
	got := resolve(t, monthly(payday.RuleSpecificDay, 15, 0), "2024-09-15", payday.TodayCounts, payday.HolidaySet{})
	assert.Equal(t, date(t, "2024-10-15"), got)
}

func TestResolve_TodayPolicy(t *testing.T) {
	// September 14th 2024 is a Saturday and adjusts back onto today, Friday the 13th.
	cfg := monthly(payday.RuleSpecificDay, 14, 0)

	got := resolve(t, cfg, "2024-09-13", payday.TodayCounts, payday.HolidaySet{})
	assert.Equal(t, date(t, "2024-09-13"), got, "today counts as payday")

	got = resolve(t, cfg, "2024-09-13", payday.StrictlyFuture, payday.HolidaySet{})
	assert.Equal(t, date(t, "2024-10-14"), got, "strictly future moves to next month")
}

func TestResolve_EveryNDays(t *testing.T) {
	anchor := date(t, "2024-01-05")
	cfg := payday.Config{Country: "DK", Frequency: payday.Frequency14Days, AnchorDate: &anchor}

	got := resolve(t, cfg, "2024-01-10", payday.TodayCounts, payday.HolidaySet{})
	assert.Equal(t, date(t, "2024-01-19"), got)

	got = resolve(t, cfg, "2024-01-19", payday.TodayCounts, payday.HolidaySet{})
	assert.Equal(t, date(t, "2024-01-19"), got, "inclusive comparison keeps today")

	got = resolve(t, cfg, "2024-01-19", payday.StrictlyFuture, payday.HolidaySet{})
	assert.Equal(t, date(t, "2024-02-02"), got)

	// Many intervals after the anchor.
	got = resolve(t, cfg, "2024-12-01", payday.TodayCounts, payday.HolidaySet{})
	assert.Equal(t, date(t, "2024-12-06"), got)
}

func TestResolve_EveryNDaysAdjustsOnceAfterLooping(t *testing.T) {
	anchor := date(t, "2024-01-05")
	cfg := payday.Config{Country: "DK", Frequency: payday.Frequency28Days, AnchorDate: &anchor}
	holidays := payday.NewHolidaySet(date(t, "2024-02-02"))

	got := resolve(t, cfg, "2024-01-20", payday.TodayCounts, holidays)
	assert.Equal(t, date(t, "2024-02-01"), got)
}

func TestResolve_Weekly(t *testing.T) {
	cfg := payday.Config{Country: "DK", Frequency: payday.FrequencyWeekly, Weekday: weekday(time.Friday)}

	got := resolve(t, cfg, "2024-01-10", payday.TodayCounts, payday.HolidaySet{})
	assert.Equal(t, date(t, "2024-01-12"), got, "upcoming friday of the same week")

	got = resolve(t, cfg, "2024-01-12", payday.TodayCounts, payday.HolidaySet{})
	assert.Equal(t, date(t, "2024-01-12"), got, "friday today is payday")

	got = resolve(t, cfg, "2024-01-12", payday.StrictlyFuture, payday.HolidaySet{})
	assert.Equal(t, date(t, "2024-01-19"), got)

	// A holiday on today's friday pulls the payday into the past, so next week is used.
	got = resolve(t, cfg, "2024-01-12", payday.TodayCounts, payday.NewHolidaySet(date(t, "2024-01-12")))
	assert.Equal(t, date(t, "2024-01-19"), got)
}

func TestResolve_FixedMonthIntervals(t *testing.T) {
	anchor := date(t, "2024-01-31")
	cfg := payday.Config{Country: "DK", Frequency: payday.FrequencyQuarterly, AnchorDate: &anchor}

	got := resolve(t, cfg, "2024-03-10", payday.TodayCounts, payday.HolidaySet{})
	assert.Equal(t, date(t, "2024-04-30"), got)

	cfg.Frequency = payday.FrequencyAnnual
	got = resolve(t, cfg, "2026-02-01", payday.TodayCounts, payday.HolidaySet{})
	assert.Equal(t, date(t, "2027-01-29"), got, "2027-01-31 is a sunday")
}

func TestResolve_UnknownTagsAreCalculationErrors(t *testing.T) {
	today := date(t, "2024-01-10")

	_, _, err := payday.Resolve(payday.Config{Country: "DK", Frequency: "fortnightly"}, today, payday.TodayCounts, payday.HolidaySet{})
	var calcErr *payday.CalculationError
	require.ErrorAs(t, err, &calcErr)
	assert.ErrorIs(t, err, payday.ErrCalculation)

	_, _, err = payday.Resolve(monthly("middle_of_month", 0, 0), today, payday.TodayCounts, payday.HolidaySet{})
	assert.ErrorIs(t, err, payday.ErrCalculation)
}

func TestResolve_Properties(t *testing.T) {
	anchor := date(t, "2023-11-24")
	holidays := payday.NewHolidaySet(
		date(t, "2024-01-01"), date(t, "2024-03-28"), date(t, "2024-03-29"),
		date(t, "2024-04-01"), date(t, "2024-05-09"), date(t, "2024-05-20"),
		date(t, "2024-06-05"), date(t, "2024-12-24"), date(t, "2024-12-25"),
		date(t, "2024-12-26"), date(t, "2024-12-31"), date(t, "2025-01-01"),
	)
	configs := []payday.Config{
		monthly(payday.RuleLastBankDay, 0, 0),
		monthly(payday.RuleLastBankDay, 0, 3),
		monthly(payday.RuleFirstBankDay, 0, 0),
		monthly(payday.RuleSpecificDay, 31, 0),
		monthly(payday.RuleSpecificDay, 1, 0),
		{Country: "DK", Frequency: payday.Frequency14Days, AnchorDate: &anchor},
		{Country: "DK", Frequency: payday.Frequency28Days, AnchorDate: &anchor},
		{Country: "DK", Frequency: payday.FrequencyBimonthly, AnchorDate: &anchor},
		{Country: "DK", Frequency: payday.FrequencyWeekly, Weekday: weekday(time.Friday)},
		{Country: "DK", Frequency: payday.FrequencyWeekly, Weekday: weekday(time.Sunday)},
	}

	start := date(t, "2024-01-01")
	for _, policy := range []payday.TodayPolicy{payday.TodayCounts, payday.StrictlyFuture} {
		for _, cfg := range configs {
			for i := 0; i < 366; i++ {
				today := start.AddDays(i)
				got, _, err := payday.Resolve(cfg, today, policy, holidays)
				require.NoError(t, err)

				assert.False(t, payday.IsWeekend(got), "%s/%s on %s: weekend %s", cfg.Frequency, cfg.MonthlyRule, today, got)
				assert.False(t, holidays.Contains(got), "%s/%s on %s: holiday %s", cfg.Frequency, cfg.MonthlyRule, today, got)
				assert.True(t, policy.Accepts(got, today), "%s/%s on %s: %s not acceptable", cfg.Frequency, cfg.MonthlyRule, today, got)

				again, _, err := payday.Resolve(cfg, today, policy, holidays)
				require.NoError(t, err)
				assert.Equal(t, got, again, "idempotent")
			}
		}
	}
}
