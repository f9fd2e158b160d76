package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"isitpayday/internal/domain/payday"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHolidaySource struct {
	mu       sync.Mutex
	byYear   map[int][]string
	err      error
	requests []int
}

func (f *fakeHolidaySource) Holidays(_ context.Context, _ string, year int) (payday.HolidaySet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, year)
	if f.err != nil {
		return payday.HolidaySet{}, f.err
	}
	var dates []payday.Date
	for _, s := range f.byYear[year] {
		d, err := payday.ParseDate(s)
		if err != nil {
			return payday.HolidaySet{}, err
		}
		dates = append(dates, d)
	}
	return payday.NewHolidaySet(dates...), nil
}

type outcome struct {
	frequency string
	outcome   string
	degraded  bool
}

type fakeRecorder struct {
	outcomes []outcome
}

func (f *fakeRecorder) RecordCompute(frequency, result string, degraded bool) {
	f.outcomes = append(f.outcomes, outcome{frequency, result, degraded})
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func mustDate(t *testing.T, s string) payday.Date {
	t.Helper()
	d, err := payday.ParseDate(s)
	require.NoError(t, err)
	return d
}

func lastBankDay() payday.Config {
	return payday.Config{Country: "dk", Frequency: payday.FrequencyMonthly, MonthlyRule: payday.RuleLastBankDay}
}

func TestCompute_UsesHolidays(t *testing.T) {
	source := &fakeHolidaySource{byYear: map[int][]string{2024: {"2024-12-31", "2024-12-24", "2024-12-25", "2024-12-26"}}}
	recorder := &fakeRecorder{}
	engine := NewPaydayEngine(source, payday.TodayCounts, testLogger(), recorder)

	res, err := engine.Compute(context.Background(), lastBankDay(), mustDate(t, "2024-12-02"))
	require.NoError(t, err)
	assert.Equal(t, mustDate(t, "2024-12-30"), res.Date)
	assert.False(t, res.Degraded)
	assert.Equal(t, 1, res.Periods)
	assert.Equal(t, []outcome{{"monthly", "ok", false}}, recorder.outcomes)
}

func TestCompute_DegradesWhenHolidaySourceFails(t *testing.T) {
	source := &fakeHolidaySource{err: errors.New("connection refused")}
	engine := NewPaydayEngine(source, payday.TodayCounts, testLogger(), nil)

	// Without holiday data December 31st 2024 (a Tuesday) is kept.
	res, err := engine.Compute(context.Background(), lastBankDay(), mustDate(t, "2024-12-02"))
	require.NoError(t, err)
	assert.Equal(t, mustDate(t, "2024-12-31"), res.Date)
	assert.True(t, res.Degraded)

	// Still weekend-adjusted: August 31st 2024 is a Saturday.
	res, err = engine.Compute(context.Background(), lastBankDay(), mustDate(t, "2024-08-01"))
	require.NoError(t, err)
	assert.Equal(t, mustDate(t, "2024-08-30"), res.Date)
}

func TestCompute_LoadsFollowingYearAcrossBoundary(t *testing.T) {
	source := &fakeHolidaySource{byYear: map[int][]string{2025: {"2025-01-01"}}}
	engine := NewPaydayEngine(source, payday.TodayCounts, testLogger(), nil)
	cfg := payday.Config{Country: "DK", Frequency: payday.FrequencyMonthly, MonthlyRule: payday.RuleFirstBankDay}

	res, err := engine.Compute(context.Background(), cfg, mustDate(t, "2024-12-15"))
	require.NoError(t, err)
	assert.Equal(t, mustDate(t, "2025-01-02"), res.Date)
	assert.Equal(t, 2, res.Periods)
	assert.Equal(t, []int{2024, 2025}, source.requests, "each year fetched once")
}

func TestCompute_WalksBackAcrossNewYear(t *testing.T) {
	// A Saturday payday on January 1st 2028 walks back to December 31st 2027, a holiday
	// in this fixture, so the payday lands on the 30th.
	source := &fakeHolidaySource{byYear: map[int][]string{2027: {"2027-12-31"}}}
	engine := NewPaydayEngine(source, payday.TodayCounts, testLogger(), nil)
	cfg := payday.Config{Country: "DK", Frequency: payday.FrequencyWeekly, Weekday: weekdayPtr(5)}

	res, err := engine.Compute(context.Background(), cfg, mustDate(t, "2027-12-27"))
	require.NoError(t, err)
	assert.Equal(t, mustDate(t, "2027-12-30"), res.Date)
	assert.Equal(t, []int{2027}, source.requests)
}

func TestCompute_ValidationErrorsAreReturned(t *testing.T) {
	source := &fakeHolidaySource{}
	recorder := &fakeRecorder{}
	engine := NewPaydayEngine(source, payday.TodayCounts, testLogger(), recorder)

	_, err := engine.Compute(context.Background(), payday.Config{Country: "DK", Frequency: payday.FrequencyWeekly}, mustDate(t, "2024-01-10"))
	var vErr *payday.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "weekday", vErr.Field)
	assert.Empty(t, source.requests, "no fetch before validation passes")
	assert.Equal(t, "invalid", recorder.outcomes[0].outcome)
}

func TestCompute_UnknownFrequencyIsCalculationError(t *testing.T) {
	engine := NewPaydayEngine(&fakeHolidaySource{}, payday.TodayCounts, testLogger(), nil)

	_, err := engine.Compute(context.Background(), payday.Config{Country: "DK", Frequency: "hourly"}, mustDate(t, "2024-01-10"))
	assert.ErrorIs(t, err, payday.ErrCalculation)
}

func TestCompute_CanceledContext(t *testing.T) {
	engine := NewPaydayEngine(&fakeHolidaySource{}, payday.TodayCounts, testLogger(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Compute(ctx, lastBankDay(), mustDate(t, "2024-12-02"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComputeParams(t *testing.T) {
	engine := NewPaydayEngine(&fakeHolidaySource{}, payday.TodayCounts, testLogger(), nil)

	res, err := engine.ComputeParams(context.Background(), payday.Params{
		Country:    "DK",
		Frequency:  "14_days",
		AnchorDate: "2024-01-05",
	}, mustDate(t, "2024-01-10"))
	require.NoError(t, err)
	assert.Equal(t, mustDate(t, "2024-01-19"), res.Date)
	assert.False(t, res.IsPayday(mustDate(t, "2024-01-10")))
	assert.True(t, res.IsPayday(mustDate(t, "2024-01-19")))

	_, err = engine.ComputeParams(context.Background(), payday.Params{Country: "DK", Frequency: "14_days"}, mustDate(t, "2024-01-10"))
	assert.ErrorIs(t, err, payday.ErrValidation)
}

func TestCompute_StrictPolicy(t *testing.T) {
	engine := NewPaydayEngine(&fakeHolidaySource{}, payday.StrictlyFuture, testLogger(), nil)
	assert.Equal(t, payday.StrictlyFuture, engine.Policy())

	res, err := engine.ComputeParams(context.Background(), payday.Params{
		Country:   "DK",
		Frequency: "weekly",
		Weekday:   intPtr(4),
	}, mustDate(t, "2024-01-12"))
	require.NoError(t, err)
	assert.Equal(t, mustDate(t, "2024-01-19"), res.Date)
}

func intPtr(i int) *int { return &i }

func weekdayPtr(index int) *time.Weekday {
	wd, _ := payday.WeekdayFromIndex(index)
	return &wd
}
