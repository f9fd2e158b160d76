// internal/domain/payday/date.go
package payday

import (
	"time"

	"cloud.google.com/go/civil"
)

// Date is a calendar date without a time of day or location.
type Date = civil.Date

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return civil.DateOf(t)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	return civil.ParseDate(s)
}

// WeekdayOf returns the day of the week d falls on.
func WeekdayOf(d Date) time.Weekday {
	return d.In(time.UTC).Weekday()
}

// IsWeekend reports whether d is a Saturday or a Sunday.
func IsWeekend(d Date) bool {
	wd := WeekdayOf(d)
	return wd == time.Saturday || wd == time.Sunday
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// clampedDate builds (year, month, day), pulling day back to the last day of short months.
func clampedDate(year int, month time.Month, day int) Date {
	if last := daysIn(year, month); day > last {
		day = last
	}
	return Date{Year: year, Month: month, Day: day}
}

// addMonths moves (year, month) by n months, normalizing the year.
func addMonths(year int, month time.Month, n int) (int, time.Month) {
	t := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}
