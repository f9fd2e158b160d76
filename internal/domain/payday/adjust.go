// internal/domain/payday/adjust.go
package payday

// IsBusinessDay reports whether d is a weekday that is not a holiday.
func IsBusinessDay(d Date, holidays Holidays) bool {
	return !IsWeekend(d) && !holidays.Contains(d)
}

// Adjust walks d backward until it lands on a business day. Paydays are pulled
// earlier, never postponed. Holiday sets are finite, so the walk terminates.
func Adjust(d Date, holidays Holidays) Date {
	for !IsBusinessDay(d, holidays) {
		d = d.AddDays(-1)
	}
	return d
}

// firstBusinessDayOnOrAfter walks forward within d's month. If the whole remainder of
// the month is closed it falls back to a backward adjustment from d.
func firstBusinessDayOnOrAfter(d Date, holidays Holidays) Date {
	for c := d; c.Month == d.Month; c = c.AddDays(1) {
		if IsBusinessDay(c, holidays) {
			return c
		}
	}
	return Adjust(d, holidays)
}
