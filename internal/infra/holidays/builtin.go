// internal/infra/holidays/builtin.go
package holidays

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"isitpayday/internal/domain/payday"

	cal "github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/de"
	"github.com/rickar/cal/v2/dk"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/us"
)

var builtinCalendars = map[string][]*cal.Holiday{
	"DE": de.Holidays,
	"DK": dk.Holidays,
	"GB": gb.Holidays,
	"US": us.Holidays,
}

var builtinNames = map[string]string{
	"DE": "Germany",
	"DK": "Denmark",
	"GB": "United Kingdom",
	"US": "United States",
}

// BuiltinSource serves holidays from compiled-in calendars, for offline use.
type BuiltinSource struct{}

func NewBuiltinSource() *BuiltinSource {
	return &BuiltinSource{}
}

// Holidays returns both the actual and the observed date of every holiday in year.
func (BuiltinSource) Holidays(_ context.Context, country string, year int) (payday.HolidaySet, error) {
	calendar, ok := builtinCalendars[strings.ToUpper(country)]
	if !ok {
		return payday.HolidaySet{}, fmt.Errorf("no builtin holiday calendar for country %q", country)
	}

	// An observed date can fall in the previous year (a Saturday January 1st observed on
	// December 31st), so the following year is calculated too.
	var dates []payday.Date
	for _, h := range calendar {
		for _, y := range [...]int{year, year + 1} {
			actual, observed := h.Calc(y)
			for _, t := range [...]time.Time{actual, observed} {
				if !t.IsZero() && t.Year() == year {
					dates = append(dates, payday.DateOf(t))
				}
			}
		}
	}
	return payday.NewHolidaySet(dates...), nil
}

// AvailableCountries lists the countries with a builtin calendar.
func (BuiltinSource) AvailableCountries(context.Context) ([]Country, error) {
	out := make([]Country, 0, len(builtinCalendars))
	for code := range builtinCalendars {
		out = append(out, Country{CountryCode: code, Name: builtinNames[code]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CountryCode < out[j].CountryCode })
	return out, nil
}
