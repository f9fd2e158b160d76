// internal/domain/payday/holidays.go
package payday

import (
	"context"
	"encoding/json"
	"sort"
)

// Holidays answers whether a date is a non-business day beyond the weekend.
type Holidays interface {
	Contains(d Date) bool
}

// HolidaySource returns the public holidays of a country for one year.
type HolidaySource interface {
	Holidays(ctx context.Context, country string, year int) (HolidaySet, error)
}

// HolidaySet is an immutable set of dates. The zero value is the empty set.
type HolidaySet struct {
	dates map[Date]struct{}
}

// NewHolidaySet builds a set from the given dates.
func NewHolidaySet(dates ...Date) HolidaySet {
	set := HolidaySet{dates: make(map[Date]struct{}, len(dates))}
	for _, d := range dates {
		set.dates[d] = struct{}{}
	}
	return set
}

func (s HolidaySet) Contains(d Date) bool {
	_, ok := s.dates[d]
	return ok
}

func (s HolidaySet) Len() int {
	return len(s.dates)
}

// Union returns a new set holding the dates of both sets.
func (s HolidaySet) Union(other HolidaySet) HolidaySet {
	out := HolidaySet{dates: make(map[Date]struct{}, len(s.dates)+len(other.dates))}
	for d := range s.dates {
		out.dates[d] = struct{}{}
	}
	for d := range other.dates {
		out.dates[d] = struct{}{}
	}
	return out
}

// Dates returns the members in ascending order.
func (s HolidaySet) Dates() []Date {
	out := make([]Date, 0, len(s.dates))
	for d := range s.dates {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func (s HolidaySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Dates())
}

func (s *HolidaySet) UnmarshalJSON(data []byte) error {
	var dates []Date
	if err := json.Unmarshal(data, &dates); err != nil {
		return err
	}
	*s = NewHolidaySet(dates...)
	return nil
}
