package delivery

import (
	"fmt"
	"time"
)

const isoDate = time.DateOnly

// HolidayCalendar is an immutable set of non-business calendar dates.
type HolidayCalendar struct {
	dates map[string]struct{}
}

func NewHolidayCalendar(dates []string) (HolidayCalendar, error) {
	set := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		parsed, err := time.Parse(isoDate, d)
		if err != nil {
			return HolidayCalendar{}, fmt.Errorf("holiday[%s] is not a valid ISO date: %w", d, err)
		}
		set[parsed.Format(isoDate)] = struct{}{}
	}

	return HolidayCalendar{dates: set}, nil
}

// Contains matches on the calendar date of t in t's own location.
func (c HolidayCalendar) Contains(t time.Time) bool {
	_, ok := c.dates[t.Format(isoDate)]
	return ok
}

func (c HolidayCalendar) Len() int {
	return len(c.dates)
}
