package calendar

import (
	"fmt"
	"iter"
)

// DateRange is a closed interval of calendar dates with Start <= End.
type DateRange struct {
	Start CalendarDate `json:"start"`
	End   CalendarDate `json:"end"`
}

// NewDateRange returns the range [start, end]. A range where start equals end
// covers a single day.
func NewDateRange(start, end CalendarDate) (DateRange, error) {
	r := DateRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// ParseRange parses two YYYY-MM-DD strings into a range.
func ParseRange(start, end string) (DateRange, error) {
	s, err := ParseDate(start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return DateRange{}, err
	}
	return NewDateRange(s, e)
}

func (r DateRange) Validate() error {
	if err := r.Start.validate(); err != nil {
		return &InvalidDateFormatError{Input: r.Start.String(), Reason: err.Error()}
	}
	if err := r.End.validate(); err != nil {
		return &InvalidDateFormatError{Input: r.End.String(), Reason: err.Error()}
	}
	if r.Start.After(r.End) {
		return &InvalidRangeError{Start: r.Start, End: r.End}
	}
	return nil
}

// Dates yields every date in the range in ascending order.
func (r DateRange) Dates() iter.Seq[CalendarDate] {
	return func(yield func(CalendarDate) bool) {
		for d := r.Start; !d.After(r.End); d = d.Next() {
			if !yield(d) {
				return
			}
		}
	}
}

func (r DateRange) Contains(d CalendarDate) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Overlaps reports whether the two ranges share at least one day.
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.End.Before(other.Start) && !other.End.Before(r.Start)
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s..%s", r.Start, r.End)
}

// TotalCalendarDays is the raw inclusive day count of the range. It is a
// different quantity from the business day count and must be labelled as such
// wherever it is displayed or stored.
func TotalCalendarDays(r DateRange) int {
	return r.Start.DaysUntil(r.End) + 1
}
