package calendar

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDateFormat = errors.New("invalid date format")
	ErrInvalidRange      = errors.New("invalid date range")
)

// InvalidDateFormatError reports a string that is not a valid YYYY-MM-DD calendar date.
type InvalidDateFormatError struct {
	Input  string
	Reason string
}

func (e *InvalidDateFormatError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", e.Input)
	}
	return fmt.Sprintf("invalid date %q, expected YYYY-MM-DD: %s", e.Input, e.Reason)
}

func (e *InvalidDateFormatError) Is(target error) bool {
	return target == ErrInvalidDateFormat
}

// InvalidRangeError reports a range whose start is later than its end.
type InvalidRangeError struct {
	Start CalendarDate
	End   CalendarDate
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("start date %s is later than end date %s", e.Start, e.End)
}

func (e *InvalidRangeError) Is(target error) bool {
	return target == ErrInvalidRange
}
