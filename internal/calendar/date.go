// Package calendar provides timezone free calendar dates, date ranges and the
// business day counter used for every leave request.
//
// A CalendarDate is a civil.Date: a plain (year, month, day) triple with no
// location attached, so no result depends on the process timezone, locale or
// DST rules.
package calendar

import (
	"database/sql/driver"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

const layout = "YYYY-MM-DD"

// CalendarDate is a date without time of day or location.
type CalendarDate civil.Date

func (d CalendarDate) asCivil() civil.Date {
	return civil.Date(d)
}

// NewDate returns the CalendarDate for the given components, validating that
// the year has four digits and that month and day exist.
func NewDate(year int, month time.Month, day int) (CalendarDate, error) {
	d := CalendarDate{Year: year, Month: month, Day: day}
	if err := d.validate(); err != nil {
		return CalendarDate{}, &InvalidDateFormatError{Input: d.String(), Reason: err.Error()}
	}
	return d, nil
}

func (d CalendarDate) validate() error {
	if d.Year < 1 || d.Year > 9999 {
		return fmt.Errorf("year %d out of range", d.Year)
	}
	if !d.asCivil().IsValid() {
		return fmt.Errorf("%s does not exist", d)
	}
	return nil
}

// ParseDate parses a date in the exact form YYYY-MM-DD. civil.ParseDate
// alone would accept a zero year, so the layout and range are checked too.
func ParseDate(val string) (CalendarDate, error) {
	if len(val) != len(layout) || val[4] != '-' || val[7] != '-' {
		return CalendarDate{}, &InvalidDateFormatError{Input: val}
	}
	for i := 0; i < len(val); i++ {
		if i != 4 && i != 7 && (val[i] < '0' || val[i] > '9') {
			return CalendarDate{}, &InvalidDateFormatError{Input: val, Reason: "non-numeric component"}
		}
	}
	cd, err := civil.ParseDate(val)
	if err != nil {
		return CalendarDate{}, &InvalidDateFormatError{Input: val, Reason: err.Error()}
	}
	d := CalendarDate(cd)
	if err := d.validate(); err != nil {
		return CalendarDate{}, &InvalidDateFormatError{Input: val, Reason: err.Error()}
	}
	return d, nil
}

// MustParseDate is like ParseDate but panics on error.
func MustParseDate(val string) CalendarDate {
	d, err := ParseDate(val)
	if err != nil {
		panic(err)
	}
	return d
}

// FromTime returns the calendar date of t as observed in t's own location.
// The value is not converted to any other location first.
func FromTime(t time.Time) CalendarDate {
	return CalendarDate(civil.DateOf(t))
}

// Today returns the current date in loc.
func Today(loc *time.Location) CalendarDate {
	return FromTime(time.Now().In(loc))
}

func (d CalendarDate) String() string {
	return d.asCivil().String()
}

func (d CalendarDate) IsZero() bool {
	return d.asCivil().IsZero()
}

func (d CalendarDate) Weekday() time.Weekday {
	return d.asCivil().Weekday()
}

// AddDays returns the date n days after d (before d when n is negative).
func (d CalendarDate) AddDays(n int) CalendarDate {
	return CalendarDate(d.asCivil().AddDays(n))
}

// Next returns the following calendar day.
func (d CalendarDate) Next() CalendarDate {
	return d.AddDays(1)
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after other.
func (d CalendarDate) Compare(other CalendarDate) int {
	return d.asCivil().Compare(other.asCivil())
}

func (d CalendarDate) Before(other CalendarDate) bool { return d.asCivil().Before(other.asCivil()) }
func (d CalendarDate) After(other CalendarDate) bool  { return d.asCivil().After(other.asCivil()) }
func (d CalendarDate) Equal(other CalendarDate) bool  { return d == other }

// DaysUntil returns the signed number of days from d to other.
func (d CalendarDate) DaysUntil(other CalendarDate) int {
	return other.asCivil().DaysSince(d.asCivil())
}

// Time returns midday of the date in loc. Midday keeps the value on the same
// calendar day across DST transitions; it is only meant for libraries that
// take a time.Time.
func (d CalendarDate) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, loc)
}

func (d CalendarDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*d = CalendarDate{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return &InvalidDateFormatError{Input: s, Reason: "not a JSON string"}
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d CalendarDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *CalendarDate) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the date as a YYYY-MM-DD literal so the DATE column never sees a timestamp.
func (d CalendarDate) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan reads DATE columns. pgx hands them over as time.Time at UTC midnight;
// only the components are kept.
func (d *CalendarDate) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = CalendarDate{}
		return nil
	case time.Time:
		*d = FromTime(v)
		return nil
	case string:
		return d.UnmarshalText([]byte(v))
	case []byte:
		return d.UnmarshalText(v)
	default:
		return fmt.Errorf("calendar: cannot scan %T into CalendarDate", src)
	}
}
