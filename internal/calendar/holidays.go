package calendar

import (
	"time"

	"github.com/rickar/cal/v2"
)

// HolidaySpec describes a non-working day. Recurring holidays repeat every
// year on the same month and day; the others only apply to Date.Year.
type HolidaySpec struct {
	Name      string
	Date      CalendarDate
	Recurring bool
}

// NewHolidayCalendar builds a business calendar holding the given holidays.
func NewHolidayCalendar(specs ...HolidaySpec) *cal.BusinessCalendar {
	bc := cal.NewBusinessCalendar()
	for _, s := range specs {
		h := &cal.Holiday{
			Name:  s.Name,
			Type:  cal.ObservancePublic,
			Month: s.Date.Month,
			Day:   s.Date.Day,
			Func:  cal.CalcDayOfMonth,
		}
		if s.Recurring && s.Date.Month == time.February && s.Date.Day == 29 {
			h.Func = calcLeapDay
		}
		if !s.Recurring {
			h.StartYear = s.Date.Year
			h.EndYear = s.Date.Year
		}
		bc.AddHoliday(h)
	}
	return bc
}

// calcLeapDay only yields Feb 29 in leap years. cal.CalcDayOfMonth would roll
// it over to Mar 1 in the others.
func calcLeapDay(h *cal.Holiday, year int) time.Time {
	d := CalendarDate{Year: year, Month: time.February, Day: 29}
	if !d.asCivil().IsValid() {
		return time.Time{}
	}
	return cal.CalcDayOfMonth(h, year)
}

// HolidayRest excludes the actual and observed holidays of bc. The calendar
// library compares year, month and day of the time it receives, so the date is
// handed over at midday UTC built from its own components. A nil calendar
// excludes nothing.
func HolidayRest(bc *cal.BusinessCalendar) RestDayPolicy {
	if bc == nil {
		return func(CalendarDate) bool { return false }
	}
	return func(d CalendarDate) bool {
		actual, observed, _ := bc.IsHoliday(d.Time(time.UTC))
		return actual || observed
	}
}
