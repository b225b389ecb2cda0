package calendar

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// RestDayPolicy reports whether a date is excluded from the business day count.
type RestDayPolicy func(CalendarDate) bool

// SundayRest excludes Sundays only. It is the default policy.
var SundayRest RestDayPolicy = func(d CalendarDate) bool {
	return d.Weekday() == time.Sunday
}

// WeekendRest excludes Saturdays and Sundays.
var WeekendRest RestDayPolicy = WeekdayRest(time.Saturday, time.Sunday)

// WeekdayRest excludes every date falling on one of the given weekdays.
func WeekdayRest(days ...time.Weekday) RestDayPolicy {
	var mask [7]bool
	for _, wd := range days {
		mask[wd] = true
	}
	return func(d CalendarDate) bool {
		return mask[d.Weekday()]
	}
}

// DateSetRest excludes the listed dates.
func DateSetRest(dates ...CalendarDate) RestDayPolicy {
	set := make(map[CalendarDate]struct{}, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	return func(d CalendarDate) bool {
		_, ok := set[d]
		return ok
	}
}

// AnyOf excludes a date when any of the policies excludes it. Nil policies are ignored.
func AnyOf(policies ...RestDayPolicy) RestDayPolicy {
	policies = slices.DeleteFunc(slices.Clone(policies), func(p RestDayPolicy) bool { return p == nil })
	return func(d CalendarDate) bool {
		for _, p := range policies {
			if p(d) {
				return true
			}
		}
		return false
	}
}

const (
	PolicySunday  = "sunday"
	PolicyWeekend = "weekend"
)

// PolicyByName maps a configuration value to a policy.
func PolicyByName(name string) (RestDayPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicySunday:
		return SundayRest, nil
	case PolicyWeekend:
		return WeekendRest, nil
	default:
		return nil, fmt.Errorf("unknown rest day policy %q, expected %q or %q", name, PolicySunday, PolicyWeekend)
	}
}
