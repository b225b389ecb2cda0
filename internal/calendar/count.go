package calendar

// Breakdown is the result of counting business days over a range.
type Breakdown struct {
	Count    int            `json:"count"`
	Included []CalendarDate `json:"included"`
	Excluded []CalendarDate `json:"excluded"`
}

// Total returns the number of days visited, Count + len(Excluded).
func (b Breakdown) Total() int {
	return b.Count + len(b.Excluded)
}

// CountBusinessDays walks r one calendar day at a time and counts the days
// that policy does not mark as rest days. A nil policy means SundayRest.
//
// Count + len(Excluded) always equals TotalCalendarDays(r).
func CountBusinessDays(r DateRange, policy RestDayPolicy) (Breakdown, error) {
	if err := r.Validate(); err != nil {
		return Breakdown{}, err
	}
	if policy == nil {
		policy = SundayRest
	}

	b := Breakdown{
		Included: make([]CalendarDate, 0, TotalCalendarDays(r)),
		Excluded: make([]CalendarDate, 0),
	}
	for d := range r.Dates() {
		if policy(d) {
			b.Excluded = append(b.Excluded, d)
			continue
		}
		b.Included = append(b.Included, d)
		b.Count++
	}
	return b, nil
}

// CountBusinessDaysBetween parses start and end as YYYY-MM-DD and counts the
// business days between them.
func CountBusinessDaysBetween(start, end string, policy RestDayPolicy) (Breakdown, error) {
	r, err := ParseRange(start, end)
	if err != nil {
		return Breakdown{}, err
	}
	return CountBusinessDays(r, policy)
}
