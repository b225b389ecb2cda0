package domain

import (
	"time"

	"github.com/gestion-humana/portal/backend/internal/calendar"
)

type Holiday struct {
	ID        int64                 `json:"id"`
	Name      string                `json:"name"`
	Date      calendar.CalendarDate `json:"date"`
	Recurring bool                  `json:"recurring"`
	CreatedAt time.Time             `json:"createdAt"`
	Version   int32                 `json:"-"`
}

func (h *Holiday) Spec() calendar.HolidaySpec {
	return calendar.HolidaySpec{Name: h.Name, Date: h.Date, Recurring: h.Recurring}
}
