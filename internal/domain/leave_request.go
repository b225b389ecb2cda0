package domain

import (
	"time"

	"github.com/gestion-humana/portal/backend/internal/calendar"
)

type LeaveType string

const (
	LeaveTypeVacation LeaveType = "vacation"
	LeaveTypePersonal LeaveType = "personal"
	LeaveTypeSick     LeaveType = "sick"
	LeaveTypeUnpaid   LeaveType = "unpaid"
)

type LeaveStatus string

const (
	LeaveStatusPending   LeaveStatus = "pending"
	LeaveStatusApproved  LeaveStatus = "approved"
	LeaveStatusRejected  LeaveStatus = "rejected"
	LeaveStatusCancelled LeaveStatus = "cancelled"
)

// IsFinal reports whether the status can no longer change.
func (s LeaveStatus) IsFinal() bool {
	return s != LeaveStatusPending
}

// LeaveRequest is a vacation or leave request. BusinessDays is the number of
// non rest days in [StartDate, EndDate]; CalendarDays is the raw inclusive
// length of the range. Both are filled by calendar and never by hand.
type LeaveRequest struct {
	ID            int64                 `json:"id"`
	UserID        int64                 `json:"userID"`
	Type          LeaveType             `json:"type"`
	StartDate     calendar.CalendarDate `json:"startDate"`
	EndDate       calendar.CalendarDate `json:"endDate"`
	BusinessDays  int                   `json:"businessDays"`
	CalendarDays  int                   `json:"calendarDays"`
	Reason        string                `json:"reason"`
	Status        LeaveStatus           `json:"status"`
	RequestedAt   time.Time             `json:"requestedAt"`
	ResolvedAt    *time.Time            `json:"resolvedAt"`
	ResolvedBy    *int64                `json:"resolvedBy"`
	ResolverNote  string                `json:"resolverNote"`
	RequesterName string                `json:"requesterName,omitempty"`
	Version       int32                 `json:"-"`
}

func (lr *LeaveRequest) Range() calendar.DateRange {
	return calendar.DateRange{Start: lr.StartDate, End: lr.EndDate}
}

type LeaveRequestFilter struct {
	UserID       *int64
	SupervisorID *int64
	Status       *LeaveStatus
	From         *calendar.CalendarDate
	To           *calendar.CalendarDate
}
