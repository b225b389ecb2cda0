package domain

const (
	MailCreateUser            = "create_user"
	MailResetPassword         = "reset_password"
	MailChangeEmail           = "change_email"
	MailLeaveRequested        = "leave_requested"
	MailLeaveResolved         = "leave_resolved"
	MailLeavePendingReminder  = "leave_pending_reminder"
	MailAnnouncementPublished = "announcement_published"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type CreateUserMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ResetPasswordMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type ChangeEmailMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type LeaveRequestedMailData struct {
	ApproverName  string `json:"approverName"`
	RequesterName string `json:"requesterName"`
	LeaveType     string `json:"leaveType"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	BusinessDays  int    `json:"businessDays"`
	CalendarDays  int    `json:"calendarDays"`
	Reason        string `json:"reason"`
}

type LeaveResolvedMailData struct {
	FullName     string `json:"fullName"`
	Status       string `json:"status"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	BusinessDays int    `json:"businessDays"`
	ResolverName string `json:"resolverName"`
	Note         string `json:"note"`
}

type LeavePendingReminderMailData struct {
	ApproverName string   `json:"approverName"`
	Pending      int      `json:"pending"`
	Requesters   []string `json:"requesters"`
}

type AnnouncementPublishedMailData struct {
	FullName string `json:"fullName"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
}
