package handler

type ContextKey string

var (
	RoleCtxKey      ContextKey = "role"
	SubCtxKey       ContextKey = "sub"
	MyInfoCtx       ContextKey = "myInfo"
	UserInfoCtx     ContextKey = "userInfo"
	LeaveRequestCtx ContextKey = "leaveRequest"
	RequesterCtx    ContextKey = "requester"
	HolidayCtx      ContextKey = "holiday"
	AnnouncementCtx ContextKey = "announcement"
)
