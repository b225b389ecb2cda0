package domain

import (
	"time"
)

type Role string

const (
	RoleEmployee      Role = "employee"
	RoleSupervisor    Role = "supervisor"
	RoleAdministrator Role = "administrator"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	Department   string    `json:"department"`
	Position     string    `json:"position"`
	SupervisorID *int64    `json:"supervisorID"` // nil when the user reports to nobody
	AvatarURL    string    `json:"avatarURL"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}

// CanResolve reports whether u may approve or reject a request made by requester.
func (u *User) CanResolve(requester *User) bool {
	if u.ID == requester.ID {
		return false
	}
	if u.Role == RoleAdministrator {
		return true
	}
	return u.Role == RoleSupervisor && requester.SupervisorID != nil && *requester.SupervisorID == u.ID
}
