package user

import "time"

type Role string

const (
	RoleManager  Role = "manager"  // Can view compliance dashboards, receives escalations
	RoleEmployee Role = "employee" // Regular employee
)

type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash *string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsManager checks if user holds the manager role
func (u *User) IsManager() bool {
	return u.Role == RoleManager
}
