// Package auth handles login sessions and user lookup.
package auth

import "time"

// User is an application login.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Theme        string    `json:"theme"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Roles a user may hold within a company.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleOperator   = "operator"
)

// IsAdminOrSupervisor reports whether the role grants elevated access.
func IsAdminOrSupervisor(role string) bool {
	return role == RoleAdmin || role == RoleSupervisor
}
