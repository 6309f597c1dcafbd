// Package models defines user role and quota reporting fields.
package models

import "time"

type Role string

const (
	RoleStandard Role = "standard"
	RoleAdmin    Role = "admin"
)

// UserRole is one row in user_roles.
type UserRole struct {
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
