package models

import "time"

// Role distinguishes advice authors from advice readers
type Role string

const (
	RoleFather Role = "father"
	RoleChild  Role = "child"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleFather || r == RoleChild
}

// User represents a father or child account. ID doubles as the login handle.
type User struct {
	ID           string
	PasswordHash string
	Role         Role
	Name         string
	FatherID     string // empty for fathers and for children without a linked father
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsFather reports whether the user authors advice
func (u *User) IsFather() bool {
	return u.Role == RoleFather
}

// IsChild reports whether the user reads advice
func (u *User) IsChild() bool {
	return u.Role == RoleChild
}
