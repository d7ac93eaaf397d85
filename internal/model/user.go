package model

import (
	"strings"
	"time"
)

// Role enumerates the access levels a user can hold. The values match
// the `role` column of the users table and the role strings exchanged
// with the identity provider and the front end.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleStaff   Role = "STAFF"
)

// ParseRole validates a role string supplied by an external caller.
// Matching is case-insensitive; anything outside the three known
// values is rejected so callers can answer with a 400.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleManager:
		return RoleManager, true
	case RoleStaff:
		return RoleStaff, true
	}
	return "", false
}

// NormalizeRole coerces an arbitrary role string into a member of the
// enum. Unknown or empty values become STAFF; this is used when a
// default must be computed, never when a caller explicitly sets a role.
func NormalizeRole(s string) Role {
	if r, ok := ParseRole(s); ok {
		return r
	}
	return RoleStaff
}

// User mirrors the `users` table: a local copy of an identity-provider
// account keyed by the provider's stable subject id (the primary key).
// The email is unique across records and Name is the derived display
// name. Nullable columns are pointers so an absent value survives the
// round trip to JSON as null, which is what the front end and the sync
// mirror expect.
type User struct {
	UserID       string     `json:"userId"`
	Email        string     `json:"email"`
	FirstName    *string    `json:"firstName"`
	LastName     *string    `json:"lastName"`
	Name         *string    `json:"name"`
	ImageURL     *string    `json:"imageUrl"`
	Role         Role       `json:"role"`
	LastSignInAt *time.Time `json:"lastSignInAt"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// DisplayName joins first and last name, skipping the missing parts.
// Returns nil when neither part is present.
func DisplayName(first, last *string) *string {
	parts := make([]string, 0, 2)
	if first != nil && *first != "" {
		parts = append(parts, *first)
	}
	if last != nil && *last != "" {
		parts = append(parts, *last)
	}
	if len(parts) == 0 {
		return nil
	}
	joined := strings.Join(parts, " ")
	return &joined
}
