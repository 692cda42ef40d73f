package models

import "fmt"

// Role is the numeric user type stored on every user row.
// The values match the seeded rows of the `user_types` table.
type Role int64

const (
	RoleAdmin   Role = 1
	RoleRegular Role = 2
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleRegular
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleRegular:
		return "default"
	default:
		return fmt.Sprintf("role(%d)", int64(r))
	}
}

// ParseRole accepts either the display label or the numeric id.
func ParseRole(s string) (Role, error) {
	switch s {
	case "admin", "1":
		return RoleAdmin, nil
	case "default", "regular", "2":
		return RoleRegular, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

// UserType is a row of the `user_types` lookup table.
type UserType struct {
	ID   Role   `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
