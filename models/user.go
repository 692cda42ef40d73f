package models

import "time"

// User represents an account in the catalog.
// It maps to the `users` table; Role references the `user_types` lookup table.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Role         Role      `db:"user_type" json:"user_type"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
