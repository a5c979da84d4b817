// Package models holds the data records exchanged with the Identity Service.
package models

import "time"

// User is the profile of the authenticated account.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Clone returns a copy of u, or nil.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// Apply patches u in place with the non-empty fields of p.
func (u *User) Apply(p *User) {
	if p == nil {
		return
	}
	if p.ID != "" {
		u.ID = p.ID
	}
	if p.Name != "" {
		u.Name = p.Name
	}
	if p.Email != "" {
		u.Email = p.Email
	}
	if !p.CreatedAt.IsZero() {
		u.CreatedAt = p.CreatedAt
	}
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// ProfileUpdate is the body of a profile change. Empty fields are left
// untouched by the server.
type ProfileUpdate struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// PasswordChange is the body of a password change.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
