package models

import "time"

type User struct {
	ID            int       `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	EmailVerified bool      `json:"email_verified"`
	AvatarURL     *string   `json:"avatar_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`

	// One-time credentials consumed by the /auth/confirm dispatcher.
	AuthCode          *string    `json:"-"`
	AuthCodeExpiresAt *time.Time `json:"-"`
	ConfirmTokenHash  *string    `json:"-"`
}
