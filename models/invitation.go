package models

import "time"

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusRevoked  InviteStatus = "revoked"
)

// Invitation is an outstanding or fulfilled offer for a specific email to
// join a specific house. InvitedEmail is stored normalized (lower-cased,
// trimmed). The record moves pending -> accepted exactly once, stamping
// UserID and JoinedAt; it is never deleted or reverted.
type Invitation struct {
	ID           int          `json:"id"`
	HouseID      int          `json:"house_id"`
	InvitedEmail string       `json:"invited_email"`
	InvitedBy    int          `json:"invited_by"`
	Status       InviteStatus `json:"status"`
	UserID       *int         `json:"user_id,omitempty"`
	JoinedAt     *time.Time   `json:"joined_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}
