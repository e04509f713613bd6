package models

import "time"

type StayStatus string

const (
	StayStatusBooked    StayStatus = "booked"
	StayStatusCancelled StayStatus = "cancelled"
	StayStatusCompleted StayStatus = "completed"
)

// Stay is a calendar booking of the house by one member.
type Stay struct {
	ID        int        `json:"id"`
	HouseID   int        `json:"house_id"`
	UserID    int        `json:"user_id"`
	StartDate time.Time  `json:"start_date"`
	EndDate   time.Time  `json:"end_date"`
	Note      string     `json:"note,omitempty"`
	Status    StayStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}
