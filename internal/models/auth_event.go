package models

import "time"

// AuthEvent is one row of the auth audit trail. Detail never carries
// passwords, hashes, or OTP codes.
type AuthEvent struct {
	EventTime time.Time `json:"event_time" db:"event_time"`
	EventType string    `json:"event_type" db:"event_type"`
	Email     string    `json:"email" db:"email"`
	Success   bool      `json:"success" db:"success"`
	Detail    string    `json:"detail" db:"detail"`
}
