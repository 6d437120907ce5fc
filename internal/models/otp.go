package models

import "time"

// OTPRecord is one issued code in the append-only per-email OTP log.
// Verification always targets the newest record for an email; older rows are
// superseded, never rewritten.
type OTPRecord struct {
	Email     string    `json:"email" db:"email"`
	OTPID     string    `json:"otp_id" db:"otp_id"`
	Code      string    `json:"-" db:"code"`
	IssuedAt  time.Time `json:"issued_at" db:"issued_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}
