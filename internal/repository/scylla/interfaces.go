package scylla

import (
	"context"
	"time"

	"kumbam-backend/internal/models"
)

// UserRepository defines the interface for user record operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}

// OTPRepository defines the interface for the append-only OTP log
type OTPRepository interface {
	CreateOTP(ctx context.Context, rec *models.OTPRecord) error
	GetLatestByEmail(ctx context.Context, email string) (*models.OTPRecord, error)
}

// BanquetRepository defines the interface for venue and booking records
type BanquetRepository interface {
	CreateHall(ctx context.Context, hall *models.BanquetHall) error
	GetHallByID(ctx context.Context, id string) (*models.BanquetHall, error)
	ListHalls(ctx context.Context) ([]*models.BanquetHall, error)
	CreateBooking(ctx context.Context, booking *models.Booking) error
	ListBookingsByDateRange(ctx context.Context, banquetID string, from, to time.Time) ([]*models.Booking, error)
}
