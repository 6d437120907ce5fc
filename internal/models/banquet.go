package models

import "time"

// BanquetHall is a bookable venue.
type BanquetHall struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Category  string    `json:"category" db:"category"`
	Price     float64   `json:"price" db:"price"`
	Capacity  int       `json:"capacity" db:"capacity"`
	Location  string    `json:"location" db:"location"`
	ImageURL  string    `json:"image_url" db:"image_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Booking reserves a hall for a single date.
type Booking struct {
	BookingID   string    `json:"booking_id" db:"booking_id"`
	BanquetID   string    `json:"banquet_id" db:"banquet_id"`
	Email       string    `json:"email" db:"email"`
	BookingDate time.Time `json:"booking_date" db:"booking_date"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
