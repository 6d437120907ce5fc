package scylla

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"kumbam-backend/internal/models"
	"kumbam-backend/internal/util"
)

type banquetRepository struct {
	client *Client
}

func NewBanquetRepository(client *Client) BanquetRepository {
	return &banquetRepository{client: client}
}

func (r *banquetRepository) CreateHall(ctx context.Context, hall *models.BanquetHall) error {
	if hall.ID == "" {
		hall.ID = uuid.New().String()
	}
	if hall.CreatedAt.IsZero() {
		hall.CreatedAt = time.Now().UTC()
	}

	query := r.client.Query(`
		INSERT INTO banquet_halls (id, name, category, price, capacity, location, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		hall.ID, hall.Name, hall.Category, hall.Price, hall.Capacity,
		hall.Location, hall.ImageURL, hall.CreatedAt).
		WithContext(ctx)

	if err := r.client.ExecuteWithRetry(query, 2); err != nil {
		util.Error("Failed to create banquet hall",
			zap.String("hall_id", hall.ID),
			zap.Error(err))
		return fmt.Errorf("failed to create banquet hall: %w", err)
	}

	util.Info("Banquet hall created",
		zap.String("hall_id", hall.ID),
		zap.String("name", hall.Name))

	return nil
}

func (r *banquetRepository) GetHallByID(ctx context.Context, id string) (*models.BanquetHall, error) {
	hall := &models.BanquetHall{}

	err := r.client.Query(`
		SELECT id, name, category, price, capacity, location, image_url, created_at
		FROM banquet_halls WHERE id = ?`, id).
		WithContext(ctx).
		Scan(&hall.ID, &hall.Name, &hall.Category, &hall.Price, &hall.Capacity,
			&hall.Location, &hall.ImageURL, &hall.CreatedAt)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, ErrNotFound
		}
		util.Error("Failed to get banquet hall",
			zap.String("hall_id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get banquet hall: %w", err)
	}

	return hall, nil
}

func (r *banquetRepository) ListHalls(ctx context.Context) ([]*models.BanquetHall, error) {
	iter := r.client.Query(`
		SELECT id, name, category, price, capacity, location, image_url, created_at
		FROM banquet_halls`).
		WithContext(ctx).Iter()

	halls := make([]*models.BanquetHall, 0)
	hall := &models.BanquetHall{}
	for iter.Scan(&hall.ID, &hall.Name, &hall.Category, &hall.Price, &hall.Capacity,
		&hall.Location, &hall.ImageURL, &hall.CreatedAt) {
		halls = append(halls, hall)
		hall = &models.BanquetHall{}
	}

	if err := iter.Close(); err != nil {
		util.Error("Failed to list banquet halls", zap.Error(err))
		return nil, fmt.Errorf("failed to list banquet halls: %w", err)
	}

	return halls, nil
}

func (r *banquetRepository) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if booking.BookingID == "" {
		booking.BookingID = uuid.New().String()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC()
	}

	query := r.client.Query(`
		INSERT INTO bookings (banquet_id, booking_date, booking_id, email, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		booking.BanquetID, booking.BookingDate, booking.BookingID,
		booking.Email, booking.Status, booking.CreatedAt).
		WithContext(ctx)

	if err := r.client.ExecuteWithRetry(query, 2); err != nil {
		util.Error("Failed to create booking",
			zap.String("banquet_id", booking.BanquetID),
			zap.String("booking_id", booking.BookingID),
			zap.Error(err))
		return fmt.Errorf("failed to create booking: %w", err)
	}

	util.Info("Booking created",
		zap.String("banquet_id", booking.BanquetID),
		zap.String("booking_id", booking.BookingID),
		zap.Time("booking_date", booking.BookingDate))

	return nil
}

// ListBookingsByDateRange returns bookings for a hall with
// from <= booking_date < to, in clustering (date ascending) order.
func (r *banquetRepository) ListBookingsByDateRange(ctx context.Context, banquetID string, from, to time.Time) ([]*models.Booking, error) {
	iter := r.client.Query(`
		SELECT banquet_id, booking_date, booking_id, email, status, created_at
		FROM bookings WHERE banquet_id = ? AND booking_date >= ? AND booking_date < ?`,
		banquetID, from, to).
		WithContext(ctx).Iter()

	bookings := make([]*models.Booking, 0)
	b := &models.Booking{}
	for iter.Scan(&b.BanquetID, &b.BookingDate, &b.BookingID, &b.Email, &b.Status, &b.CreatedAt) {
		bookings = append(bookings, b)
		b = &models.Booking{}
	}

	if err := iter.Close(); err != nil {
		util.Error("Failed to list bookings",
			zap.String("banquet_id", banquetID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	return bookings, nil
}
