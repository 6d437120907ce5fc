package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kumbam-backend/internal/models"
	redisrepo "kumbam-backend/internal/repository/redis"
	"kumbam-backend/internal/repository/scylla"
)

type fakeBanquetRepo struct {
	halls    map[string]*models.BanquetHall
	bookings []*models.Booking
	listErr  error
}

func newFakeBanquetRepo() *fakeBanquetRepo {
	return &fakeBanquetRepo{halls: map[string]*models.BanquetHall{}}
}

func (f *fakeBanquetRepo) CreateHall(ctx context.Context, hall *models.BanquetHall) error {
	if hall.ID == "" {
		hall.ID = "hall-" + hall.Name
	}
	f.halls[hall.ID] = hall
	return nil
}

func (f *fakeBanquetRepo) GetHallByID(ctx context.Context, id string) (*models.BanquetHall, error) {
	hall, ok := f.halls[id]
	if !ok {
		return nil, scylla.ErrNotFound
	}
	return hall, nil
}

func (f *fakeBanquetRepo) ListHalls(ctx context.Context) ([]*models.BanquetHall, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	halls := make([]*models.BanquetHall, 0, len(f.halls))
	for _, hall := range f.halls {
		halls = append(halls, hall)
	}
	return halls, nil
}

func (f *fakeBanquetRepo) CreateBooking(ctx context.Context, booking *models.Booking) error {
	f.bookings = append(f.bookings, booking)
	return nil
}

func (f *fakeBanquetRepo) ListBookingsByDateRange(ctx context.Context, banquetID string, from, to time.Time) ([]*models.Booking, error) {
	out := make([]*models.Booking, 0)
	for _, b := range f.bookings {
		if b.BanquetID != banquetID {
			continue
		}
		if b.BookingDate.Before(from) || !b.BookingDate.Before(to) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func newTestBookingService(repo *fakeBanquetRepo) *BookingService {
	// No Redis, Elasticsearch or Kafka wired; the service degrades to the
	// repository alone.
	return NewBookingService(repo, redisrepo.NewCatalogCache(nil), nil, nil, zap.NewNop())
}

func TestAvailabilityUnknownHall(t *testing.T) {
	s := newTestBookingService(newFakeBanquetRepo())

	_, _, err := s.Availability(context.Background(), "missing", 2025, time.June)
	assert.ErrorIs(t, err, ErrHallNotFound)
}

func TestAvailabilityReturnsHallAndMonthBookings(t *testing.T) {
	repo := newFakeBanquetRepo()
	ctx := context.Background()

	hall := &models.BanquetHall{ID: "h1", Name: "Lotus Hall", Price: 45000}
	require.NoError(t, repo.CreateHall(ctx, hall))

	inMonth := &models.Booking{BanquetID: "h1", BookingDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), Status: "confirmed"}
	nextMonth := &models.Booking{BanquetID: "h1", BookingDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), Status: "pending"}
	otherHall := &models.Booking{BanquetID: "h2", BookingDate: time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC), Status: "confirmed"}
	require.NoError(t, repo.CreateBooking(ctx, inMonth))
	require.NoError(t, repo.CreateBooking(ctx, nextMonth))
	require.NoError(t, repo.CreateBooking(ctx, otherHall))

	s := newTestBookingService(repo)

	gotHall, bookings, err := s.Availability(ctx, "h1", 2025, time.June)
	require.NoError(t, err)

	assert.Equal(t, "Lotus Hall", gotHall.Name)
	require.Len(t, bookings, 1)
	assert.Equal(t, inMonth.BookingDate, bookings[0].BookingDate)
}

func TestCategoriesDedupedAndSorted(t *testing.T) {
	repo := newFakeBanquetRepo()
	ctx := context.Background()

	for _, h := range []*models.BanquetHall{
		{Name: "A", Category: "Wedding"},
		{Name: "B", Category: "Conference"},
		{Name: "C", Category: "Wedding"},
		{Name: "D", Category: ""},
	} {
		require.NoError(t, repo.CreateHall(ctx, h))
	}

	s := newTestBookingService(repo)

	categories, err := s.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Conference", "Wedding"}, categories)
}

func TestCreateBookingUnknownHall(t *testing.T) {
	s := newTestBookingService(newFakeBanquetRepo())

	err := s.CreateBooking(context.Background(), &models.Booking{
		BanquetID:   "missing",
		Email:       "a@b.com",
		BookingDate: time.Now(),
	})
	assert.ErrorIs(t, err, ErrHallNotFound)
}

func TestCreateBookingDefaultsStatus(t *testing.T) {
	repo := newFakeBanquetRepo()
	ctx := context.Background()
	require.NoError(t, repo.CreateHall(ctx, &models.BanquetHall{ID: "h1", Name: "Lotus Hall"}))

	s := newTestBookingService(repo)

	booking := &models.Booking{BanquetID: "h1", Email: "a@b.com", BookingDate: time.Now()}
	require.NoError(t, s.CreateBooking(ctx, booking))

	require.Len(t, repo.bookings, 1)
	assert.Equal(t, "pending", repo.bookings[0].Status)
}

func TestListHallsFallsThroughToRepo(t *testing.T) {
	repo := newFakeBanquetRepo()
	ctx := context.Background()
	require.NoError(t, repo.CreateHall(ctx, &models.BanquetHall{ID: "h1", Name: "Lotus Hall"}))

	s := newTestBookingService(repo)

	halls, err := s.ListHalls(ctx, "")
	require.NoError(t, err)
	require.Len(t, halls, 1)
	assert.Equal(t, "Lotus Hall", halls[0].Name)

	// A query with no search index wired still serves the full listing.
	halls, err = s.ListHalls(ctx, "lotus")
	require.NoError(t, err)
	assert.Len(t, halls, 1)
}
