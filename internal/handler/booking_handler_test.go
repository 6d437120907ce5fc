package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kumbam-backend/internal/models"
	redisrepo "kumbam-backend/internal/repository/redis"
	"kumbam-backend/internal/repository/scylla"
	"kumbam-backend/internal/service"
)

type fakeBanquetRepo struct {
	halls    map[string]*models.BanquetHall
	bookings []*models.Booking
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

func newBookingTestServer(t *testing.T) (chi.Router, *fakeBanquetRepo) {
	t.Helper()

	repo := &fakeBanquetRepo{halls: map[string]*models.BanquetHall{}}
	logger := zap.NewNop()
	bookingService := service.NewBookingService(repo, redisrepo.NewCatalogCache(nil), nil, nil, logger)

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		NewBookingHandler(bookingService, logger).RegisterRoutes(r)
	})

	return router, repo
}

func TestListBanquetsReturnsBareArray(t *testing.T) {
	router, repo := newBookingTestServer(t)
	require.NoError(t, repo.CreateHall(context.Background(), &models.BanquetHall{
		ID: "h1", Name: "Lotus Hall", Category: "Wedding", Price: 45000,
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/banquets", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var halls []models.BanquetHall
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &halls))
	require.Len(t, halls, 1)
	assert.Equal(t, "Lotus Hall", halls[0].Name)
}

func TestListCategoriesReturnsBareArray(t *testing.T) {
	router, repo := newBookingTestServer(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateHall(ctx, &models.BanquetHall{ID: "h1", Name: "A", Category: "Wedding"}))
	require.NoError(t, repo.CreateHall(ctx, &models.BanquetHall{ID: "h2", Name: "B", Category: "Conference"}))

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var categories []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &categories))
	assert.Equal(t, []string{"Conference", "Wedding"}, categories)
}

func TestCreateBanquetEndpoint(t *testing.T) {
	router, repo := newBookingTestServer(t)

	raw, _ := json.Marshal(map[string]interface{}{
		"name":     "Lotus Hall",
		"category": "Wedding",
		"price":    45000,
		"capacity": 500,
		"location": "Madurai",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/banquets", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, repo.halls, 1)

	var hall models.BanquetHall
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hall))
	assert.NotEmpty(t, hall.ID)
	assert.Equal(t, "Lotus Hall", hall.Name)
}

func TestCreateBanquetRejectsMissingName(t *testing.T) {
	router, _ := newBookingTestServer(t)

	raw, _ := json.Marshal(map[string]interface{}{"price": 45000})
	req := httptest.NewRequest(http.MethodPost, "/api/banquets", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAvailabilityEndpoint(t *testing.T) {
	router, repo := newBookingTestServer(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateHall(ctx, &models.BanquetHall{ID: "h1", Name: "Lotus Hall", Price: 45000}))
	require.NoError(t, repo.CreateBooking(ctx, &models.Booking{
		BanquetID:   "h1",
		BookingDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		Status:      "confirmed",
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/availability/h1/6/2025", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Hall struct {
			Name  string  `json:"name"`
			Price float64 `json:"price"`
		} `json:"hall"`
		Bookings []struct {
			BookingDate time.Time `json:"booking_date"`
			Status      string    `json:"status"`
		} `json:"bookings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Lotus Hall", body.Hall.Name)
	assert.Equal(t, float64(45000), body.Hall.Price)
	require.Len(t, body.Bookings, 1)
	assert.Equal(t, "confirmed", body.Bookings[0].Status)
}

func TestAvailabilityUnknownHall(t *testing.T) {
	router, _ := newBookingTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/availability/missing/6/2025", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Banquet hall not found", body["error"])
}

func TestAvailabilityRejectsBadMonth(t *testing.T) {
	router, _ := newBookingTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/availability/h1/13/2025", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBookingEndpoint(t *testing.T) {
	router, repo := newBookingTestServer(t)
	require.NoError(t, repo.CreateHall(context.Background(), &models.BanquetHall{ID: "h1", Name: "Lotus Hall"}))

	raw, _ := json.Marshal(map[string]interface{}{
		"banquet_id":   "h1",
		"email":        "Priya@Example.com",
		"booking_date": "2025-06-15T00:00:00Z",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, repo.bookings, 1)
	assert.Equal(t, "priya@example.com", repo.bookings[0].Email)
	assert.Equal(t, "pending", repo.bookings[0].Status)
}

func TestCreateBookingUnknownHall(t *testing.T) {
	router, _ := newBookingTestServer(t)

	raw, _ := json.Marshal(map[string]interface{}{
		"banquet_id":   "missing",
		"email":        "a@b.com",
		"booking_date": "2025-06-15T00:00:00Z",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
