package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"kumbam-backend/internal/events"
	"kumbam-backend/internal/models"
	"kumbam-backend/internal/repository/redis"
	"kumbam-backend/internal/repository/scylla"
	"kumbam-backend/internal/search"
	"kumbam-backend/internal/util"
)

// ErrHallNotFound is returned when a hall ID matches no record.
var ErrHallNotFound = errors.New("banquet hall not found")

// BookingService serves the venue catalog and bookings. Redis fronts the
// catalog reads and Elasticsearch serves free-text queries; both are
// optional and the service degrades to Scylla alone.
type BookingService struct {
	halls  scylla.BanquetRepository
	cache  *redis.CatalogCache
	index  *search.BanquetIndex
	events *events.Publisher
	logger *zap.Logger
}

func NewBookingService(
	halls scylla.BanquetRepository,
	cache *redis.CatalogCache,
	index *search.BanquetIndex,
	publisher *events.Publisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		halls:  halls,
		cache:  cache,
		index:  index,
		events: publisher,
		logger: logger,
	}
}

// ListHalls returns the catalog. A non-empty query goes to the search
// index first; cache and Scylla back the plain listing.
func (s *BookingService) ListHalls(ctx context.Context, query string) ([]*models.BanquetHall, error) {
	if query != "" && s.index != nil {
		halls, err := s.index.Search(ctx, query)
		if err == nil {
			return halls, nil
		}
		s.logger.Warn("Search failed, falling back to full listing",
			util.String("query", query),
			util.ErrorField(err))
	}

	if halls, ok := s.cache.GetHalls(ctx); ok {
		return halls, nil
	}

	halls, err := s.halls.ListHalls(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.SetHalls(ctx, halls)
	return halls, nil
}

// CreateHall stores a hall, mirrors it into the search index, and drops
// the catalog cache.
func (s *BookingService) CreateHall(ctx context.Context, hall *models.BanquetHall) error {
	if err := s.halls.CreateHall(ctx, hall); err != nil {
		return err
	}

	s.index.Index(ctx, hall)
	s.cache.InvalidateHalls(ctx)
	return nil
}

// Categories returns the distinct hall categories, sorted.
func (s *BookingService) Categories(ctx context.Context) ([]string, error) {
	if categories, ok := s.cache.GetCategories(ctx); ok {
		return categories, nil
	}

	halls, err := s.halls.ListHalls(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(halls))
	categories := make([]string, 0, len(halls))
	for _, hall := range halls {
		if hall.Category == "" {
			continue
		}
		if _, ok := seen[hall.Category]; ok {
			continue
		}
		seen[hall.Category] = struct{}{}
		categories = append(categories, hall.Category)
	}
	sort.Strings(categories)

	s.cache.SetCategories(ctx, categories)
	return categories, nil
}

// Availability fetches a hall and its bookings for one calendar month, in
// parallel.
func (s *BookingService) Availability(ctx context.Context, hallID string, year int, month time.Month) (*models.BanquetHall, []*models.Booking, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	var (
		hall     *models.BanquetHall
		bookings []*models.Booking
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h, err := s.halls.GetHallByID(gctx, hallID)
		if err != nil {
			if errors.Is(err, scylla.ErrNotFound) {
				return ErrHallNotFound
			}
			return err
		}
		hall = h
		return nil
	})
	g.Go(func() error {
		b, err := s.halls.ListBookingsByDateRange(gctx, hallID, from, to)
		if err != nil {
			return err
		}
		bookings = b
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return hall, bookings, nil
}

// CreateBooking records a booking against an existing hall.
func (s *BookingService) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if _, err := s.halls.GetHallByID(ctx, booking.BanquetID); err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			return ErrHallNotFound
		}
		return fmt.Errorf("failed to check hall: %w", err)
	}

	if booking.Status == "" {
		booking.Status = "pending"
	}

	if err := s.halls.CreateBooking(ctx, booking); err != nil {
		return err
	}

	s.events.PublishBookingEvent(ctx, events.EventBookingMade,
		booking.BanquetID, booking.BookingID, booking.Email, booking.BookingDate)

	return nil
}
