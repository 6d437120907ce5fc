package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"kumbam-backend/internal/models"
	"kumbam-backend/internal/service"
	"kumbam-backend/internal/util"
)

// BookingHandler handles the venue catalog and booking endpoints.
type BookingHandler struct {
	bookingService *service.BookingService
	logger         *zap.Logger
}

func NewBookingHandler(bookingService *service.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		logger:         logger,
	}
}

// RegisterRoutes registers the catalog and booking routes on the /api
// subtree.
func (h *BookingHandler) RegisterRoutes(router chi.Router) {
	router.Get("/banquets", h.ListBanquets)
	router.Post("/banquets", h.CreateBanquet)
	router.Get("/categories", h.ListCategories)
	router.Get("/availability/{id}/{month}/{year}", h.Availability)
	router.Post("/bookings", h.CreateBooking)
}

// ListBanquets returns the catalog as a bare array. An optional ?q= runs a
// free-text search over name, category and location.
func (h *BookingHandler) ListBanquets(w http.ResponseWriter, r *http.Request) {
	halls, err := h.bookingService.ListHalls(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("Failed to list banquet halls", util.ErrorField(err))
		h.respondWithJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	h.respondWithJSON(w, http.StatusOK, halls)
}

func (h *BookingHandler) CreateBanquet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string  `json:"name"`
		Category string  `json:"category"`
		Price    float64 `json:"price"`
		Capacity int     `json:"capacity"`
		Location string  `json:"location"`
		ImageURL string  `json:"image_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if req.Name == "" || req.Price <= 0 {
		h.respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "Name and price are required"})
		return
	}

	hall := &models.BanquetHall{
		Name:     util.SanitizeInput(req.Name),
		Category: util.SanitizeInput(req.Category),
		Price:    req.Price,
		Capacity: req.Capacity,
		Location: util.SanitizeInput(req.Location),
		ImageURL: req.ImageURL,
	}

	if err := h.bookingService.CreateHall(r.Context(), hall); err != nil {
		h.logger.Error("Failed to create banquet hall", util.ErrorField(err))
		h.respondWithJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	h.respondWithJSON(w, http.StatusCreated, hall)
}

// ListCategories returns the distinct categories as a bare string array.
func (h *BookingHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.bookingService.Categories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", util.ErrorField(err))
		h.respondWithJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	h.respondWithJSON(w, http.StatusOK, categories)
}

// Availability returns a hall summary plus its bookings for one calendar
// month.
func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	hallID := chi.URLParam(r, "id")
	month, errM := strconv.Atoi(chi.URLParam(r, "month"))
	year, errY := strconv.Atoi(chi.URLParam(r, "year"))
	if errM != nil || errY != nil || month < 1 || month > 12 {
		h.respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid month or year"})
		return
	}

	hall, bookings, err := h.bookingService.Availability(r.Context(), hallID, year, time.Month(month))
	if err != nil {
		if errors.Is(err, service.ErrHallNotFound) {
			h.respondWithJSON(w, http.StatusNotFound, map[string]string{"error": "Banquet hall not found"})
			return
		}
		h.logger.Error("Failed to fetch availability",
			util.String("hall_id", hallID),
			util.ErrorField(err))
		h.respondWithJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	type bookingEntry struct {
		BookingDate time.Time `json:"booking_date"`
		Status      string    `json:"status"`
	}
	entries := make([]bookingEntry, 0, len(bookings))
	for _, b := range bookings {
		entries = append(entries, bookingEntry{BookingDate: b.BookingDate, Status: b.Status})
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"hall": map[string]interface{}{
			"name":  hall.Name,
			"price": hall.Price,
		},
		"bookings": entries,
	})
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BanquetID   string    `json:"banquet_id"`
		Email       string    `json:"email"`
		BookingDate time.Time `json:"booking_date"`
		Status      string    `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if req.BanquetID == "" || req.Email == "" || req.BookingDate.IsZero() {
		h.respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "banquet_id, email and booking_date are required"})
		return
	}

	booking := &models.Booking{
		BanquetID:   req.BanquetID,
		Email:       util.NormalizeEmail(req.Email),
		BookingDate: req.BookingDate,
		Status:      req.Status,
	}

	if err := h.bookingService.CreateBooking(r.Context(), booking); err != nil {
		if errors.Is(err, service.ErrHallNotFound) {
			h.respondWithJSON(w, http.StatusNotFound, map[string]string{"error": "Banquet hall not found"})
			return
		}
		h.logger.Error("Failed to create booking",
			util.String("banquet_id", req.BanquetID),
			util.ErrorField(err))
		h.respondWithJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	h.respondWithJSON(w, http.StatusCreated, booking)
}

func (h *BookingHandler) respondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", util.ErrorField(err))
	}
}
