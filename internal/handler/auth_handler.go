package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"kumbam-backend/internal/service"
	"kumbam-backend/internal/util"
)

// AuthHandler handles the signup, login, OTP and password reset endpoints.
type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// authResponse is the envelope every auth endpoint except resend returns.
// Business failures ride in it with a 200 status; only infrastructure
// failures turn into a 500.
type authResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Token    string `json:"token,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Username string `json:"username,omitempty"`
}

// RegisterRoutes registers the auth routes on the /api subtree.
func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Post("/signup", h.Signup)
	router.Post("/login", h.Login)
	router.Post("/verify-email-otp", h.VerifyEmailOTP)
	router.Post("/reset-password", h.ResetPassword)
	router.Post("/forgot-password", h.ForgotPassword)
	router.Post("/resend-email-otp", h.ResendOTP)
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName string `json:"fullName"`
		Phone    string `json:"phone"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, authResponse{Success: false, Message: "Invalid request body"})
		return
	}

	email := util.NormalizeEmail(req.Email)

	err := h.authService.Signup(r.Context(), util.SanitizeInput(req.FullName), email, util.SanitizeInput(req.Phone), req.Password)
	switch {
	case err == nil:
		h.respondWithJSON(w, http.StatusOK, authResponse{Success: true})
	case errors.Is(err, service.ErrUserExists):
		h.respondWithJSON(w, http.StatusOK, authResponse{Success: false, Message: "User already exists"})
	default:
		h.logger.Error("Signup failed", util.String("email", email), util.ErrorField(err))
		h.respondWithJSON(w, http.StatusOK, authResponse{Success: false, Message: "Signup failed"})
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, authResponse{Success: false, Message: "Invalid request body"})
		return
	}

	email := util.NormalizeEmail(req.Email)

	result, err := h.authService.Login(r.Context(), email, req.Password)
	switch {
	case err == nil:
		h.respondWithJSON(w, http.StatusOK, authResponse{
			Success:  true,
			Token:    result.Token,
			Phone:    result.Phone,
			Username: result.Username,
			Message:  "OTP sent successfully",
		})
	case errors.Is(err, service.ErrUserNotFound):
		h.respondWithJSON(w, http.StatusOK, authResponse{Success: false, Message: "User not found"})
	case errors.Is(err, service.ErrIncorrectPassword):
		h.respondWithJSON(w, http.StatusOK, authResponse{Success: false, Message: "Incorrect password"})
	case errors.Is(err, service.ErrOTPPersist):
		h.respondWithJSON(w, http.StatusOK, authResponse{Success: false, Message: "OTP generation failed"})
	case errors.Is(err, service.ErrOTPDelivery):
		h.respondWithJSON(w, http.StatusOK, authResponse{Success: false, Message: "Failed to send OTP email"})
	default:
		h.logger.Error("Login failed", util.String("email", email), util.ErrorField(err))
		h.respondWithJSON(w, http.StatusInternalServerError, authResponse{Success: false, Message: "Database error"})
	}
}

func (h *AuthHandler) VerifyEmailOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, authResponse{Success: false, Message: "Invalid request body"})
		return
	}

	email := util.NormalizeEmail(req.Email)

	status, err := h.authService.VerifyEmailOTP(r.Context(), email, req.OTP)
	if err != nil {
		h.logger.Error("OTP verification failed", util.String("email", email), util.ErrorField(err))
		h.respondWithJSON(w, http.StatusInternalServerError, authResponse{Success: false, Message: "Server error"})
		return
	}

	switch status {
	case service.VerifyNotFound:
		h.respondWithJSON(w, http.StatusOK, authResponse{Success: false, Message: "No OTP found"})
	case service.VerifyInvalid:
		h.respondWithJSON(w, http.StatusOK, authResponse{Success: false, Message: "Incorrect OTP"})
	case service.VerifyExpired:
		h.respondWithJSON(w, http.StatusOK, authResponse{Success: false, Message: "OTP expired"})
	default:
		h.respondWithJSON(w, http.StatusOK, authResponse{Success: true, Message: "OTP verified successfully"})
	}
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		OTP      string `json:"otp"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, authResponse{Success: false, Message: "Invalid request body"})
		return
	}

	if req.Email == "" || req.OTP == "" || req.Password == "" {
		h.respondWithJSON(w, http.StatusOK, authResponse{Success: false, Message: "All fields are required"})
		return
	}

	email := util.NormalizeEmail(req.Email)

	status, err := h.authService.ResetPassword(r.Context(), email, req.OTP, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrPasswordUpdate) {
			h.respondWithJSON(w, http.StatusOK, authResponse{Success: false, Message: "Password reset failed"})
			return
		}
		h.logger.Error("Password reset failed", util.String("email", email), util.ErrorField(err))
		h.respondWithJSON(w, http.StatusInternalServerError, authResponse{Success: false, Message: "Server error"})
		return
	}

	switch status {
	case service.VerifyNotFound:
		h.respondWithJSON(w, http.StatusOK, authResponse{Success: false, Message: "No OTP found"})
	case service.VerifyInvalid:
		h.respondWithJSON(w, http.StatusOK, authResponse{Success: false, Message: "Invalid OTP"})
	case service.VerifyExpired:
		h.respondWithJSON(w, http.StatusOK, authResponse{Success: false, Message: "OTP expired"})
	default:
		h.respondWithJSON(w, http.StatusOK, authResponse{Success: true, Message: "Password reset successful"})
	}
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, authResponse{Success: false, Message: "Invalid request body"})
		return
	}

	if req.Email == "" {
		h.respondWithJSON(w, http.StatusOK, authResponse{Success: false, Message: "Email is required"})
		return
	}

	email := util.NormalizeEmail(req.Email)

	err := h.authService.ForgotPassword(r.Context(), email)
	switch {
	case err == nil:
		h.respondWithJSON(w, http.StatusOK, authResponse{Success: true, Message: "OTP sent to your email"})
	case errors.Is(err, service.ErrUserNotFound):
		h.respondWithJSON(w, http.StatusOK, authResponse{Success: false, Message: "User not found"})
	case errors.Is(err, service.ErrOTPPersist):
		h.respondWithJSON(w, http.StatusOK, authResponse{Success: false, Message: "OTP generation failed"})
	case errors.Is(err, service.ErrOTPDelivery):
		h.respondWithJSON(w, http.StatusOK, authResponse{Success: false, Message: "Failed to send OTP email"})
	default:
		h.logger.Error("Forgot password failed", util.String("email", email), util.ErrorField(err))
		h.respondWithJSON(w, http.StatusInternalServerError, authResponse{Success: false, Message: "Server error"})
	}
}

// ResendOTP uses a bare {message} envelope with real status codes, unlike
// the other auth endpoints.
func (h *AuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, map[string]string{"message": "Email is required"})
		return
	}

	if req.Email == "" {
		h.respondWithJSON(w, http.StatusBadRequest, map[string]string{"message": "Email is required"})
		return
	}

	email := util.NormalizeEmail(req.Email)

	err := h.authService.ResendOTP(r.Context(), email)
	switch {
	case err == nil:
		h.respondWithJSON(w, http.StatusOK, map[string]string{"message": "OTP resent successfully"})
	case errors.Is(err, service.ErrUserNotFound):
		h.respondWithJSON(w, http.StatusNotFound, map[string]string{"message": "Email not found"})
	case errors.Is(err, service.ErrOTPDelivery):
		h.respondWithJSON(w, http.StatusInternalServerError, map[string]string{"message": "Error sending OTP email"})
	default:
		h.logger.Error("Resend OTP failed", util.String("email", email), util.ErrorField(err))
		h.respondWithJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server error"})
	}
}

func (h *AuthHandler) respondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", util.ErrorField(err))
	}
}
