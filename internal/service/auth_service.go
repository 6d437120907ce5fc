package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"kumbam-backend/internal/audit"
	"kumbam-backend/internal/events"
	"kumbam-backend/internal/hashing"
	"kumbam-backend/internal/models"
	"kumbam-backend/internal/repository/scylla"
	"kumbam-backend/internal/util"
)

var (
	// ErrUserExists is returned when a signup targets an already registered
	// email.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when the email has no account.
	ErrUserNotFound = errors.New("user not found")
	// ErrIncorrectPassword is returned when the password does not match.
	ErrIncorrectPassword = errors.New("incorrect password")
	// ErrPasswordUpdate is returned when a verified reset fails to persist
	// the new hash.
	ErrPasswordUpdate = errors.New("failed to update password")
)

// LoginResult carries what a successful password check hands back to the
// client: the raw OTP as the transitional token plus profile fields.
type LoginResult struct {
	Token    string
	Phone    string
	Username string
}

// AuthService implements signup, the two-step OTP login, and the password
// reset flow.
type AuthService struct {
	users    scylla.UserRepository
	otp      *OTPService
	hasher   *hashing.Hasher
	events   *events.Publisher
	recorder *audit.Recorder
	logger   *zap.Logger
}

func NewAuthService(
	users scylla.UserRepository,
	otp *OTPService,
	hasher *hashing.Hasher,
	publisher *events.Publisher,
	recorder *audit.Recorder,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		otp:      otp,
		hasher:   hasher,
		events:   publisher,
		recorder: recorder,
		logger:   logger,
	}
}

// Signup registers a new account. The email is the unique key; a duplicate
// signup never overwrites the existing password hash.
func (s *AuthService) Signup(ctx context.Context, fullName, email, phone, password string) error {
	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}

	user := &models.User{
		Email:        email,
		FullName:     fullName,
		Phone:        phone,
		PasswordHash: hash,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, scylla.ErrAlreadyExists) {
			s.recorder.Record(events.EventUserSignup, email, false, "duplicate email")
			return ErrUserExists
		}
		s.recorder.Record(events.EventUserSignup, email, false, "store failure")
		return fmt.Errorf("signup failed: %w", err)
	}

	s.recorder.Record(events.EventUserSignup, email, true, "")
	s.events.PublishAuthEvent(ctx, events.EventUserSignup, email)

	s.logger.Info("User signed up", util.String("email", email))
	return nil
}

// Login checks the password and, when it matches, issues an OTP to the
// user's email. The raw code doubles as the session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			s.recorder.Record("login", email, false, "unknown email")
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("login failed: %w", err)
	}

	if !s.hasher.ComparePassword(user.PasswordHash, password) {
		s.recorder.Record("login", email, false, "wrong password")
		return nil, ErrIncorrectPassword
	}

	rec, err := s.otp.Issue(ctx, email, PurposeLogin)
	if err != nil {
		s.recorder.Record("login", email, false, "otp issue failure")
		return nil, err
	}

	s.recorder.Record("login", email, true, "")
	s.events.PublishAuthEvent(ctx, events.EventOTPIssued, email)

	return &LoginResult{
		Token:    rec.Code,
		Phone:    user.Phone,
		Username: user.FullName,
	}, nil
}

// ForgotPassword issues a reset code to a registered email.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if _, err := s.users.GetUserByEmail(ctx, email); err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			s.recorder.Record("forgot_password", email, false, "unknown email")
			return ErrUserNotFound
		}
		return fmt.Errorf("forgot password failed: %w", err)
	}

	if _, err := s.otp.Issue(ctx, email, PurposePasswordReset); err != nil {
		s.recorder.Record("forgot_password", email, false, "otp issue failure")
		return err
	}

	s.recorder.Record("forgot_password", email, true, "")
	s.events.PublishAuthEvent(ctx, events.EventOTPIssued, email)
	return nil
}

// VerifyEmailOTP checks a submitted code against the newest one issued.
func (s *AuthService) VerifyEmailOTP(ctx context.Context, email, code string) (VerifyStatus, error) {
	status, err := s.otp.Verify(ctx, email, code)
	if err != nil {
		return status, err
	}

	s.recorder.Record("verify_otp", email, status == VerifyValid, "")
	return status, nil
}

// ResetPassword verifies the reset code and stores a new password hash.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) (VerifyStatus, error) {
	status, err := s.otp.Verify(ctx, email, code)
	if err != nil {
		return status, err
	}
	if status != VerifyValid {
		s.recorder.Record(events.EventPasswordReset, email, false, "otp rejected")
		return status, nil
	}

	hash, err := s.hasher.HashPassword(newPassword)
	if err != nil {
		return status, fmt.Errorf("%w: %v", ErrPasswordUpdate, err)
	}

	if err := s.users.UpdatePassword(ctx, email, hash); err != nil {
		s.recorder.Record(events.EventPasswordReset, email, false, "store failure")
		return status, fmt.Errorf("%w: %v", ErrPasswordUpdate, err)
	}

	s.recorder.Record(events.EventPasswordReset, email, true, "")
	s.events.PublishAuthEvent(ctx, events.EventPasswordReset, email)

	s.logger.Info("Password reset", util.String("email", email))
	return VerifyValid, nil
}

// ResendOTP issues a fresh code for a registered email. The previous code
// is superseded, not rewritten; issuance history stays intact.
func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	if _, err := s.users.GetUserByEmail(ctx, email); err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("resend otp failed: %w", err)
	}

	if _, err := s.otp.Issue(ctx, email, PurposeResend); err != nil {
		s.recorder.Record(events.EventOTPResent, email, false, "otp issue failure")
		return err
	}

	s.recorder.Record(events.EventOTPResent, email, true, "")
	s.events.PublishAuthEvent(ctx, events.EventOTPResent, email)
	return nil
}
