package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"kumbam-backend/internal/models"
	"kumbam-backend/internal/repository/scylla"
	"kumbam-backend/internal/util"
)

var (
	// ErrOTPPersist is returned when a freshly generated code cannot be
	// stored. No mail is sent in that case.
	ErrOTPPersist = errors.New("failed to store otp")
	// ErrOTPDelivery is returned when the code was stored but the email
	// could not be delivered. The stored code remains verifiable.
	ErrOTPDelivery = errors.New("failed to deliver otp email")
)

// otpValidity is how long a code stays verifiable after issuance.
const otpValidity = 5 * time.Minute

// Mailer delivers a single plain-text message.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Purpose selects the email template for an issued code.
type Purpose int

const (
	PurposeLogin Purpose = iota
	PurposePasswordReset
	PurposeResend
)

func (p Purpose) subject() string {
	switch p {
	case PurposePasswordReset:
		return "Your KUMBAM Password Reset OTP"
	case PurposeResend:
		return "Your OTP Code"
	default:
		return "Your OTP - KUMBAM"
	}
}

func (p Purpose) body(code string) string {
	switch p {
	case PurposePasswordReset:
		return fmt.Sprintf("Your OTP for password reset is %s. It will expire in 5 minutes.", code)
	case PurposeResend:
		return fmt.Sprintf("Your OTP is: %s", code)
	default:
		return fmt.Sprintf("Your OTP is %s. It will expire in 5 minutes.", code)
	}
}

// VerifyStatus is the outcome of checking a submitted code.
type VerifyStatus int

const (
	VerifyValid VerifyStatus = iota
	VerifyInvalid
	VerifyExpired
	VerifyNotFound
)

// OTPService issues and verifies one-time codes. Codes live in an
// append-only log; only the newest code per email counts.
type OTPService struct {
	otps   scylla.OTPRepository
	mailer Mailer
	logger *zap.Logger
	now    func() time.Time
}

func NewOTPService(otps scylla.OTPRepository, mailer Mailer, logger *zap.Logger) *OTPService {
	return &OTPService{
		otps:   otps,
		mailer: mailer,
		logger: logger,
		now:    time.Now,
	}
}

// GenerateCode returns a uniformly random six-digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Issue generates a code, stores it, then emails it. The store happens
// first: a delivery failure still leaves a verifiable code behind, and the
// caller gets the record plus ErrOTPDelivery.
func (s *OTPService) Issue(ctx context.Context, email string, purpose Purpose) (*models.OTPRecord, error) {
	// Once issuance starts it runs to completion; a client disconnect must
	// not abort the write or the send.
	ctx = context.WithoutCancel(ctx)

	code, err := GenerateCode()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOTPPersist, err)
	}

	issuedAt := s.now().UTC()
	rec := &models.OTPRecord{
		Email:     email,
		Code:      code,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(otpValidity),
	}

	if err := s.otps.CreateOTP(ctx, rec); err != nil {
		s.logger.Error("Failed to persist OTP",
			util.String("email", email),
			util.ErrorField(err))
		return nil, fmt.Errorf("%w: %v", ErrOTPPersist, err)
	}

	if err := s.mailer.Send(ctx, email, purpose.subject(), purpose.body(code)); err != nil {
		s.logger.Error("Failed to deliver OTP email",
			util.String("email", email),
			util.ErrorField(err))
		return rec, fmt.Errorf("%w: %v", ErrOTPDelivery, err)
	}

	s.logger.Info("OTP issued",
		util.String("email", email),
		util.TimeField("expires_at", rec.ExpiresAt))

	return rec, nil
}

// Verify checks a submitted code against the newest record for the email.
// A wrong code reports invalid even when the stored code has also expired.
func (s *OTPService) Verify(ctx context.Context, email, code string) (VerifyStatus, error) {
	rec, err := s.otps.GetLatestByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			return VerifyNotFound, nil
		}
		return VerifyNotFound, fmt.Errorf("failed to look up otp: %w", err)
	}

	if rec.Code != code {
		return VerifyInvalid, nil
	}
	if s.now().UTC().After(rec.ExpiresAt) {
		return VerifyExpired, nil
	}
	return VerifyValid, nil
}
