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

// otpRowTTLSeconds garbage-collects stale rows from the append-only log a
// day after issuance. The 5-minute logical expiry lives in expires_at; the
// row TTL only keeps the table from accumulating dead codes forever.
const otpRowTTLSeconds = 86400

type otpRepository struct {
	client *Client
}

func NewOTPRepository(client *Client) OTPRepository {
	return &otpRepository{client: client}
}

// CreateOTP appends a new record to the per-email log. Existing rows are
// never rewritten; a newer issued_at supersedes them.
func (r *otpRepository) CreateOTP(ctx context.Context, rec *models.OTPRecord) error {
	if rec.OTPID == "" {
		rec.OTPID = uuid.New().String()
	}
	if rec.IssuedAt.IsZero() {
		rec.IssuedAt = time.Now().UTC()
	}

	query := r.client.Query(fmt.Sprintf(`
		INSERT INTO otp_codes (email, issued_at, otp_id, code, expires_at)
		VALUES (?, ?, ?, ?, ?) USING TTL %d`, otpRowTTLSeconds),
		rec.Email, rec.IssuedAt, rec.OTPID, rec.Code, rec.ExpiresAt).
		WithContext(ctx)

	if err := r.client.ExecuteWithRetry(query, 2); err != nil {
		util.Error("Failed to create OTP record",
			zap.String("email", rec.Email),
			zap.String("otp_id", rec.OTPID),
			zap.Error(err))
		return fmt.Errorf("failed to create OTP record: %w", err)
	}

	util.Info("OTP record created",
		zap.String("email", rec.Email),
		zap.String("otp_id", rec.OTPID),
		zap.Time("expires_at", rec.ExpiresAt))

	return nil
}

// GetLatestByEmail returns the most recently issued record for an email.
// The clustering order on otp_codes is issued_at DESC, so LIMIT 1 is the
// newest row.
func (r *otpRepository) GetLatestByEmail(ctx context.Context, email string) (*models.OTPRecord, error) {
	rec := &models.OTPRecord{}

	err := r.client.Query(`
		SELECT email, issued_at, otp_id, code, expires_at
		FROM otp_codes WHERE email = ? LIMIT 1`, email).
		WithContext(ctx).
		Scan(&rec.Email, &rec.IssuedAt, &rec.OTPID, &rec.Code, &rec.ExpiresAt)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, ErrNotFound
		}
		util.Error("Failed to get latest OTP",
			zap.String("email", email),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get latest OTP: %w", err)
	}

	return rec, nil
}
