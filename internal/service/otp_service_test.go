package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kumbam-backend/internal/models"
	"kumbam-backend/internal/repository/scylla"
)

// -------- test fakes --------

type fakeOTPRepo struct {
	records   []*models.OTPRecord
	createErr error
	getErr    error
}

func (f *fakeOTPRepo) CreateOTP(ctx context.Context, rec *models.OTPRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeOTPRepo) GetLatestByEmail(ctx context.Context, email string) (*models.OTPRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	var latest *models.OTPRecord
	for _, rec := range f.records {
		if rec.Email != email {
			continue
		}
		if latest == nil || rec.IssuedAt.After(latest.IssuedAt) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, scylla.ErrNotFound
	}
	return latest, nil
}

type fakeMailer struct {
	sent    []sentMail
	sendErr error
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func newTestOTPService(repo *fakeOTPRepo, m *fakeMailer, now time.Time) *OTPService {
	s := NewOTPService(repo, m, zap.NewNop())
	s.now = func() time.Time { return now }
	return s
}

// -------- tests --------

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestIssueStoresThenSends(t *testing.T) {
	repo := &fakeOTPRepo{}
	m := &fakeMailer{}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestOTPService(repo, m, now)

	rec, err := s.Issue(context.Background(), "a@b.com", PurposeLogin)
	require.NoError(t, err)

	require.Len(t, repo.records, 1)
	require.Len(t, m.sent, 1)

	assert.Equal(t, "a@b.com", rec.Email)
	assert.Equal(t, now, rec.IssuedAt)
	assert.Equal(t, now.Add(5*time.Minute), rec.ExpiresAt)
	assert.Contains(t, m.sent[0].body, rec.Code)
	assert.Equal(t, "a@b.com", m.sent[0].to)
}

func TestIssuePersistFailureSendsNothing(t *testing.T) {
	repo := &fakeOTPRepo{createErr: errors.New("write timeout")}
	m := &fakeMailer{}
	s := newTestOTPService(repo, m, time.Now())

	rec, err := s.Issue(context.Background(), "a@b.com", PurposeLogin)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOTPPersist)
	assert.Nil(t, rec)
	assert.Empty(t, m.sent)
}

func TestIssueDeliveryFailureKeepsRecord(t *testing.T) {
	repo := &fakeOTPRepo{}
	m := &fakeMailer{sendErr: errors.New("smtp refused")}
	s := newTestOTPService(repo, m, time.Now())

	rec, err := s.Issue(context.Background(), "a@b.com", PurposeLogin)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOTPDelivery)

	// The stored code stays verifiable even though the email never left.
	require.NotNil(t, rec)
	require.Len(t, repo.records, 1)
	assert.Equal(t, rec.Code, repo.records[0].Code)
}

func TestIssueSubjectsByPurpose(t *testing.T) {
	repo := &fakeOTPRepo{}
	m := &fakeMailer{}
	s := newTestOTPService(repo, m, time.Now())

	_, err := s.Issue(context.Background(), "a@b.com", PurposePasswordReset)
	require.NoError(t, err)
	assert.Equal(t, "Your KUMBAM Password Reset OTP", m.sent[0].subject)

	_, err = s.Issue(context.Background(), "a@b.com", PurposeResend)
	require.NoError(t, err)
	assert.Equal(t, "Your OTP Code", m.sent[1].subject)
}

func TestVerifyNoRecord(t *testing.T) {
	s := newTestOTPService(&fakeOTPRepo{}, &fakeMailer{}, time.Now())

	status, err := s.Verify(context.Background(), "nobody@b.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, VerifyNotFound, status)
}

func TestVerifyWrongCodeBeatsExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeOTPRepo{records: []*models.OTPRecord{{
		Email:     "a@b.com",
		Code:      "111111",
		IssuedAt:  now.Add(-time.Hour),
		ExpiresAt: now.Add(-55 * time.Minute),
	}}}
	s := newTestOTPService(repo, &fakeMailer{}, now)

	// The code is both wrong and expired; the mismatch wins.
	status, err := s.Verify(context.Background(), "a@b.com", "222222")
	require.NoError(t, err)
	assert.Equal(t, VerifyInvalid, status)
}

func TestVerifyExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeOTPRepo{records: []*models.OTPRecord{{
		Email:     "a@b.com",
		Code:      "111111",
		IssuedAt:  now.Add(-5*time.Minute - time.Second),
		ExpiresAt: now.Add(-time.Second),
	}}}
	s := newTestOTPService(repo, &fakeMailer{}, now)

	status, err := s.Verify(context.Background(), "a@b.com", "111111")
	require.NoError(t, err)
	assert.Equal(t, VerifyExpired, status)
}

func TestVerifyAtExactExpiryIsValid(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeOTPRepo{records: []*models.OTPRecord{{
		Email:     "a@b.com",
		Code:      "111111",
		IssuedAt:  now.Add(-5 * time.Minute),
		ExpiresAt: now,
	}}}
	s := newTestOTPService(repo, &fakeMailer{}, now)

	status, err := s.Verify(context.Background(), "a@b.com", "111111")
	require.NoError(t, err)
	assert.Equal(t, VerifyValid, status)
}

func TestVerifyOnlyNewestCodeCounts(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeOTPRepo{records: []*models.OTPRecord{
		{Email: "a@b.com", Code: "111111", IssuedAt: now.Add(-2 * time.Minute), ExpiresAt: now.Add(3 * time.Minute)},
		{Email: "a@b.com", Code: "222222", IssuedAt: now.Add(-1 * time.Minute), ExpiresAt: now.Add(4 * time.Minute)},
	}}
	s := newTestOTPService(repo, &fakeMailer{}, now)

	status, err := s.Verify(context.Background(), "a@b.com", "222222")
	require.NoError(t, err)
	assert.Equal(t, VerifyValid, status)

	// The superseded code no longer verifies.
	status, err = s.Verify(context.Background(), "a@b.com", "111111")
	require.NoError(t, err)
	assert.Equal(t, VerifyInvalid, status)
}
