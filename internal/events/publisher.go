package events

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"kumbam-backend/internal/client"
	"kumbam-backend/internal/util"
)

// Event types published to Kafka.
const (
	EventUserSignup    = "user.signup"
	EventOTPIssued     = "otp.issued"
	EventOTPResent     = "otp.resent"
	EventPasswordReset = "password.reset"
	EventBookingMade   = "booking.created"
)

// Publisher emits auth and booking events to Kafka. A nil Publisher (or a
// Publisher without a producer) is safe to call; publishing is best-effort
// and never blocks a request on broker failure.
type Publisher struct {
	producer     *client.KafkaProducer
	authTopic    string
	bookingTopic string
}

func NewPublisher(producer *client.KafkaProducer, authTopic, bookingTopic string) *Publisher {
	return &Publisher{
		producer:     producer,
		authTopic:    authTopic,
		bookingTopic: bookingTopic,
	}
}

type authEventPayload struct {
	EventType string    `json:"event_type"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
}

type bookingEventPayload struct {
	EventType   string    `json:"event_type"`
	BanquetID   string    `json:"banquet_id"`
	BookingID   string    `json:"booking_id"`
	Email       string    `json:"email"`
	BookingDate time.Time `json:"booking_date"`
	Timestamp   time.Time `json:"timestamp"`
}

// PublishAuthEvent emits an auth-flow event keyed by email.
func (p *Publisher) PublishAuthEvent(ctx context.Context, eventType, email string) {
	if p == nil || p.producer == nil {
		return
	}

	payload, err := json.Marshal(authEventPayload{
		EventType: eventType,
		Email:     email,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		util.Warn("Failed to marshal auth event", zap.Error(err))
		return
	}

	if err := p.producer.ProduceMessage(ctx, p.authTopic, []byte(email), payload); err != nil {
		util.Warn("Failed to publish auth event",
			zap.String("event_type", eventType),
			zap.String("email", email),
			zap.Error(err))
	}
}

// PublishBookingEvent emits a booking event keyed by banquet ID.
func (p *Publisher) PublishBookingEvent(ctx context.Context, eventType, banquetID, bookingID, email string, bookingDate time.Time) {
	if p == nil || p.producer == nil {
		return
	}

	payload, err := json.Marshal(bookingEventPayload{
		EventType:   eventType,
		BanquetID:   banquetID,
		BookingID:   bookingID,
		Email:       email,
		BookingDate: bookingDate,
		Timestamp:   time.Now().UTC(),
	})
	if err != nil {
		util.Warn("Failed to marshal booking event", zap.Error(err))
		return
	}

	if err := p.producer.ProduceMessage(ctx, p.bookingTopic, []byte(banquetID), payload); err != nil {
		util.Warn("Failed to publish booking event",
			zap.String("event_type", eventType),
			zap.String("banquet_id", banquetID),
			zap.Error(err))
	}
}
