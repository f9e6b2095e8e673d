// Package events publishes booking events to Kafka.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventReservationConfirmed = "reservation.confirmed"
	EventBookingStatusChanged = "booking.status_changed"
	EventCheckoutFailed       = "checkout.failed"

	envelopeVersion = 1
)

// Envelope wraps every event on the topic
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope marshals payload into an envelope keyed by correlationID
func NewEnvelope(producer, eventType, correlationID string, payload any) (*Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}
	return &Envelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		EventVersion:  envelopeVersion,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       b,
	}, nil
}

// UnwrapPayload decodes an envelope's payload
func UnwrapPayload[T any](e *Envelope) (T, error) {
	var t T
	if err := json.Unmarshal(e.Payload, &t); err != nil {
		return t, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}

type ReservationConfirmedPayload struct {
	ReservationID models.ID       `json:"reservation_id"`
	CustomerName  string          `json:"customer_name"`
	Email         string          `json:"email,omitempty"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	OrderID       string          `json:"order_id"`
	CaptureID     string          `json:"capture_id"`
}

type BookingStatusChangedPayload struct {
	ReservationID models.ID            `json:"reservation_id"`
	Status        models.BookingStatus `json:"status"`
}

type CheckoutFailedPayload struct {
	ReservationID models.ID `json:"reservation_id"`
	OrderID       string    `json:"order_id,omitempty"`
	Reason        string    `json:"reason"`
}
