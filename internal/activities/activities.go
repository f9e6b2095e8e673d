package activities

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cx-tal-miterani/rental-booking-system/internal/backend"
	"github.com/cx-tal-miterani/rental-booking-system/internal/checkout"
	"github.com/cx-tal-miterani/rental-booking-system/internal/events"
	"github.com/cx-tal-miterani/rental-booking-system/internal/journal"
	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
	"github.com/cx-tal-miterani/rental-booking-system/internal/session"
	"github.com/shopspring/decimal"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
)

// Activities holds the dependencies of the checkout activities
type Activities struct {
	Reservations checkout.ReservationAPI
	Gateway      checkout.Gateway
	Journal      journal.Journal
	Events       events.Publisher
	// Session carries the service token sent to the backend
	Session *session.Session
	// ConfirmAfterCapture marks the reservation confirmed after a capture,
	// for gateways that do not confirm it through the backend
	ConfirmAfterCapture bool
}

type CreateReservationInput struct {
	PropertyID models.ID       `json:"propertyId"`
	CustomerID models.ID       `json:"customerId"`
	CheckIn    time.Time       `json:"checkIn"`
	CheckOut   time.Time       `json:"checkOut"`
	Guests     int             `json:"guests"`
	Total      decimal.Decimal `json:"total"`
}

type PaymentOrderInput struct {
	ReservationID models.ID       `json:"reservationId"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Description   string          `json:"description"`
}

type CaptureInput struct {
	ReservationID models.ID `json:"reservationId"`
	OrderID       string    `json:"orderId"`
}

type CancelReservationInput struct {
	ReservationID models.ID `json:"reservationId"`
	Reason        string    `json:"reason"`
}

type ConfirmationInput struct {
	ReservationID models.ID       `json:"reservationId"`
	CustomerName  string          `json:"customerName"`
	Email         string          `json:"email"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	OrderID       string          `json:"orderId"`
	CaptureID     string          `json:"captureId"`
}

func (a *Activities) withSession(ctx context.Context) context.Context {
	if a.Session == nil {
		return ctx
	}
	return session.NewContext(ctx, a.Session)
}

// nonRetryable stops Temporal retrying requests the backend refused
func nonRetryable(err error) error {
	var apiErr *backend.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Status < 500:
		return temporal.NewNonRetryableApplicationError(apiErr.Error(), "BackendRejected", err)
	case errors.Is(err, backend.ErrUnauthorized):
		return temporal.NewNonRetryableApplicationError(err.Error(), "Unauthorized", err)
	case errors.Is(err, checkout.ErrInvalidTransition):
		return temporal.NewNonRetryableApplicationError(err.Error(), "InvalidTransition", err)
	}
	return err
}

// CreateReservation records the pending reservation
func (a *Activities) CreateReservation(ctx context.Context, input CreateReservationInput) (models.ID, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Creating reservation", "propertyId", input.PropertyID, "customerId", input.CustomerID)

	id, err := a.Reservations.CreateReservation(a.withSession(ctx), &models.CreateReservationRequest{
		PropertyID: input.PropertyID,
		CustomerID: input.CustomerID,
		CheckIn:    input.CheckIn,
		CheckOut:   input.CheckOut,
		Guests:     input.Guests,
		TotalPrice: input.Total,
		Status:     models.BookingStatusPending,
	})
	if err != nil {
		logger.Error("Failed to create reservation", "error", err)
		return "", nonRetryable(err)
	}
	return id, nil
}

// CreatePaymentOrder opens the processor order for a reservation
func (a *Activities) CreatePaymentOrder(ctx context.Context, input PaymentOrderInput) (string, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Creating payment order", "reservationId", input.ReservationID, "amount", input.Amount.StringFixed(2))

	orderID, err := a.Gateway.CreateOrder(a.withSession(ctx), checkout.Order{
		ReservationID: input.ReservationID,
		Amount:        input.Amount,
		Currency:      input.Currency,
		Description:   input.Description,
	})
	if err != nil {
		logger.Error("Failed to create payment order", "error", err)
		return "", nonRetryable(err)
	}
	return orderID, nil
}

// CapturePaymentOrder collects an approved order
func (a *Activities) CapturePaymentOrder(ctx context.Context, input CaptureInput) (*checkout.Capture, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Capturing payment order", "orderId", input.OrderID)

	ctx = a.withSession(ctx)
	capture, err := a.Gateway.CaptureOrder(ctx, input.OrderID)
	if err != nil {
		logger.Error("Failed to capture payment order", "orderId", input.OrderID, "error", err)
		return nil, nonRetryable(err)
	}

	if a.ConfirmAfterCapture {
		if _, err := a.Reservations.UpdateReservationStatus(ctx, input.ReservationID, models.BookingStatusConfirmed); err != nil {
			logger.Error("Captured but failed to confirm reservation", "reservationId", input.ReservationID, "error", err)
		}
	}
	return capture, nil
}

// CancelReservation releases the dates of an abandoned checkout
func (a *Activities) CancelReservation(ctx context.Context, input CancelReservationInput) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Cancelling reservation", "reservationId", input.ReservationID, "reason", input.Reason)

	if _, err := a.Reservations.UpdateReservationStatus(a.withSession(ctx), input.ReservationID, models.BookingStatusCancelled); err != nil {
		return nonRetryable(err)
	}
	if a.Events != nil {
		payload := events.BookingStatusChangedPayload{ReservationID: input.ReservationID, Status: models.BookingStatusCancelled}
		if err := a.Events.Publish(ctx, events.EventBookingStatusChanged, input.ReservationID.String(), payload); err != nil {
			logger.Warn("Failed to publish status change", "error", err)
		}
	}
	return nil
}

// RecordCheckoutEvent journals a state change
func (a *Activities) RecordCheckoutEvent(ctx context.Context, e checkout.Event) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Checkout state changed", "reservationId", e.ReservationID, "state", e.State)

	if e.State == checkout.StateFailed && a.Events != nil {
		payload := events.CheckoutFailedPayload{ReservationID: e.ReservationID, OrderID: e.OrderID, Reason: e.Detail}
		if err := a.Events.Publish(ctx, events.EventCheckoutFailed, e.ReservationID.String(), payload); err != nil {
			logger.Warn("Failed to publish checkout failure", "error", err)
		}
	}

	if a.Journal == nil || e.ReservationID == "" {
		return nil
	}
	err := a.Journal.Record(ctx, &journal.Entry{
		ReservationID: e.ReservationID,
		FlowID:        e.FlowID,
		OrderID:       e.OrderID,
		State:         string(e.State),
		Detail:        e.Detail,
		CreatedAt:     e.At,
	})
	if err != nil {
		return fmt.Errorf("failed to journal checkout event: %w", err)
	}
	return nil
}

// PublishConfirmation announces a paid reservation
func (a *Activities) PublishConfirmation(ctx context.Context, input ConfirmationInput) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Publishing confirmation", "reservationId", input.ReservationID, "customer", input.CustomerName)

	if a.Events == nil {
		return nil
	}
	payload := events.ReservationConfirmedPayload{
		ReservationID: input.ReservationID,
		CustomerName:  input.CustomerName,
		Email:         input.Email,
		Total:         input.Total,
		Currency:      input.Currency,
		OrderID:       input.OrderID,
		CaptureID:     input.CaptureID,
	}
	if err := a.Events.Publish(ctx, events.EventReservationConfirmed, input.ReservationID.String(), payload); err != nil {
		return fmt.Errorf("failed to publish confirmation: %w", err)
	}
	return nil
}
