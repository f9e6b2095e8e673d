package reservation

import (
	"context"

	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
	"github.com/cx-tal-miterani/rental-booking-system/internal/pricing"
	"github.com/shopspring/decimal"
)

// CustomerCreator registers the guest remotely
type CustomerCreator interface {
	CreateCustomer(ctx context.Context, contact models.ContactInfo) (models.ID, error)
}

// PaymentRequest is everything needed to book and charge a stay
type PaymentRequest struct {
	FlowID       string
	PropertyID   models.ID
	CustomerID   models.ID
	CustomerName string
	Email        string
	Dates        pricing.DateRange
	Guests       int
	Total        decimal.Decimal
}

// PaymentHandle identifies a pending reservation and its processor order.
// Both are handed to the payment widget.
type PaymentHandle struct {
	ReservationID models.ID `json:"reservationId"`
	OrderID       string    `json:"orderId"`
}

// Payments creates the pending reservation with its order, and later
// captures or abandons it.
type Payments interface {
	Begin(ctx context.Context, req *PaymentRequest) (*PaymentHandle, error)
	Approve(ctx context.Context, handle PaymentHandle) error
	Cancel(ctx context.Context, handle PaymentHandle, reason string) error
}
