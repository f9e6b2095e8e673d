package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/cx-tal-miterani/rental-booking-system/internal/backend"
	"github.com/stripe/stripe-go"
	stripeclient "github.com/stripe/stripe-go/client"
)

// PaymentAPI is the part of the backend client that proxies the processor
type PaymentAPI interface {
	CreatePaymentOrder(ctx context.Context, req *backend.PaymentOrderRequest) (string, error)
	CapturePaymentOrder(ctx context.Context, orderID string) (*backend.CaptureResponse, error)
}

// BackendGateway uses the processor endpoints exposed by the backend
type BackendGateway struct {
	api PaymentAPI
}

func NewBackendGateway(api PaymentAPI) *BackendGateway {
	return &BackendGateway{api: api}
}

func (g *BackendGateway) CreateOrder(ctx context.Context, order Order) (string, error) {
	return g.api.CreatePaymentOrder(ctx, &backend.PaymentOrderRequest{
		ReservationID: order.ReservationID,
		Amount:        order.Amount,
		Currency:      order.Currency,
	})
}

func (g *BackendGateway) CaptureOrder(ctx context.Context, orderID string) (*Capture, error) {
	resp, err := g.api.CapturePaymentOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &Capture{
		OrderID:    resp.OrderID,
		CaptureID:  resp.CaptureID,
		Status:     resp.Status,
		PayerEmail: resp.PayerEmail,
	}, nil
}

// StripeGateway maps orders onto PaymentIntents with manual capture. The
// page confirms the intent with Stripe.js; that confirmation is the approval.
type StripeGateway struct {
	api *stripeclient.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{api: stripeclient.New(secretKey, nil)}
}

func (g *StripeGateway) CreateOrder(ctx context.Context, order Order) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(order.Amount.Shift(2).Round(0).IntPart()),
		Currency:      stripe.String(strings.ToLower(order.Currency)),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
	}
	if order.Description != "" {
		params.Description = stripe.String(order.Description)
	}
	params.AddMetadata("reservation_id", order.ReservationID.String())
	params.SetIdempotencyKey("reservation-" + order.ReservationID.String())

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: %w", err)
	}
	return pi.ID, nil
}

func (g *StripeGateway) CaptureOrder(ctx context.Context, orderID string) (*Capture, error) {
	pi, err := g.api.PaymentIntents.Capture(orderID, &stripe.PaymentIntentCaptureParams{})
	if err != nil {
		return nil, fmt.Errorf("stripe: %w", err)
	}
	return &Capture{
		OrderID:    pi.ID,
		CaptureID:  pi.ID,
		Status:     string(pi.Status),
		PayerEmail: pi.ReceiptEmail,
	}, nil
}
