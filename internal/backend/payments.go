package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
	"github.com/shopspring/decimal"
)

// PaymentOrderRequest asks the backend to open a processor order
type PaymentOrderRequest struct {
	ReservationID models.ID       `json:"reservationId"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
}

type paymentOrderResponse struct {
	OrderID string `json:"orderId"`
}

// CaptureResponse is the processor's answer to a capture
type CaptureResponse struct {
	OrderID    string `json:"orderId"`
	CaptureID  string `json:"captureId"`
	Status     string `json:"status"`
	PayerEmail string `json:"payerEmail,omitempty"`
}

// CreatePaymentOrder opens a processor order for a reservation
func (c *Client) CreatePaymentOrder(ctx context.Context, req *PaymentOrderRequest) (string, error) {
	var resp paymentOrderResponse
	if err := c.do(ctx, http.MethodPost, "/payments/orders", req, &resp); err != nil {
		return "", fmt.Errorf("failed to create payment order: %w", err)
	}
	if resp.OrderID == "" {
		return "", fmt.Errorf("failed to create payment order: response has no orderId")
	}
	c.invalidate(ctx, ResourcePayments)
	return resp.OrderID, nil
}

// CapturePaymentOrder captures an approved order. The backend confirms the
// reservation as part of the capture.
func (c *Client) CapturePaymentOrder(ctx context.Context, orderID string) (*CaptureResponse, error) {
	var resp CaptureResponse
	path := "/payments/orders/" + url.PathEscape(orderID) + "/capture"
	if err := c.do(ctx, http.MethodPost, path, struct{}{}, &resp); err != nil {
		return nil, fmt.Errorf("failed to capture order %s: %w", orderID, err)
	}
	c.invalidate(ctx, ResourcePayments, ResourceReservations)
	return &resp, nil
}

func (c *Client) ListPayments(ctx context.Context) ([]models.Payment, error) {
	var ps []models.Payment
	if err := c.cachedGet(ctx, ResourcePayments, "/payments", &ps); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return ps, nil
}
