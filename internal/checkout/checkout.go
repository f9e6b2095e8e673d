// Package checkout isolates the payment processor behind a two-call
// Gateway (create order, capture order) and tracks each order through
// OrderCreated -> Approved -> Captured | Failed.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
	"github.com/cx-tal-miterani/rental-booking-system/internal/reservation"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidTransition = errors.New("invalid checkout transition")
	ErrOrderMismatch     = reservation.ErrOrderMismatch
	ErrCaptureInProgress = errors.New("order is being captured")
)

type State string

const (
	StateNew          State = "new"
	StateOrderCreated State = "order_created"
	StateApproved     State = "approved"
	StateCaptured     State = "captured"
	StateFailed       State = "failed"
)

var validNext = map[State]map[State]bool{
	StateNew:          {StateOrderCreated: true, StateFailed: true},
	StateOrderCreated: {StateApproved: true, StateFailed: true},
	StateApproved:     {StateCaptured: true, StateFailed: true},
	StateCaptured:     {},
	StateFailed:       {},
}

// CanTransition reports whether a checkout may move from one state to another
func CanTransition(from, to State) bool {
	return validNext[from][to]
}

// Terminal reports whether no further transition is possible
func (s State) Terminal() bool {
	return s == StateCaptured || s == StateFailed
}

// Order is what the payer is asked to pay
type Order struct {
	ReservationID models.ID
	Amount        decimal.Decimal
	Currency      string
	Description   string
}

// Capture is the processor's record of collected funds
type Capture struct {
	OrderID    string `json:"orderId"`
	CaptureID  string `json:"captureId"`
	Status     string `json:"status"`
	PayerEmail string `json:"payerEmail,omitempty"`
}

// Gateway is the payment processor
type Gateway interface {
	CreateOrder(ctx context.Context, order Order) (string, error)
	CaptureOrder(ctx context.Context, orderID string) (*Capture, error)
}

// Checkout is one order's state machine. It is not safe for concurrent use.
type Checkout struct {
	state   State
	order   Order
	orderID string
	capture *Capture
	failure string
}

func New(order Order) *Checkout {
	return &Checkout{state: StateNew, order: order}
}

func (c *Checkout) State() State       { return c.state }
func (c *Checkout) OrderID() string    { return c.orderID }
func (c *Checkout) Order() Order       { return c.order }
func (c *Checkout) Captured() *Capture { return c.capture }
func (c *Checkout) Failure() string    { return c.failure }

func (c *Checkout) transition(to State) error {
	if !CanTransition(c.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.state, to)
	}
	c.state = to
	return nil
}

// Create opens the processor order
func (c *Checkout) Create(ctx context.Context, gw Gateway) (string, error) {
	if !CanTransition(c.state, StateOrderCreated) {
		return "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.state, StateOrderCreated)
	}
	orderID, err := gw.CreateOrder(ctx, c.order)
	if err != nil {
		c.fail(err.Error())
		return "", fmt.Errorf("failed to create order: %w", err)
	}
	c.orderID = orderID
	return orderID, c.transition(StateOrderCreated)
}

// Approve records the payer's approval of orderID
func (c *Checkout) Approve(orderID string) error {
	if c.state == StateOrderCreated && orderID != c.orderID {
		return fmt.Errorf("%w: got %s, want %s", ErrOrderMismatch, orderID, c.orderID)
	}
	return c.transition(StateApproved)
}

// Capture collects an approved order
func (c *Checkout) Capture(ctx context.Context, gw Gateway) (*Capture, error) {
	if !CanTransition(c.state, StateCaptured) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.state, StateCaptured)
	}
	capture, err := gw.CaptureOrder(ctx, c.orderID)
	if err != nil {
		c.fail(err.Error())
		return nil, fmt.Errorf("failed to capture order %s: %w", c.orderID, err)
	}
	c.capture = capture
	return capture, c.transition(StateCaptured)
}

// Fail ends the checkout, e.g. when the payer cancels or the widget errors
func (c *Checkout) Fail(reason string) error {
	if !CanTransition(c.state, StateFailed) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.state, StateFailed)
	}
	c.fail(reason)
	return nil
}

func (c *Checkout) fail(reason string) {
	c.state = StateFailed
	c.failure = reason
}
