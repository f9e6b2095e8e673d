package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
	"github.com/cx-tal-miterani/rental-booking-system/internal/reservation"
)

var ErrUnknownCheckout = errors.New("no checkout for reservation")

// ReservationAPI is the part of the backend client that books stays
type ReservationAPI interface {
	CreateReservation(ctx context.Context, req *models.CreateReservationRequest) (models.ID, error)
	UpdateReservationStatus(ctx context.Context, id models.ID, status models.BookingStatus) (*models.Reservation, error)
}

// Event is a checkout state change
type Event struct {
	ReservationID models.ID `json:"reservationId"`
	FlowID        string    `json:"flowId"`
	OrderID       string    `json:"orderId,omitempty"`
	State         State     `json:"state"`
	Detail        string    `json:"detail,omitempty"`
	At            time.Time `json:"at"`
}

// Observer is told about every checkout state change
type Observer func(ctx context.Context, e Event)

// Direct runs checkouts in-process against a Gateway
type Direct struct {
	reservations ReservationAPI
	gateway      Gateway
	currency     string
	confirm      bool
	observe      Observer

	mu        sync.Mutex
	checkouts map[models.ID]*entry
}

type entry struct {
	flowID    string
	checkout  *Checkout
	capturing bool
}

type DirectOption func(*Direct)

// WithObserver reports state changes to o
func WithObserver(o Observer) DirectOption {
	return func(d *Direct) { d.observe = o }
}

// ConfirmAfterCapture marks the reservation confirmed once funds are
// captured. Needed when the gateway does not talk to the backend itself.
func ConfirmAfterCapture() DirectOption {
	return func(d *Direct) { d.confirm = true }
}

func NewDirect(reservations ReservationAPI, gateway Gateway, currency string, opts ...DirectOption) *Direct {
	d := &Direct{
		reservations: reservations,
		gateway:      gateway,
		currency:     currency,
		checkouts:    make(map[models.ID]*entry),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var _ reservation.Payments = (*Direct)(nil)

func (d *Direct) Begin(ctx context.Context, req *reservation.PaymentRequest) (*reservation.PaymentHandle, error) {
	id, err := d.reservations.CreateReservation(ctx, &models.CreateReservationRequest{
		PropertyID: req.PropertyID,
		CustomerID: req.CustomerID,
		CheckIn:    req.Dates.Start,
		CheckOut:   req.Dates.End,
		Guests:     req.Guests,
		TotalPrice: req.Total,
		Status:     models.BookingStatusPending,
	})
	if err != nil {
		return nil, err
	}

	c := New(Order{
		ReservationID: id,
		Amount:        req.Total,
		Currency:      d.currency,
		Description:   fmt.Sprintf("Reservation %s for %s", id, req.CustomerName),
	})
	orderID, err := c.Create(ctx, d.gateway)
	if err != nil {
		d.notify(ctx, req.FlowID, c)
		d.cancelReservation(ctx, id)
		return nil, err
	}

	d.mu.Lock()
	d.checkouts[id] = &entry{flowID: req.FlowID, checkout: c}
	d.mu.Unlock()

	d.notify(ctx, req.FlowID, c)
	return &reservation.PaymentHandle{ReservationID: id, OrderID: orderID}, nil
}

func (d *Direct) Approve(ctx context.Context, h reservation.PaymentHandle) error {
	e, err := d.approve(h)
	if err != nil {
		return err
	}
	c := e.checkout
	d.notify(ctx, e.flowID, c)

	if _, err := c.Capture(ctx, d.gateway); err != nil {
		d.forget(h.ReservationID)
		d.notify(ctx, e.flowID, c)
		d.cancelReservation(ctx, h.ReservationID)
		return err
	}
	d.forget(h.ReservationID)

	if d.confirm {
		if _, err := d.reservations.UpdateReservationStatus(ctx, h.ReservationID, models.BookingStatusConfirmed); err != nil {
			log.Printf("checkout: order %s captured but reservation %s not confirmed: %v", c.OrderID(), h.ReservationID, err)
		}
	}
	d.notify(ctx, e.flowID, c)
	return nil
}

// Cancel fails an open checkout and cancels its reservation. A checkout
// whose capture has started cannot be cancelled.
func (d *Direct) Cancel(ctx context.Context, h reservation.PaymentHandle, reason string) error {
	d.mu.Lock()
	e, ok := d.checkouts[h.ReservationID]
	if !ok {
		d.mu.Unlock()
		return nil
	}
	if e.capturing {
		d.mu.Unlock()
		return fmt.Errorf("%w: reservation %s", ErrCaptureInProgress, h.ReservationID)
	}
	delete(d.checkouts, h.ReservationID)
	d.mu.Unlock()

	if err := e.checkout.Fail(reason); err != nil {
		return err
	}
	d.notify(ctx, e.flowID, e.checkout)

	if _, err := d.reservations.UpdateReservationStatus(ctx, h.ReservationID, models.BookingStatusCancelled); err != nil {
		return fmt.Errorf("failed to cancel reservation %s: %w", h.ReservationID, err)
	}
	return nil
}

// Pending returns the number of open checkouts
func (d *Direct) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.checkouts)
}

// approve records the payer's approval and claims the checkout for capture
func (d *Direct) approve(h reservation.PaymentHandle) (*entry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.checkouts[h.ReservationID]
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrUnknownCheckout, h.ReservationID)
	}
	if e.capturing {
		return nil, fmt.Errorf("%w: reservation %s", ErrCaptureInProgress, h.ReservationID)
	}
	if err := e.checkout.Approve(h.OrderID); err != nil {
		return nil, err
	}
	e.capturing = true
	return e, nil
}

func (d *Direct) forget(id models.ID) {
	d.mu.Lock()
	delete(d.checkouts, id)
	d.mu.Unlock()
}

func (d *Direct) cancelReservation(ctx context.Context, id models.ID) {
	if _, err := d.reservations.UpdateReservationStatus(ctx, id, models.BookingStatusCancelled); err != nil {
		log.Printf("checkout: failed to cancel reservation %s: %v", id, err)
	}
}

func (d *Direct) notify(ctx context.Context, flowID string, c *Checkout) {
	if d.observe == nil {
		return
	}
	d.observe(ctx, Event{
		ReservationID: c.Order().ReservationID,
		FlowID:        flowID,
		OrderID:       c.OrderID(),
		State:         c.State(),
		Detail:        c.Failure(),
		At:            time.Now().UTC(),
	})
}
