// Package reservation drives a guest through Contact -> Dates -> Payment.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
	"github.com/cx-tal-miterani/rental-booking-system/internal/pricing"
	"github.com/shopspring/decimal"
)

// Flow is one guest's booking wizard. The mutex is never held across a
// remote call; the submitting flag keeps a second gated action out while
// one is in flight.
type Flow struct {
	mu sync.Mutex

	id           string
	propertyID   models.ID
	propertyName string
	nightlyRate  decimal.Decimal
	maxGuests    int

	customers CustomerCreator
	payments  Payments

	step         Step
	contact      models.ContactInfo
	dates        pricing.DateRange
	guests       int
	customerID   models.ID
	submitted    models.ContactInfo
	handle       *PaymentHandle
	stale        []PaymentHandle
	confirmation *models.Confirmation
	submitting   bool
	closed       bool
}

// Snapshot is a copy of a flow's state
type Snapshot struct {
	ID           string               `json:"id"`
	PropertyID   models.ID            `json:"propertyId"`
	PropertyName string               `json:"propertyName"`
	Step         Step                 `json:"step"`
	Contact      models.ContactInfo   `json:"contact"`
	Dates        pricing.DateRange    `json:"dates"`
	Guests       int                  `json:"guests"`
	CustomerID   models.ID            `json:"customerId,omitempty"`
	Submitting   bool                 `json:"submitting"`
	Pricing      pricing.Result       `json:"pricing"`
	Payment      *PaymentHandle       `json:"payment,omitempty"`
	Confirmation *models.Confirmation `json:"confirmation,omitempty"`
}

func NewFlow(id string, property *models.Property, customers CustomerCreator, payments Payments) *Flow {
	return &Flow{
		id:           id,
		propertyID:   property.ID,
		propertyName: property.Name,
		nightlyRate:  property.NightlyRate,
		maxGuests:    property.MaxGuests,
		customers:    customers,
		payments:     payments,
		step:         StepContact,
		guests:       1,
	}
}

func (f *Flow) ID() string { return f.id }

func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := Snapshot{
		ID:           f.id,
		PropertyID:   f.propertyID,
		PropertyName: f.propertyName,
		Step:         f.step,
		Contact:      f.contact,
		Dates:        f.dates,
		Guests:       f.guests,
		CustomerID:   f.customerID,
		Submitting:   f.submitting,
		Pricing:      pricing.Compute(f.dates, f.nightlyRate),
	}
	if f.handle != nil {
		h := *f.handle
		s.Payment = &h
	}
	if f.confirmation != nil {
		c := *f.confirmation
		s.Confirmation = &c
	}
	return s
}

func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

func (f *Flow) Pricing() pricing.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return pricing.Compute(f.dates, f.nightlyRate)
}

// usable must be called with mu held
func (f *Flow) usable() error {
	switch {
	case f.closed:
		return ErrClosed
	case f.confirmation != nil:
		return ErrCompleted
	case f.submitting:
		return ErrSubmitting
	}
	return nil
}

// finish clears the submitting flag after a remote call and reports
// whether the result may still be applied. Must be called with mu held.
func (f *Flow) finish() error {
	f.submitting = false
	if f.closed {
		return ErrClosed
	}
	return nil
}

// SubmitContact validates the guest's details, registers the customer and
// advances to Dates. Resubmitting unchanged details after navigating back
// reuses the customer already created.
func (f *Flow) SubmitContact(ctx context.Context, contact models.ContactInfo) error {
	f.mu.Lock()
	if err := f.usable(); err != nil {
		f.mu.Unlock()
		return err
	}
	if f.step != StepContact {
		f.mu.Unlock()
		return fmt.Errorf("%w: submit contact at %s", ErrWrongStep, f.step)
	}
	f.contact = contact
	if err := Validate(contact); err != nil {
		f.mu.Unlock()
		return err
	}
	if f.customerID != "" && contact == f.submitted {
		f.step = StepDates
		f.mu.Unlock()
		return nil
	}
	f.submitting = true
	f.mu.Unlock()

	id, err := f.customers.CreateCustomer(ctx, contact)

	f.mu.Lock()
	defer f.mu.Unlock()
	if ferr := f.finish(); ferr != nil {
		return ferr
	}
	if err != nil {
		log.Printf("reservation %s: create customer failed: %v", f.id, err)
		return fmt.Errorf("failed to submit contact: %w", err)
	}
	f.customerID = id
	f.submitted = contact
	f.step = StepDates
	return nil
}

// SetDates records the stay and party size. Dates cannot change while a
// payment is open; navigate back to Dates first.
func (f *Flow) SetDates(r pricing.DateRange, guests int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.usable(); err != nil {
		return err
	}
	if f.step == StepPayment {
		return fmt.Errorf("%w: set dates at %s", ErrWrongStep, f.step)
	}
	if guests < 1 || (f.maxGuests > 0 && guests > f.maxGuests) {
		return &ValidationError{Fields: []string{"guests"}}
	}
	f.dates = r
	f.guests = guests
	return nil
}

// ContinueToPayment moves Dates -> Payment once the range is complete
func (f *Flow) ContinueToPayment() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.usable(); err != nil {
		return err
	}
	if f.step != StepDates {
		return fmt.Errorf("%w: continue at %s", ErrWrongStep, f.step)
	}
	if !f.dates.Complete() {
		return &ValidationError{Fields: []string{"dates"}}
	}
	f.step = StepPayment
	return nil
}

// GoTo navigates back to an earlier step. Entered data is kept.
func (f *Flow) GoTo(step Step) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.usable(); err != nil {
		return err
	}
	if _, ok := stepNames[step]; !ok || step > f.step {
		return fmt.Errorf("%w: go to %s from %s", ErrWrongStep, step, f.step)
	}
	if f.step == StepPayment && step < StepPayment && f.handle != nil {
		f.stale = append(f.stale, *f.handle)
		f.handle = nil
	}
	f.step = step
	return nil
}

// BeginPayment creates the pending reservation and its processor order.
// Calling it again while the order is open returns the same handle.
func (f *Flow) BeginPayment(ctx context.Context) (*PaymentHandle, error) {
	f.mu.Lock()
	if err := f.usable(); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	if f.step != StepPayment {
		f.mu.Unlock()
		return nil, fmt.Errorf("%w: begin payment at %s", ErrWrongStep, f.step)
	}
	if f.handle != nil {
		h := *f.handle
		f.mu.Unlock()
		return &h, nil
	}
	req := &PaymentRequest{
		FlowID:       f.id,
		PropertyID:   f.propertyID,
		CustomerID:   f.customerID,
		CustomerName: f.contact.FullName(),
		Email:        f.contact.Email,
		Dates:        f.dates,
		Guests:       f.guests,
		Total:        pricing.Compute(f.dates, f.nightlyRate).GrandTotal,
	}
	stale := f.stale
	f.stale = nil
	f.submitting = true
	f.mu.Unlock()

	kept, _ := f.release(ctx, stale, "superseded")

	handle, err := f.payments.Begin(ctx, req)

	f.mu.Lock()
	if ferr := f.finish(); ferr != nil {
		f.mu.Unlock()
		if err == nil {
			kept = append(kept, *handle)
		}
		f.release(ctx, kept, "reservation abandoned")
		return nil, ferr
	}
	defer f.mu.Unlock()
	f.stale = append(f.stale, kept...)
	if err != nil {
		log.Printf("reservation %s: begin payment failed: %v", f.id, err)
		return nil, fmt.Errorf("failed to begin payment: %w", err)
	}
	f.handle = handle
	h := *handle
	return &h, nil
}

// ApprovePayment captures the approved order and completes the flow
func (f *Flow) ApprovePayment(ctx context.Context, orderID string) (*models.Confirmation, error) {
	f.mu.Lock()
	if err := f.usable(); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	if f.step != StepPayment {
		f.mu.Unlock()
		return nil, fmt.Errorf("%w: approve payment at %s", ErrWrongStep, f.step)
	}
	if f.handle == nil {
		f.mu.Unlock()
		return nil, ErrNoPayment
	}
	open := *f.handle
	handle := PaymentHandle{ReservationID: open.ReservationID, OrderID: orderID}
	f.submitting = true
	f.mu.Unlock()

	err := f.payments.Approve(ctx, handle)

	f.mu.Lock()
	if ferr := f.finish(); ferr != nil {
		// Abandon left the open handle to this call
		f.handle = nil
		f.mu.Unlock()
		if err != nil {
			f.release(ctx, []PaymentHandle{open}, "reservation abandoned")
		} else {
			log.Printf("reservation %s: order %s captured after the flow was abandoned, reservation %s stands",
				f.id, orderID, open.ReservationID)
		}
		return nil, ferr
	}
	defer f.mu.Unlock()
	if err != nil {
		log.Printf("reservation %s: capture of order %s failed: %v", f.id, orderID, err)
		if !errors.Is(err, ErrOrderMismatch) {
			f.stale = append(f.stale, open)
			f.handle = nil
		}
		return nil, fmt.Errorf("failed to capture payment: %w", err)
	}
	f.confirmation = &models.Confirmation{
		ReservationID: handle.ReservationID,
		Total:         pricing.Compute(f.dates, f.nightlyRate).GrandTotal,
		CustomerName:  f.contact.FullName(),
	}
	c := *f.confirmation
	return &c, nil
}

// CancelPayment abandons the open order after the payer cancelled or the
// widget failed. The flow stays on Payment so the guest can retry.
func (f *Flow) CancelPayment(ctx context.Context, reason string) error {
	f.mu.Lock()
	if err := f.usable(); err != nil {
		f.mu.Unlock()
		return err
	}
	if f.handle == nil {
		f.mu.Unlock()
		return nil
	}
	handle := *f.handle
	f.handle = nil
	f.mu.Unlock()

	if err := f.payments.Cancel(ctx, handle, reason); err != nil {
		log.Printf("reservation %s: cancel payment failed: %v", f.id, err)
		f.mu.Lock()
		f.stale = append(f.stale, handle)
		f.mu.Unlock()
		return fmt.Errorf("failed to cancel payment: %w", err)
	}
	return nil
}

// Abandon closes the flow and cancels every reservation it left pending.
// An approval still in flight keeps the open order: it is captured or, if
// the capture fails, cancelled when that call returns.
func (f *Flow) Abandon(ctx context.Context, reason string) error {
	f.mu.Lock()
	pending := f.stale
	f.stale = nil
	if f.handle != nil && !f.submitting {
		pending = append(pending, *f.handle)
		f.handle = nil
	}
	f.closed = true
	f.mu.Unlock()

	if _, err := f.release(ctx, pending, reason); err != nil {
		return fmt.Errorf("failed to cancel abandoned payments: %w", err)
	}
	return nil
}

// release cancels each handle and returns the ones that could not be
// cancelled. Must be called without mu held.
func (f *Flow) release(ctx context.Context, handles []PaymentHandle, reason string) ([]PaymentHandle, error) {
	var kept []PaymentHandle
	var errs []error
	for _, h := range handles {
		if err := f.payments.Cancel(ctx, h, reason); err != nil {
			log.Printf("reservation %s: cancel reservation %s: %v", f.id, h.ReservationID, err)
			kept = append(kept, h)
			errs = append(errs, err)
		}
	}
	return kept, errors.Join(errs...)
}

// Close abandons the flow. Remote calls still in flight return ErrClosed
// and leave the state untouched.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *Flow) Completed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.confirmation != nil
}
