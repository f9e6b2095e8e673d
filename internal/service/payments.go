package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cx-tal-miterani/rental-booking-system/internal/checkout"
	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
	"github.com/cx-tal-miterani/rental-booking-system/internal/reservation"
	"github.com/cx-tal-miterani/rental-booking-system/internal/workflows"
	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/converter"
)

var ErrCheckoutFailed = errors.New("checkout failed")

const (
	defaultPollInterval  = 250 * time.Millisecond
	defaultBeginTimeout  = 20 * time.Second
	defaultResultTimeout = workflows.CaptureTimeout + 15*time.Second
)

// WorkflowClient is the part of the Temporal client used to drive checkouts
type WorkflowClient interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
	QueryWorkflow(ctx context.Context, workflowID string, runID string, queryType string, args ...interface{}) (converter.EncodedValue, error)
	SignalWorkflow(ctx context.Context, workflowID string, runID string, signalName string, arg interface{}) error
	GetWorkflow(ctx context.Context, workflowID string, runID string) client.WorkflowRun
}

// WorkflowPayments runs each checkout as a CheckoutWorkflow on the worker
type WorkflowPayments struct {
	client       WorkflowClient
	currency     string
	pollInterval  time.Duration
	beginTimeout  time.Duration
	resultTimeout time.Duration
	observe       checkout.Observer

	mu   sync.Mutex
	runs map[models.ID]*workflowRun
}

type workflowRun struct {
	workflowID string
	flowID     string
	orderID    string
	approved   bool
}

func NewWorkflowPayments(c WorkflowClient, currency string, observe checkout.Observer) *WorkflowPayments {
	return &WorkflowPayments{
		client:        c,
		currency:      currency,
		pollInterval:  defaultPollInterval,
		beginTimeout:  defaultBeginTimeout,
		resultTimeout: defaultResultTimeout,
		observe:       observe,
		runs:          make(map[models.ID]*workflowRun),
	}
}

// MaxWait is the longest Begin or Approve blocks waiting on the workflow.
// Requests driving them need a deadline above it.
func (p *WorkflowPayments) MaxWait() time.Duration {
	if p.beginTimeout > p.resultTimeout {
		return p.beginTimeout
	}
	return p.resultTimeout
}

var _ reservation.Payments = (*WorkflowPayments)(nil)

// Begin starts the workflow and waits until it has opened the order
func (p *WorkflowPayments) Begin(ctx context.Context, req *reservation.PaymentRequest) (*reservation.PaymentHandle, error) {
	workflowID := workflows.WorkflowID(req.FlowID) + "-" + uuid.New().String()[:8]

	input := workflows.CheckoutInput{
		FlowID:       req.FlowID,
		PropertyID:   req.PropertyID,
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		Email:        req.Email,
		CheckIn:      req.Dates.Start,
		CheckOut:     req.Dates.End,
		Guests:       req.Guests,
		Total:        req.Total,
		Currency:     p.currency,
	}

	workflowOptions := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: workflows.TaskQueue,
	}
	if _, err := p.client.ExecuteWorkflow(ctx, workflowOptions, "CheckoutWorkflow", input); err != nil {
		return nil, fmt.Errorf("failed to start workflow: %w", err)
	}

	state, err := p.awaitOrder(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.runs[state.ReservationID] = &workflowRun{workflowID: workflowID, flowID: req.FlowID, orderID: state.OrderID}
	p.mu.Unlock()

	p.notify(ctx, checkout.Event{
		ReservationID: state.ReservationID,
		FlowID:        req.FlowID,
		OrderID:       state.OrderID,
		State:         checkout.StateOrderCreated,
	})
	return &reservation.PaymentHandle{ReservationID: state.ReservationID, OrderID: state.OrderID}, nil
}

// awaitOrder polls the workflow state until the order exists or the
// checkout failed
func (p *WorkflowPayments) awaitOrder(ctx context.Context, workflowID string) (*workflows.CheckoutState, error) {
	ctx, cancel := context.WithTimeout(ctx, p.beginTimeout)
	defer cancel()

	for {
		state, err := p.queryState(ctx, workflowID)
		if err != nil {
			log.Printf("Checkout %s not queryable yet: %v", workflowID, err)
		} else {
			switch state.State {
			case checkout.StateOrderCreated:
				return state, nil
			case checkout.StateFailed:
				return nil, fmt.Errorf("%w: %s", ErrCheckoutFailed, state.Failure)
			}
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to open payment order: %w", ctx.Err())
		case <-time.After(p.pollInterval):
		}
	}
}

func (p *WorkflowPayments) queryState(ctx context.Context, workflowID string) (*workflows.CheckoutState, error) {
	response, err := p.client.QueryWorkflow(ctx, workflowID, "", workflows.QueryState)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflow: %w", err)
	}
	var state workflows.CheckoutState
	if err := response.Get(&state); err != nil {
		return nil, fmt.Errorf("failed to decode workflow state: %w", err)
	}
	return &state, nil
}

// Approve signals the approval and waits for the capture outcome
func (p *WorkflowPayments) Approve(ctx context.Context, handle reservation.PaymentHandle) error {
	run, err := p.approve(handle)
	if err != nil {
		return err
	}

	signal := workflows.PaymentApprovedSignal{OrderID: handle.OrderID}
	if err := p.client.SignalWorkflow(ctx, run.workflowID, "", workflows.SignalPaymentApproved, signal); err != nil {
		p.release(handle.ReservationID)
		return fmt.Errorf("failed to signal approval: %w", err)
	}
	p.notify(ctx, p.event(handle.ReservationID, run, checkout.StateApproved, ""))

	// The run stays claimed if the wait ends early: the workflow may still capture.
	waitCtx, cancel := context.WithTimeout(ctx, p.resultTimeout)
	defer cancel()
	var result workflows.CheckoutResult
	if err := p.client.GetWorkflow(waitCtx, run.workflowID, "").Get(waitCtx, &result); err != nil {
		return fmt.Errorf("failed to get checkout result: %w", err)
	}

	p.forget(handle.ReservationID)
	if !result.Success {
		p.notify(ctx, p.event(handle.ReservationID, run, checkout.StateFailed, result.FailureReason))
		return fmt.Errorf("%w: %s", ErrCheckoutFailed, result.FailureReason)
	}
	p.notify(ctx, p.event(handle.ReservationID, run, checkout.StateCaptured, ""))
	return nil
}

// Cancel abandons an open checkout. Unknown handles are ignored.
func (p *WorkflowPayments) Cancel(ctx context.Context, handle reservation.PaymentHandle, reason string) error {
	p.mu.Lock()
	r, ok := p.runs[handle.ReservationID]
	if !ok {
		p.mu.Unlock()
		return nil
	}
	if r.approved {
		p.mu.Unlock()
		return fmt.Errorf("%w: reservation %s", checkout.ErrCaptureInProgress, handle.ReservationID)
	}
	run := *r
	delete(p.runs, handle.ReservationID)
	p.mu.Unlock()

	signal := workflows.PaymentCancelledSignal{Reason: reason}
	if err := p.client.SignalWorkflow(ctx, run.workflowID, "", workflows.SignalPaymentCancelled, signal); err != nil {
		return fmt.Errorf("failed to signal cancellation: %w", err)
	}
	p.notify(ctx, p.event(handle.ReservationID, run, checkout.StateFailed, reason))
	return nil
}

// Pending is the number of checkouts waiting for approval
func (p *WorkflowPayments) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.runs)
}

// approve claims the run for capture
func (p *WorkflowPayments) approve(handle reservation.PaymentHandle) (workflowRun, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	run, ok := p.runs[handle.ReservationID]
	switch {
	case !ok:
		return workflowRun{}, checkout.ErrUnknownCheckout
	case run.approved:
		return workflowRun{}, fmt.Errorf("%w: reservation %s", checkout.ErrCaptureInProgress, handle.ReservationID)
	case run.orderID != handle.OrderID:
		return workflowRun{}, fmt.Errorf("%w: got %s, expected %s", checkout.ErrOrderMismatch, handle.OrderID, run.orderID)
	}
	run.approved = true
	return *run, nil
}

// release hands a claimed run back when the approval never reached the workflow
func (p *WorkflowPayments) release(id models.ID) {
	p.mu.Lock()
	if run, ok := p.runs[id]; ok {
		run.approved = false
	}
	p.mu.Unlock()
}

func (p *WorkflowPayments) forget(id models.ID) {
	p.mu.Lock()
	delete(p.runs, id)
	p.mu.Unlock()
}

func (p *WorkflowPayments) event(id models.ID, run workflowRun, state checkout.State, detail string) checkout.Event {
	return checkout.Event{
		ReservationID: id,
		FlowID:        run.flowID,
		OrderID:       run.orderID,
		State:         state,
		Detail:        detail,
	}
}

func (p *WorkflowPayments) notify(ctx context.Context, e checkout.Event) {
	if p.observe == nil {
		return
	}
	e.At = time.Now()
	p.observe(ctx, e)
}
