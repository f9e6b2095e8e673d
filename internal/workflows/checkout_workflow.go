package workflows

import (
	"fmt"
	"time"

	"github.com/cx-tal-miterani/rental-booking-system/internal/activities"
	"github.com/cx-tal-miterani/rental-booking-system/internal/checkout"
	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
	"github.com/shopspring/decimal"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	TaskQueue = "rental-checkout-queue"

	// ApprovalTimeout is how long the payer has to approve the order
	ApprovalTimeout = 30 * time.Minute
	// CaptureTimeout bounds a single capture attempt
	CaptureTimeout = 30 * time.Second

	SignalPaymentApproved  = "payment-approved"
	SignalPaymentCancelled = "payment-cancelled"
	QueryState             = "get_state"
)

// WorkflowID is the checkout workflow ID for a reservation flow
func WorkflowID(flowID string) string {
	return "checkout-" + flowID
}

// CheckoutInput is the input for the checkout workflow
type CheckoutInput struct {
	FlowID       string          `json:"flowId"`
	PropertyID   models.ID       `json:"propertyId"`
	CustomerID   models.ID       `json:"customerId"`
	CustomerName string          `json:"customerName"`
	Email        string          `json:"email"`
	CheckIn      time.Time       `json:"checkIn"`
	CheckOut     time.Time       `json:"checkOut"`
	Guests       int             `json:"guests"`
	Total        decimal.Decimal `json:"total"`
	Currency     string          `json:"currency"`
}

// CheckoutState is returned by the get_state query
type CheckoutState struct {
	State         checkout.State `json:"state"`
	ReservationID models.ID      `json:"reservationId,omitempty"`
	OrderID       string         `json:"orderId,omitempty"`
	CaptureID     string         `json:"captureId,omitempty"`
	Failure       string         `json:"failure,omitempty"`
}

// CheckoutResult is the result of the checkout workflow
type CheckoutResult struct {
	Success       bool      `json:"success"`
	ReservationID models.ID `json:"reservationId,omitempty"`
	CaptureID     string    `json:"captureId,omitempty"`
	FailureReason string    `json:"failureReason,omitempty"`
}

// PaymentApprovedSignal carries the order the payer approved
type PaymentApprovedSignal struct {
	OrderID string `json:"orderId"`
}

// PaymentCancelledSignal is sent when the payer backs out or the widget fails
type PaymentCancelledSignal struct {
	Reason string `json:"reason"`
}

// CheckoutWorkflow books a stay and walks its payment through
// OrderCreated -> Approved -> Captured, cancelling the reservation on any
// failure.
func CheckoutWorkflow(ctx workflow.Context, input CheckoutInput) (*CheckoutResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Checkout workflow started", "flowId", input.FlowID, "propertyId", input.PropertyID)

	state := CheckoutState{State: checkout.StateNew}
	if err := workflow.SetQueryHandler(ctx, QueryState, func() (CheckoutState, error) {
		return state, nil
	}); err != nil {
		return nil, fmt.Errorf("failed to register query handler: %w", err)
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    3,
		},
	})
	// A capture is never retried automatically
	captureCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: CaptureTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})

	var a *activities.Activities

	record := func(ctx workflow.Context) {
		err := workflow.ExecuteActivity(ctx, a.RecordCheckoutEvent, checkout.Event{
			ReservationID: state.ReservationID,
			FlowID:        input.FlowID,
			OrderID:       state.OrderID,
			State:         state.State,
			Detail:        state.Failure,
			At:            workflow.Now(ctx),
		}).Get(ctx, nil)
		if err != nil {
			logger.Error("Failed to record checkout event", "state", state.State, "error", err)
		}
	}

	fail := func(reason string) (*CheckoutResult, error) {
		logger.Info("Checkout failed", "reason", reason)
		state.State = checkout.StateFailed
		state.Failure = reason

		// cleanup must run even when the workflow itself was cancelled
		cleanupCtx, _ := workflow.NewDisconnectedContext(ctx)
		record(cleanupCtx)
		if state.ReservationID != "" {
			err := workflow.ExecuteActivity(cleanupCtx, a.CancelReservation, activities.CancelReservationInput{
				ReservationID: state.ReservationID,
				Reason:        reason,
			}).Get(cleanupCtx, nil)
			if err != nil {
				logger.Error("Failed to cancel reservation", "reservationId", state.ReservationID, "error", err)
			}
		}
		return &CheckoutResult{
			Success:       false,
			ReservationID: state.ReservationID,
			FailureReason: reason,
		}, nil
	}

	err := workflow.ExecuteActivity(ctx, a.CreateReservation, activities.CreateReservationInput{
		PropertyID: input.PropertyID,
		CustomerID: input.CustomerID,
		CheckIn:    input.CheckIn,
		CheckOut:   input.CheckOut,
		Guests:     input.Guests,
		Total:      input.Total,
	}).Get(ctx, &state.ReservationID)
	if err != nil {
		return fail("reservation rejected: " + err.Error())
	}

	err = workflow.ExecuteActivity(ctx, a.CreatePaymentOrder, activities.PaymentOrderInput{
		ReservationID: state.ReservationID,
		Amount:        input.Total,
		Currency:      input.Currency,
		Description:   fmt.Sprintf("Reservation %s for %s", state.ReservationID, input.CustomerName),
	}).Get(ctx, &state.OrderID)
	if err != nil {
		return fail("payment order failed: " + err.Error())
	}
	state.State = checkout.StateOrderCreated
	record(ctx)

	approvedCh := workflow.GetSignalChannel(ctx, SignalPaymentApproved)
	cancelledCh := workflow.GetSignalChannel(ctx, SignalPaymentCancelled)

	timerCtx, cancelTimer := workflow.WithCancel(ctx)
	timer := workflow.NewTimer(timerCtx, ApprovalTimeout)

	var approved bool
	var abandon string
	for !approved && abandon == "" {
		selector := workflow.NewSelector(ctx)

		selector.AddReceive(approvedCh, func(c workflow.ReceiveChannel, more bool) {
			var signal PaymentApprovedSignal
			c.Receive(ctx, &signal)
			if signal.OrderID != state.OrderID {
				logger.Warn("Approval for a different order ignored", "orderId", signal.OrderID, "expected", state.OrderID)
				return
			}
			approved = true
		})

		selector.AddReceive(cancelledCh, func(c workflow.ReceiveChannel, more bool) {
			var signal PaymentCancelledSignal
			c.Receive(ctx, &signal)
			abandon = signal.Reason
			if abandon == "" {
				abandon = "cancelled by payer"
			}
		})

		selector.AddFuture(timer, func(f workflow.Future) {
			if err := f.Get(ctx, nil); err == nil {
				abandon = "approval timed out"
			}
		})

		selector.Select(ctx)

		if ctx.Err() != nil && !approved && abandon == "" {
			abandon = "workflow cancelled"
		}
	}
	cancelTimer()

	if abandon != "" {
		return fail(abandon)
	}

	state.State = checkout.StateApproved
	record(ctx)

	var capture checkout.Capture
	err = workflow.ExecuteActivity(captureCtx, a.CapturePaymentOrder, activities.CaptureInput{
		ReservationID: state.ReservationID,
		OrderID:       state.OrderID,
	}).Get(ctx, &capture)
	if err != nil {
		return fail("capture failed: " + err.Error())
	}
	state.State = checkout.StateCaptured
	state.CaptureID = capture.CaptureID
	record(ctx)

	err = workflow.ExecuteActivity(ctx, a.PublishConfirmation, activities.ConfirmationInput{
		ReservationID: state.ReservationID,
		CustomerName:  input.CustomerName,
		Email:         input.Email,
		Total:         input.Total,
		Currency:      input.Currency,
		OrderID:       state.OrderID,
		CaptureID:     state.CaptureID,
	}).Get(ctx, nil)
	if err != nil {
		logger.Error("Failed to publish confirmation", "error", err)
	}

	logger.Info("Checkout completed", "reservationId", state.ReservationID, "captureId", state.CaptureID)
	return &CheckoutResult{
		Success:       true,
		ReservationID: state.ReservationID,
		CaptureID:     state.CaptureID,
	}, nil
}
