package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cx-tal-miterani/rental-booking-system/internal/checkout"
	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
	"github.com/cx-tal-miterani/rental-booking-system/internal/reservation"
	"github.com/cx-tal-miterani/rental-booking-system/internal/workflows"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/converter"
	temporalmocks "go.temporal.io/sdk/mocks"
)

type mockWorkflowClient struct {
	mock.Mock
}

func (m *mockWorkflowClient) ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error) {
	ret := m.Called(ctx, options, workflow, args)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(client.WorkflowRun), ret.Error(1)
}

func (m *mockWorkflowClient) QueryWorkflow(ctx context.Context, workflowID string, runID string, queryType string, args ...interface{}) (converter.EncodedValue, error) {
	ret := m.Called(ctx, workflowID, runID, queryType)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(converter.EncodedValue), ret.Error(1)
}

func (m *mockWorkflowClient) SignalWorkflow(ctx context.Context, workflowID string, runID string, signalName string, arg interface{}) error {
	return m.Called(ctx, workflowID, runID, signalName, arg).Error(0)
}

func (m *mockWorkflowClient) GetWorkflow(ctx context.Context, workflowID string, runID string) client.WorkflowRun {
	return m.Called(ctx, workflowID, runID).Get(0).(client.WorkflowRun)
}

// stateValue answers a get_state query
type stateValue struct {
	state workflows.CheckoutState
}

func (v stateValue) HasValue() bool { return true }

func (v stateValue) Get(valuePtr interface{}) error {
	*valuePtr.(*workflows.CheckoutState) = v.state
	return nil
}

type eventLog struct {
	mu     sync.Mutex
	states []checkout.State
}

func (l *eventLog) observe(ctx context.Context, e checkout.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, e.State)
}

var paymentRequest = &reservation.PaymentRequest{
	FlowID:       "flow-1",
	PropertyID:   "42",
	CustomerID:   "1234",
	CustomerName: "John Doe",
	Email:        "john@example.com",
	Dates:        june,
	Guests:       2,
	Total:        decimal.NewFromInt(360),
}

func newWorkflowPayments(c *mockWorkflowClient, log *eventLog) *WorkflowPayments {
	p := NewWorkflowPayments(c, "USD", log.observe)
	p.pollInterval = time.Millisecond
	p.beginTimeout = time.Second
	return p
}

// begin starts a checkout whose order becomes available on the second query
func begin(t *testing.T, c *mockWorkflowClient, p *WorkflowPayments) (*reservation.PaymentHandle, string) {
	t.Helper()
	var workflowID string
	c.On("ExecuteWorkflow", mock.Anything, mock.MatchedBy(func(o client.StartWorkflowOptions) bool {
		workflowID = o.ID
		return o.TaskQueue == workflows.TaskQueue
	}), "CheckoutWorkflow", mock.MatchedBy(func(args []interface{}) bool {
		in, ok := args[0].(workflows.CheckoutInput)
		return ok && in.Currency == "USD" && in.CustomerID == "1234" && in.CheckIn.Equal(june.Start)
	})).Return(new(temporalmocks.WorkflowRun), nil).Once()
	c.On("QueryWorkflow", mock.Anything, mock.Anything, "", workflows.QueryState).
		Return(stateValue{workflows.CheckoutState{State: checkout.StateNew}}, nil).Once()
	c.On("QueryWorkflow", mock.Anything, mock.Anything, "", workflows.QueryState).
		Return(stateValue{workflows.CheckoutState{State: checkout.StateOrderCreated, ReservationID: "77", OrderID: "ORDER-1"}}, nil).Once()

	handle, err := p.Begin(context.Background(), paymentRequest)
	require.NoError(t, err)
	assert.Contains(t, workflowID, workflows.WorkflowID("flow-1")+"-")
	return handle, workflowID
}

func TestWorkflowPayments_BeginWaitsForOrder(t *testing.T) {
	c := new(mockWorkflowClient)
	log := &eventLog{}
	p := newWorkflowPayments(c, log)

	handle, _ := begin(t, c, p)

	assert.Equal(t, &reservation.PaymentHandle{ReservationID: "77", OrderID: "ORDER-1"}, handle)
	assert.Equal(t, 1, p.Pending())
	assert.Equal(t, []checkout.State{checkout.StateOrderCreated}, log.states)
	c.AssertExpectations(t)
}

func TestWorkflowPayments_BeginFailure(t *testing.T) {
	c := new(mockWorkflowClient)
	p := newWorkflowPayments(c, &eventLog{})

	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(new(temporalmocks.WorkflowRun), nil).Once()
	c.On("QueryWorkflow", mock.Anything, mock.Anything, "", workflows.QueryState).
		Return(stateValue{workflows.CheckoutState{State: checkout.StateFailed, Failure: "reservation rejected: Dates are not available"}}, nil).Once()

	_, err := p.Begin(context.Background(), paymentRequest)
	assert.ErrorIs(t, err, ErrCheckoutFailed)
	assert.Contains(t, err.Error(), "Dates are not available")
	assert.Equal(t, 0, p.Pending())
}

func TestWorkflowPayments_BeginNotStarted(t *testing.T) {
	c := new(mockWorkflowClient)
	p := newWorkflowPayments(c, &eventLog{})
	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("temporal unavailable")).Once()

	_, err := p.Begin(context.Background(), paymentRequest)
	assert.ErrorContains(t, err, "failed to start workflow")
}

func TestWorkflowPayments_ApproveCaptured(t *testing.T) {
	c := new(mockWorkflowClient)
	log := &eventLog{}
	p := newWorkflowPayments(c, log)
	handle, workflowID := begin(t, c, p)

	run := new(temporalmocks.WorkflowRun)
	run.On("Get", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		*args.Get(1).(*workflows.CheckoutResult) = workflows.CheckoutResult{Success: true, ReservationID: "77", CaptureID: "CAP-1"}
	}).Return(nil).Once()
	c.On("SignalWorkflow", mock.Anything, workflowID, "", workflows.SignalPaymentApproved, workflows.PaymentApprovedSignal{OrderID: "ORDER-1"}).Return(nil).Once()
	c.On("GetWorkflow", mock.Anything, workflowID, "").Return(run).Once()

	require.NoError(t, p.Approve(context.Background(), *handle))

	assert.Equal(t, 0, p.Pending())
	assert.Equal(t, []checkout.State{checkout.StateOrderCreated, checkout.StateApproved, checkout.StateCaptured}, log.states)
	c.AssertExpectations(t)
	run.AssertExpectations(t)
}

func TestWorkflowPayments_ApproveCaptureFailed(t *testing.T) {
	c := new(mockWorkflowClient)
	log := &eventLog{}
	p := newWorkflowPayments(c, log)
	handle, workflowID := begin(t, c, p)

	run := new(temporalmocks.WorkflowRun)
	run.On("Get", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		*args.Get(1).(*workflows.CheckoutResult) = workflows.CheckoutResult{Success: false, ReservationID: "77", FailureReason: "capture failed: declined"}
	}).Return(nil).Once()
	c.On("SignalWorkflow", mock.Anything, workflowID, "", workflows.SignalPaymentApproved, mock.Anything).Return(nil).Once()
	c.On("GetWorkflow", mock.Anything, workflowID, "").Return(run).Once()

	err := p.Approve(context.Background(), *handle)
	assert.ErrorIs(t, err, ErrCheckoutFailed)
	assert.Equal(t, checkout.StateFailed, log.states[len(log.states)-1])

	// the workflow already released the reservation
	assert.NoError(t, p.Cancel(context.Background(), *handle, "superseded"))
}

func TestWorkflowPayments_ApproveChecksOrder(t *testing.T) {
	c := new(mockWorkflowClient)
	p := newWorkflowPayments(c, &eventLog{})
	handle, _ := begin(t, c, p)

	err := p.Approve(context.Background(), reservation.PaymentHandle{ReservationID: handle.ReservationID, OrderID: "ORDER-X"})
	assert.ErrorIs(t, err, checkout.ErrOrderMismatch)

	err = p.Approve(context.Background(), reservation.PaymentHandle{ReservationID: models.ID("404"), OrderID: "ORDER-1"})
	assert.ErrorIs(t, err, checkout.ErrUnknownCheckout)
	c.AssertNotCalled(t, "SignalWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWorkflowPayments_Cancel(t *testing.T) {
	c := new(mockWorkflowClient)
	log := &eventLog{}
	p := newWorkflowPayments(c, log)
	handle, workflowID := begin(t, c, p)

	c.On("SignalWorkflow", mock.Anything, workflowID, "", workflows.SignalPaymentCancelled, workflows.PaymentCancelledSignal{Reason: "payer closed the window"}).Return(nil).Once()

	require.NoError(t, p.Cancel(context.Background(), *handle, "payer closed the window"))
	assert.Equal(t, 0, p.Pending())
	assert.Equal(t, []checkout.State{checkout.StateOrderCreated, checkout.StateFailed}, log.states)
	c.AssertExpectations(t)
}

func TestWorkflowPayments_UnfinishedApprovalCannotBeCancelled(t *testing.T) {
	c := new(mockWorkflowClient)
	p := newWorkflowPayments(c, &eventLog{})
	p.resultTimeout = 50 * time.Millisecond
	handle, workflowID := begin(t, c, p)

	run := new(temporalmocks.WorkflowRun)
	run.On("Get", mock.Anything, mock.Anything).Return(context.DeadlineExceeded).Once()
	c.On("SignalWorkflow", mock.Anything, workflowID, "", workflows.SignalPaymentApproved, mock.Anything).Return(nil).Once()
	c.On("GetWorkflow", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), workflowID, "").Return(run).Once()

	err := p.Approve(context.Background(), *handle)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// the workflow may still capture, so the run stays claimed
	assert.Equal(t, 1, p.Pending())
	assert.ErrorIs(t, p.Cancel(context.Background(), *handle, "guest left"), checkout.ErrCaptureInProgress)
	assert.ErrorIs(t, p.Approve(context.Background(), *handle), checkout.ErrCaptureInProgress)
	c.AssertNotCalled(t, "SignalWorkflow", mock.Anything, workflowID, "", workflows.SignalPaymentCancelled, mock.Anything)
}

func TestWorkflowPayments_FailedSignalReleasesRun(t *testing.T) {
	c := new(mockWorkflowClient)
	p := newWorkflowPayments(c, &eventLog{})
	handle, workflowID := begin(t, c, p)

	c.On("SignalWorkflow", mock.Anything, workflowID, "", workflows.SignalPaymentApproved, mock.Anything).Return(errors.New("unavailable")).Once()
	c.On("SignalWorkflow", mock.Anything, workflowID, "", workflows.SignalPaymentCancelled, mock.Anything).Return(nil).Once()

	assert.Error(t, p.Approve(context.Background(), *handle))
	require.NoError(t, p.Cancel(context.Background(), *handle, "guest left"))
	c.AssertExpectations(t)
}

func TestWorkflowPayments_MaxWait(t *testing.T) {
	p := NewWorkflowPayments(new(mockWorkflowClient), "USD", nil)
	assert.GreaterOrEqual(t, p.MaxWait(), workflows.CaptureTimeout)
	assert.GreaterOrEqual(t, p.MaxWait(), defaultBeginTimeout)
}
