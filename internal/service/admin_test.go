package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cx-tal-miterani/rental-booking-system/internal/backend"
	"github.com/cx-tal-miterani/rental-booking-system/internal/events"
	"github.com/cx-tal-miterani/rental-booking-system/internal/journal"
	"github.com/cx-tal-miterani/rental-booking-system/internal/listview"
	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
	"github.com/cx-tal-miterani/rental-booking-system/internal/reservation"
	"github.com/cx-tal-miterani/rental-booking-system/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeAdminAPI serves fixed records and remembers what was changed
type fakeAdminAPI struct {
	token        string
	loginErr     error
	reservations []models.Reservation
	amenities    []models.Amenity
	statusCalls  []models.BookingStatus
	created      []models.Amenity
}

func (f *fakeAdminAPI) Login(ctx context.Context, creds backend.Credentials) (string, error) {
	return f.token, f.loginErr
}

func (f *fakeAdminAPI) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	return f.reservations, nil
}

func (f *fakeAdminAPI) UpdateReservationStatus(ctx context.Context, id models.ID, status models.BookingStatus) (*models.Reservation, error) {
	f.statusCalls = append(f.statusCalls, status)
	return &models.Reservation{ID: id, Status: status}, nil
}

func (f *fakeAdminAPI) ListProperties(ctx context.Context) ([]models.Property, error) {
	return nil, nil
}

func (f *fakeAdminAPI) UpdateProperty(ctx context.Context, id models.ID, req *models.UpdatePropertyRequest) (*models.Property, error) {
	return &models.Property{ID: id, Name: req.Name}, nil
}

func (f *fakeAdminAPI) ListAmenities(ctx context.Context) ([]models.Amenity, error) {
	return f.amenities, nil
}

func (f *fakeAdminAPI) CreateAmenity(ctx context.Context, a *models.Amenity) (*models.Amenity, error) {
	f.created = append(f.created, *a)
	return a, nil
}

func (f *fakeAdminAPI) UpdateAmenity(ctx context.Context, id models.ID, a *models.Amenity) (*models.Amenity, error) {
	return a, nil
}

func (f *fakeAdminAPI) DeleteAmenity(ctx context.Context, id models.ID) error { return nil }

func (f *fakeAdminAPI) ListReviews(ctx context.Context) ([]models.Review, error) { return nil, nil }

func (f *fakeAdminAPI) DeleteReview(ctx context.Context, id models.ID) error { return nil }

func (f *fakeAdminAPI) ListPayments(ctx context.Context) ([]models.Payment, error) { return nil, nil }

func (f *fakeAdminAPI) ListCustomers(ctx context.Context) ([]models.Customer, error) { return nil, nil }

func (f *fakeAdminAPI) UpdateHomeContent(ctx context.Context, content *models.HomeContent) (*models.HomeContent, error) {
	return content, nil
}

func (f *fakeAdminAPI) AddHomeImage(ctx context.Context, img *models.HomeImage) (*models.HomeImage, error) {
	return img, nil
}

func (f *fakeAdminAPI) DeleteHomeImage(ctx context.Context, id models.ID) error { return nil }

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, eventType, correlationID string, payload any) error {
	return m.Called(ctx, eventType, correlationID, payload).Error(0)
}

func sessionContext() (context.Context, *session.Session) {
	sess := session.New(session.NewID(), session.NewMemoryStore())
	return session.NewContext(context.Background(), sess), sess
}

func TestAdminService_Login(t *testing.T) {
	api := &fakeAdminAPI{token: "tok-1"}
	svc := NewAdminService(api, nil, nil)
	ctx, sess := sessionContext()

	require.NoError(t, svc.Login(ctx, backend.Credentials{Email: "admin@example.com", Password: "secret"}))

	token, err := sess.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	require.NoError(t, svc.Logout(ctx))
	_, err = sess.Token(ctx)
	assert.ErrorIs(t, err, session.ErrNoToken)
}

func TestAdminService_Login_Failures(t *testing.T) {
	tests := []struct {
		name  string
		ctx   func() context.Context
		creds backend.Credentials
		api   *fakeAdminAPI
		check func(t *testing.T, err error)
	}{
		{
			name:  "missing password",
			ctx:   func() context.Context { ctx, _ := sessionContext(); return ctx },
			creds: backend.Credentials{Email: "admin@example.com"},
			api:   &fakeAdminAPI{},
			check: func(t *testing.T, err error) {
				var verr *reservation.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, []string{"password"}, verr.Fields)
			},
		},
		{
			name:  "no session",
			ctx:   context.Background,
			creds: backend.Credentials{Email: "admin@example.com", Password: "secret"},
			api:   &fakeAdminAPI{},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrNoSession) },
		},
		{
			name:  "rejected",
			ctx:   func() context.Context { ctx, _ := sessionContext(); return ctx },
			creds: backend.Credentials{Email: "admin@example.com", Password: "wrong"},
			api:   &fakeAdminAPI{loginErr: &backend.APIError{Status: 400, Message: "Invalid credentials"}},
			check: func(t *testing.T, err error) {
				assert.Equal(t, "Invalid credentials", backend.UserMessage(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAdminService(tt.api, nil, nil)
			tt.check(t, svc.Login(tt.ctx(), tt.creds))
		})
	}
}

func TestAdminService_ListBookings_AppliesState(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	api := &fakeAdminAPI{reservations: []models.Reservation{
		{ID: "1", CustomerName: "Zoe", Status: models.BookingStatusConfirmed, CheckIn: day},
		{ID: "2", CustomerName: "Adam", Status: models.BookingStatusPending, CheckIn: day.AddDate(0, 0, 2)},
		{ID: "3", CustomerName: "Mia", Status: models.BookingStatusPending, CheckIn: day.AddDate(0, 0, 1)},
	}}
	svc := NewAdminService(api, nil, nil)

	got, err := svc.ListBookings(context.Background(), listview.State{
		Filter: "pending",
		Sort:   listview.Sort{Key: "checkIn", Direction: listview.Asc},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.ID("3"), got[0].ID)
	assert.Equal(t, models.ID("2"), got[1].ID)
}

func TestAdminService_UpdateBookingStatus(t *testing.T) {
	api := &fakeAdminAPI{reservations: []models.Reservation{
		{ID: "1", Status: models.BookingStatusPending},
		{ID: "2", Status: models.BookingStatusCancelled},
	}}
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, events.EventBookingStatusChanged, "1", events.BookingStatusChangedPayload{
		ReservationID: "1",
		Status:        models.BookingStatusConfirmed,
	}).Return(nil).Once()
	svc := NewAdminService(api, nil, pub)

	updated, err := svc.UpdateBookingStatus(context.Background(), "1", models.BookingStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, updated.Status)

	_, err = svc.UpdateBookingStatus(context.Background(), "2", models.BookingStatusConfirmed)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateBookingStatus(context.Background(), "404", models.BookingStatusConfirmed)
	assert.ErrorIs(t, err, reservation.ErrNotFound)

	assert.Equal(t, []models.BookingStatus{models.BookingStatusConfirmed}, api.statusCalls)
	pub.AssertExpectations(t)
}

func TestAdminService_CreateAmenity_Validates(t *testing.T) {
	api := &fakeAdminAPI{}
	svc := NewAdminService(api, nil, nil)

	_, err := svc.CreateAmenity(context.Background(), &models.Amenity{Category: "Outdoor"})
	var verr *reservation.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, api.created)

	_, err = svc.CreateAmenity(context.Background(), &models.Amenity{Name: "Pool", Category: "Outdoor"})
	require.NoError(t, err)
	assert.Len(t, api.created, 1)
}

func TestAdminService_PaymentJournal(t *testing.T) {
	j := journal.NewMemory()
	ctx := context.Background()
	require.NoError(t, j.Record(ctx, &journal.Entry{ReservationID: "77", FlowID: "flow-1", State: "order_created"}))
	require.NoError(t, j.Record(ctx, &journal.Entry{ReservationID: "77", FlowID: "flow-1", State: "captured"}))

	svc := NewAdminService(&fakeAdminAPI{}, j, nil)
	entries, err := svc.PaymentJournal(ctx, "77")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "captured", entries[1].State)

	empty, err := NewAdminService(&fakeAdminAPI{}, nil, nil).PaymentJournal(ctx, "77")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAdminService_PublishFailureDoesNotFailUpdate(t *testing.T) {
	api := &fakeAdminAPI{reservations: []models.Reservation{{ID: "1", Status: models.BookingStatusPending}}}
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("queue full"))
	svc := NewAdminService(api, nil, pub)

	_, err := svc.UpdateBookingStatus(context.Background(), "1", models.BookingStatusCancelled)
	assert.NoError(t, err)
}
