package mocks

import (
	"context"

	"github.com/cx-tal-miterani/rental-booking-system/internal/backend"
	"github.com/cx-tal-miterani/rental-booking-system/internal/journal"
	"github.com/cx-tal-miterani/rental-booking-system/internal/listview"
	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
	"github.com/cx-tal-miterani/rental-booking-system/internal/pricing"
	"github.com/cx-tal-miterani/rental-booking-system/internal/reservation"
	"github.com/stretchr/testify/mock"
)

// MockBookingService is a mock implementation of BookingService
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) GetProperty(ctx context.Context, id models.ID) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockBookingService) ListPropertyReviews(ctx context.Context, propertyID models.ID) ([]models.Review, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *MockBookingService) GetHomeContent(ctx context.Context) (*models.HomeContent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HomeContent), args.Error(1)
}

func (m *MockBookingService) SubmitReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	args := m.Called(ctx, review)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockBookingService) StartReservation(ctx context.Context, propertyID models.ID) (*reservation.Snapshot, error) {
	args := m.Called(ctx, propertyID)
	return snapshot(args)
}

func (m *MockBookingService) GetReservation(ctx context.Context, flowID string) (*reservation.Snapshot, error) {
	args := m.Called(ctx, flowID)
	return snapshot(args)
}

func (m *MockBookingService) GetPricing(ctx context.Context, flowID string) (*pricing.Result, error) {
	args := m.Called(ctx, flowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Result), args.Error(1)
}

func (m *MockBookingService) SubmitContact(ctx context.Context, flowID string, contact models.ContactInfo) (*reservation.Snapshot, error) {
	args := m.Called(ctx, flowID, contact)
	return snapshot(args)
}

func (m *MockBookingService) SetDates(ctx context.Context, flowID string, dates pricing.DateRange, guests int) (*reservation.Snapshot, error) {
	args := m.Called(ctx, flowID, dates, guests)
	return snapshot(args)
}

func (m *MockBookingService) ContinueToPayment(ctx context.Context, flowID string) (*reservation.Snapshot, error) {
	args := m.Called(ctx, flowID)
	return snapshot(args)
}

func (m *MockBookingService) GoToStep(ctx context.Context, flowID string, step reservation.Step) (*reservation.Snapshot, error) {
	args := m.Called(ctx, flowID, step)
	return snapshot(args)
}

func (m *MockBookingService) BeginPayment(ctx context.Context, flowID string) (*reservation.PaymentHandle, error) {
	args := m.Called(ctx, flowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.PaymentHandle), args.Error(1)
}

func (m *MockBookingService) ApprovePayment(ctx context.Context, flowID, orderID string) (*models.Confirmation, error) {
	args := m.Called(ctx, flowID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Confirmation), args.Error(1)
}

func (m *MockBookingService) CancelPayment(ctx context.Context, flowID, reason string) (*reservation.Snapshot, error) {
	args := m.Called(ctx, flowID, reason)
	return snapshot(args)
}

func (m *MockBookingService) AbandonReservation(ctx context.Context, flowID string) error {
	args := m.Called(ctx, flowID)
	return args.Error(0)
}

func snapshot(args mock.Arguments) (*reservation.Snapshot, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Snapshot), args.Error(1)
}

// MockAdminService is a mock implementation of AdminService
type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) Login(ctx context.Context, creds backend.Credentials) error {
	args := m.Called(ctx, creds)
	return args.Error(0)
}

func (m *MockAdminService) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockAdminService) ListBookings(ctx context.Context, state listview.State) ([]models.Reservation, error) {
	args := m.Called(ctx, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reservation), args.Error(1)
}

func (m *MockAdminService) UpdateBookingStatus(ctx context.Context, id models.ID, status models.BookingStatus) (*models.Reservation, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

func (m *MockAdminService) ListProperties(ctx context.Context, state listview.State) ([]models.Property, error) {
	args := m.Called(ctx, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

func (m *MockAdminService) UpdateProperty(ctx context.Context, id models.ID, req *models.UpdatePropertyRequest) (*models.Property, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockAdminService) ListAmenities(ctx context.Context, state listview.State) ([]models.Amenity, error) {
	args := m.Called(ctx, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Amenity), args.Error(1)
}

func (m *MockAdminService) CreateAmenity(ctx context.Context, amenity *models.Amenity) (*models.Amenity, error) {
	args := m.Called(ctx, amenity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Amenity), args.Error(1)
}

func (m *MockAdminService) UpdateAmenity(ctx context.Context, id models.ID, amenity *models.Amenity) (*models.Amenity, error) {
	args := m.Called(ctx, id, amenity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Amenity), args.Error(1)
}

func (m *MockAdminService) DeleteAmenity(ctx context.Context, id models.ID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAdminService) ListReviews(ctx context.Context, state listview.State) ([]models.Review, error) {
	args := m.Called(ctx, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Review), args.Error(1)
}

func (m *MockAdminService) DeleteReview(ctx context.Context, id models.ID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAdminService) ListPayments(ctx context.Context, state listview.State) ([]models.Payment, error) {
	args := m.Called(ctx, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Payment), args.Error(1)
}

func (m *MockAdminService) PaymentJournal(ctx context.Context, reservationID models.ID) ([]journal.Entry, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]journal.Entry), args.Error(1)
}

func (m *MockAdminService) ListCustomers(ctx context.Context, state listview.State) ([]models.Customer, error) {
	args := m.Called(ctx, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Customer), args.Error(1)
}

func (m *MockAdminService) UpdateHomeContent(ctx context.Context, content *models.HomeContent) (*models.HomeContent, error) {
	args := m.Called(ctx, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HomeContent), args.Error(1)
}

func (m *MockAdminService) AddHomeImage(ctx context.Context, img *models.HomeImage) (*models.HomeImage, error) {
	args := m.Called(ctx, img)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HomeImage), args.Error(1)
}

func (m *MockAdminService) DeleteHomeImage(ctx context.Context, id models.ID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
