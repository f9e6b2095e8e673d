package service

import (
	"context"
	"fmt"
	"log"

	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
	"github.com/cx-tal-miterani/rental-booking-system/internal/pricing"
	"github.com/cx-tal-miterani/rental-booking-system/internal/reservation"
)

// BookingService is everything a guest can do
type BookingService interface {
	GetProperty(ctx context.Context, id models.ID) (*models.Property, error)
	ListPropertyReviews(ctx context.Context, propertyID models.ID) ([]models.Review, error)
	GetHomeContent(ctx context.Context) (*models.HomeContent, error)
	SubmitReview(ctx context.Context, review *models.Review) (*models.Review, error)

	StartReservation(ctx context.Context, propertyID models.ID) (*reservation.Snapshot, error)
	GetReservation(ctx context.Context, flowID string) (*reservation.Snapshot, error)
	GetPricing(ctx context.Context, flowID string) (*pricing.Result, error)
	SubmitContact(ctx context.Context, flowID string, contact models.ContactInfo) (*reservation.Snapshot, error)
	SetDates(ctx context.Context, flowID string, dates pricing.DateRange, guests int) (*reservation.Snapshot, error)
	ContinueToPayment(ctx context.Context, flowID string) (*reservation.Snapshot, error)
	GoToStep(ctx context.Context, flowID string, step reservation.Step) (*reservation.Snapshot, error)
	BeginPayment(ctx context.Context, flowID string) (*reservation.PaymentHandle, error)
	ApprovePayment(ctx context.Context, flowID, orderID string) (*models.Confirmation, error)
	CancelPayment(ctx context.Context, flowID, reason string) (*reservation.Snapshot, error)
	AbandonReservation(ctx context.Context, flowID string) error
}

// GuestAPI is the part of the backend a guest reaches
type GuestAPI interface {
	GetProperty(ctx context.Context, id models.ID) (*models.Property, error)
	ListPropertyReviews(ctx context.Context, propertyID models.ID) ([]models.Review, error)
	GetHomeContent(ctx context.Context) (*models.HomeContent, error)
	CreateReview(ctx context.Context, review *models.Review) (*models.Review, error)
}

// bookingServiceImpl implements BookingService
type bookingServiceImpl struct {
	api   GuestAPI
	flows *reservation.Registry
}

func NewBookingService(api GuestAPI, flows *reservation.Registry) BookingService {
	return &bookingServiceImpl{api: api, flows: flows}
}

func (s *bookingServiceImpl) GetProperty(ctx context.Context, id models.ID) (*models.Property, error) {
	return s.api.GetProperty(ctx, id)
}

func (s *bookingServiceImpl) ListPropertyReviews(ctx context.Context, propertyID models.ID) ([]models.Review, error) {
	return s.api.ListPropertyReviews(ctx, propertyID)
}

func (s *bookingServiceImpl) GetHomeContent(ctx context.Context) (*models.HomeContent, error) {
	return s.api.GetHomeContent(ctx)
}

func (s *bookingServiceImpl) SubmitReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	if err := reservation.Validate(review); err != nil {
		return nil, err
	}
	return s.api.CreateReview(ctx, review)
}

func (s *bookingServiceImpl) StartReservation(ctx context.Context, propertyID models.ID) (*reservation.Snapshot, error) {
	property, err := s.api.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	f := s.flows.Create(property)
	log.Printf("Reservation flow %s started for property %s", f.ID(), propertyID)
	return snapshot(f), nil
}

func (s *bookingServiceImpl) GetReservation(ctx context.Context, flowID string) (*reservation.Snapshot, error) {
	f, err := s.flows.Get(flowID)
	if err != nil {
		return nil, err
	}
	return snapshot(f), nil
}

func (s *bookingServiceImpl) GetPricing(ctx context.Context, flowID string) (*pricing.Result, error) {
	f, err := s.flows.Get(flowID)
	if err != nil {
		return nil, err
	}
	result := f.Pricing()
	return &result, nil
}

func (s *bookingServiceImpl) SubmitContact(ctx context.Context, flowID string, contact models.ContactInfo) (*reservation.Snapshot, error) {
	return s.apply(flowID, func(f *reservation.Flow) error {
		return f.SubmitContact(ctx, contact)
	})
}

func (s *bookingServiceImpl) SetDates(ctx context.Context, flowID string, dates pricing.DateRange, guests int) (*reservation.Snapshot, error) {
	return s.apply(flowID, func(f *reservation.Flow) error {
		return f.SetDates(dates, guests)
	})
}

func (s *bookingServiceImpl) ContinueToPayment(ctx context.Context, flowID string) (*reservation.Snapshot, error) {
	return s.apply(flowID, (*reservation.Flow).ContinueToPayment)
}

func (s *bookingServiceImpl) GoToStep(ctx context.Context, flowID string, step reservation.Step) (*reservation.Snapshot, error) {
	return s.apply(flowID, func(f *reservation.Flow) error {
		return f.GoTo(step)
	})
}

func (s *bookingServiceImpl) BeginPayment(ctx context.Context, flowID string) (*reservation.PaymentHandle, error) {
	f, err := s.flows.Get(flowID)
	if err != nil {
		return nil, err
	}
	return f.BeginPayment(ctx)
}

// ApprovePayment captures the order and retires the completed flow
func (s *bookingServiceImpl) ApprovePayment(ctx context.Context, flowID, orderID string) (*models.Confirmation, error) {
	f, err := s.flows.Get(flowID)
	if err != nil {
		return nil, err
	}
	conf, err := f.ApprovePayment(ctx, orderID)
	if err != nil {
		return nil, err
	}
	log.Printf("Reservation %s confirmed for %s (flow %s)", conf.ReservationID, conf.CustomerName, flowID)
	if err := s.flows.Remove(flowID); err != nil {
		log.Printf("Failed to retire flow %s: %v", flowID, err)
	}
	return conf, nil
}

func (s *bookingServiceImpl) CancelPayment(ctx context.Context, flowID, reason string) (*reservation.Snapshot, error) {
	return s.apply(flowID, func(f *reservation.Flow) error {
		return f.CancelPayment(ctx, reason)
	})
}

func (s *bookingServiceImpl) AbandonReservation(ctx context.Context, flowID string) error {
	f, err := s.flows.Get(flowID)
	if err != nil {
		return err
	}
	if err := f.Abandon(ctx, "reservation abandoned"); err != nil {
		log.Printf("Failed to cancel payment of abandoned flow %s: %v", flowID, err)
	}
	if err := s.flows.Remove(flowID); err != nil {
		return fmt.Errorf("failed to abandon reservation: %w", err)
	}
	return nil
}

func (s *bookingServiceImpl) apply(flowID string, action func(*reservation.Flow) error) (*reservation.Snapshot, error) {
	f, err := s.flows.Get(flowID)
	if err != nil {
		return nil, err
	}
	if err := action(f); err != nil {
		return nil, err
	}
	return snapshot(f), nil
}

func snapshot(f *reservation.Flow) *reservation.Snapshot {
	s := f.Snapshot()
	return &s
}
