package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/cx-tal-miterani/rental-booking-system/internal/admin"
	"github.com/cx-tal-miterani/rental-booking-system/internal/backend"
	"github.com/cx-tal-miterani/rental-booking-system/internal/events"
	"github.com/cx-tal-miterani/rental-booking-system/internal/journal"
	"github.com/cx-tal-miterani/rental-booking-system/internal/listview"
	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
	"github.com/cx-tal-miterani/rental-booking-system/internal/reservation"
	"github.com/cx-tal-miterani/rental-booking-system/internal/session"
)

var (
	ErrInvalidTransition = errors.New("booking status change not allowed")
	ErrNoSession         = errors.New("no session")
)

// AdminService is the back office
type AdminService interface {
	Login(ctx context.Context, creds backend.Credentials) error
	Logout(ctx context.Context) error

	ListBookings(ctx context.Context, state listview.State) ([]models.Reservation, error)
	UpdateBookingStatus(ctx context.Context, id models.ID, status models.BookingStatus) (*models.Reservation, error)

	ListProperties(ctx context.Context, state listview.State) ([]models.Property, error)
	UpdateProperty(ctx context.Context, id models.ID, req *models.UpdatePropertyRequest) (*models.Property, error)

	ListAmenities(ctx context.Context, state listview.State) ([]models.Amenity, error)
	CreateAmenity(ctx context.Context, amenity *models.Amenity) (*models.Amenity, error)
	UpdateAmenity(ctx context.Context, id models.ID, amenity *models.Amenity) (*models.Amenity, error)
	DeleteAmenity(ctx context.Context, id models.ID) error

	ListReviews(ctx context.Context, state listview.State) ([]models.Review, error)
	DeleteReview(ctx context.Context, id models.ID) error

	ListPayments(ctx context.Context, state listview.State) ([]models.Payment, error)
	PaymentJournal(ctx context.Context, reservationID models.ID) ([]journal.Entry, error)

	ListCustomers(ctx context.Context, state listview.State) ([]models.Customer, error)

	UpdateHomeContent(ctx context.Context, content *models.HomeContent) (*models.HomeContent, error)
	AddHomeImage(ctx context.Context, img *models.HomeImage) (*models.HomeImage, error)
	DeleteHomeImage(ctx context.Context, id models.ID) error
}

// AdminAPI is the part of the backend the back office reaches
type AdminAPI interface {
	Login(ctx context.Context, creds backend.Credentials) (string, error)
	ListReservations(ctx context.Context) ([]models.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id models.ID, status models.BookingStatus) (*models.Reservation, error)
	ListProperties(ctx context.Context) ([]models.Property, error)
	UpdateProperty(ctx context.Context, id models.ID, req *models.UpdatePropertyRequest) (*models.Property, error)
	ListAmenities(ctx context.Context) ([]models.Amenity, error)
	CreateAmenity(ctx context.Context, a *models.Amenity) (*models.Amenity, error)
	UpdateAmenity(ctx context.Context, id models.ID, a *models.Amenity) (*models.Amenity, error)
	DeleteAmenity(ctx context.Context, id models.ID) error
	ListReviews(ctx context.Context) ([]models.Review, error)
	DeleteReview(ctx context.Context, id models.ID) error
	ListPayments(ctx context.Context) ([]models.Payment, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	UpdateHomeContent(ctx context.Context, content *models.HomeContent) (*models.HomeContent, error)
	AddHomeImage(ctx context.Context, img *models.HomeImage) (*models.HomeImage, error)
	DeleteHomeImage(ctx context.Context, id models.ID) error
}

// adminServiceImpl implements AdminService
type adminServiceImpl struct {
	api     AdminAPI
	journal journal.Journal
	events  events.Publisher
}

func NewAdminService(api AdminAPI, j journal.Journal, pub events.Publisher) AdminService {
	if pub == nil {
		pub = events.Discard{}
	}
	return &adminServiceImpl{api: api, journal: j, events: pub}
}

// Login stores the issued token in the caller's session
func (s *adminServiceImpl) Login(ctx context.Context, creds backend.Credentials) error {
	if err := reservation.Validate(creds); err != nil {
		return err
	}
	sess := session.FromContext(ctx)
	if sess == nil {
		return ErrNoSession
	}
	token, err := s.api.Login(ctx, creds)
	if err != nil {
		log.Printf("Login failed for %s: %v", creds.Email, err)
		return err
	}
	if err := sess.SetToken(ctx, token); err != nil {
		return fmt.Errorf("failed to store session token: %w", err)
	}
	return nil
}

func (s *adminServiceImpl) Logout(ctx context.Context) error {
	sess := session.FromContext(ctx)
	if sess == nil {
		return nil
	}
	if err := sess.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (s *adminServiceImpl) ListBookings(ctx context.Context, state listview.State) ([]models.Reservation, error) {
	records, err := s.api.ListReservations(ctx)
	if err != nil {
		return nil, err
	}
	return listview.Apply(admin.Bookings, records, state), nil
}

// UpdateBookingStatus moves a booking forward. Only pending bookings change.
func (s *adminServiceImpl) UpdateBookingStatus(ctx context.Context, id models.ID, status models.BookingStatus) (*models.Reservation, error) {
	records, err := s.api.ListReservations(ctx)
	if err != nil {
		return nil, err
	}

	var current *models.Reservation
	for i := range records {
		if records[i].ID == id {
			current = &records[i]
			break
		}
	}
	if current == nil {
		return nil, reservation.ErrNotFound
	}
	if !models.CanTransition(current.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, status)
	}

	updated, err := s.api.UpdateReservationStatus(ctx, id, status)
	if err != nil {
		log.Printf("Failed to set booking %s to %s: %v", id, status, err)
		return nil, err
	}

	payload := events.BookingStatusChangedPayload{ReservationID: id, Status: status}
	if err := s.events.Publish(ctx, events.EventBookingStatusChanged, id.String(), payload); err != nil {
		log.Printf("Failed to publish status change of booking %s: %v", id, err)
	}
	return updated, nil
}

func (s *adminServiceImpl) ListProperties(ctx context.Context, state listview.State) ([]models.Property, error) {
	records, err := s.api.ListProperties(ctx)
	if err != nil {
		return nil, err
	}
	return listview.Apply(admin.Properties, records, state), nil
}

func (s *adminServiceImpl) UpdateProperty(ctx context.Context, id models.ID, req *models.UpdatePropertyRequest) (*models.Property, error) {
	if err := reservation.Validate(req); err != nil {
		return nil, err
	}
	return s.api.UpdateProperty(ctx, id, req)
}

func (s *adminServiceImpl) ListAmenities(ctx context.Context, state listview.State) ([]models.Amenity, error) {
	records, err := s.api.ListAmenities(ctx)
	if err != nil {
		return nil, err
	}
	return listview.Apply(admin.Amenities, records, state), nil
}

func (s *adminServiceImpl) CreateAmenity(ctx context.Context, amenity *models.Amenity) (*models.Amenity, error) {
	if err := reservation.Validate(amenity); err != nil {
		return nil, err
	}
	return s.api.CreateAmenity(ctx, amenity)
}

func (s *adminServiceImpl) UpdateAmenity(ctx context.Context, id models.ID, amenity *models.Amenity) (*models.Amenity, error) {
	if err := reservation.Validate(amenity); err != nil {
		return nil, err
	}
	return s.api.UpdateAmenity(ctx, id, amenity)
}

func (s *adminServiceImpl) DeleteAmenity(ctx context.Context, id models.ID) error {
	return s.api.DeleteAmenity(ctx, id)
}

func (s *adminServiceImpl) ListReviews(ctx context.Context, state listview.State) ([]models.Review, error) {
	records, err := s.api.ListReviews(ctx)
	if err != nil {
		return nil, err
	}
	return listview.Apply(admin.Reviews, records, state), nil
}

func (s *adminServiceImpl) DeleteReview(ctx context.Context, id models.ID) error {
	return s.api.DeleteReview(ctx, id)
}

func (s *adminServiceImpl) ListPayments(ctx context.Context, state listview.State) ([]models.Payment, error) {
	records, err := s.api.ListPayments(ctx)
	if err != nil {
		return nil, err
	}
	return listview.Apply(admin.Payments, records, state), nil
}

// PaymentJournal lists the recorded checkout states of a reservation
func (s *adminServiceImpl) PaymentJournal(ctx context.Context, reservationID models.ID) ([]journal.Entry, error) {
	if s.journal == nil {
		return []journal.Entry{}, nil
	}
	entries, err := s.journal.ListByReservation(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to read payment journal: %w", err)
	}
	return entries, nil
}

func (s *adminServiceImpl) ListCustomers(ctx context.Context, state listview.State) ([]models.Customer, error) {
	records, err := s.api.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	return listview.Apply(admin.Customers, records, state), nil
}

func (s *adminServiceImpl) UpdateHomeContent(ctx context.Context, content *models.HomeContent) (*models.HomeContent, error) {
	if err := reservation.Validate(content); err != nil {
		return nil, err
	}
	return s.api.UpdateHomeContent(ctx, content)
}

func (s *adminServiceImpl) AddHomeImage(ctx context.Context, img *models.HomeImage) (*models.HomeImage, error) {
	if err := reservation.Validate(img); err != nil {
		return nil, err
	}
	return s.api.AddHomeImage(ctx, img)
}

func (s *adminServiceImpl) DeleteHomeImage(ctx context.Context, id models.ID) error {
	return s.api.DeleteHomeImage(ctx, id)
}
