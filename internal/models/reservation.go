package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContactInfo is the guest's contact details collected in the first step
type ContactInfo struct {
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	Email       string `json:"email" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Country     string `json:"country" validate:"required"`
}

// FullName returns "First Last"
func (c ContactInfo) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// Customer represents a guest known to the backend
type Customer struct {
	ID          ID        `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	Country     string    `json:"country"`
	CreatedAt   time.Time `json:"createdAt"`
}

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

var validNext = map[BookingStatus]map[BookingStatus]bool{
	BookingStatusPending:   {BookingStatusConfirmed: true, BookingStatusCancelled: true},
	BookingStatusConfirmed: {},
	BookingStatusCancelled: {},
}

// CanTransition reports whether a booking may move from one status to another
func CanTransition(from, to BookingStatus) bool {
	return validNext[from][to]
}

// Reservation represents a booking of a property
type Reservation struct {
	ID           ID              `json:"id"`
	PropertyID   ID              `json:"propertyId"`
	PropertyName string          `json:"propertyName,omitempty"`
	CustomerID   ID              `json:"customerId"`
	CustomerName string          `json:"customerName,omitempty"`
	Email        string          `json:"email,omitempty"`
	CheckIn      time.Time       `json:"checkIn"`
	CheckOut     time.Time       `json:"checkOut"`
	Guests       int             `json:"guests"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	Status       BookingStatus   `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// CreateReservationRequest is sent to the backend to create a pending reservation
type CreateReservationRequest struct {
	PropertyID ID              `json:"propertyId"`
	CustomerID ID              `json:"customerId"`
	CheckIn    time.Time       `json:"checkIn"`
	CheckOut   time.Time       `json:"checkOut"`
	Guests     int             `json:"guests"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Status     BookingStatus   `json:"status"`
}

// Confirmation is shown to the guest once payment is captured
type Confirmation struct {
	ReservationID ID              `json:"reservationId"`
	Total         decimal.Decimal `json:"total"`
	CustomerName  string          `json:"customerName"`
}
