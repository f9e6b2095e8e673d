package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is a processor payment recorded by the backend
type Payment struct {
	ID            ID              `json:"id"`
	ReservationID ID              `json:"reservationId"`
	OrderID       string          `json:"orderId"`
	CaptureID     string          `json:"captureId,omitempty"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PayerEmail    string          `json:"payerEmail,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Review is a guest review of a property
type Review struct {
	ID         ID        `json:"id"`
	PropertyID ID        `json:"propertyId"`
	AuthorName string    `json:"authorName" validate:"required"`
	Rating     int       `json:"rating" validate:"gte=1,lte=5"`
	Comment    string    `json:"comment" validate:"required"`
	CreatedAt  time.Time `json:"createdAt"`
}

// HomeImage is a hero image on the home page
type HomeImage struct {
	ID       ID     `json:"id"`
	URL      string `json:"url" validate:"required"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Position int    `json:"position"`
}

// HomeContent is the editable home page content
type HomeContent struct {
	Title    string      `json:"title" validate:"required"`
	Subtitle string      `json:"subtitle"`
	Images   []HomeImage `json:"images,omitempty"`
}
