package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ID is an identifier issued by the backend. The backend returns some
// identifiers as JSON numbers and others as strings; both decode to ID.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Property represents a rentable property
type Property struct {
	ID           ID              `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Location     string          `json:"location"`
	Status       string          `json:"status"`
	NightlyRate  decimal.Decimal `json:"nightlyRate"`
	MaxGuests    int             `json:"maxGuests"`
	Bedrooms     int             `json:"bedrooms"`
	Bathrooms    int             `json:"bathrooms"`
	CheckInTime  string          `json:"checkInTime"`
	CheckOutTime string          `json:"checkOutTime"`
	Images       []Image         `json:"images"`
	Amenities    []Amenity       `json:"amenities"`
	Policies     []Policy        `json:"policies"`
}

// Image is a property photo
type Image struct {
	ID       ID     `json:"id"`
	URL      string `json:"url"`
	Caption  string `json:"caption,omitempty"`
	Position int    `json:"position"`
}

// Amenity is a feature offered by a property
type Amenity struct {
	ID       ID     `json:"id"`
	Name     string `json:"name" validate:"required"`
	Icon     string `json:"icon,omitempty"`
	Category string `json:"category"`
}

// Policy is a house rule shown on the property page
type Policy struct {
	ID    ID     `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// UpdatePropertyRequest carries the editable fields of a property
type UpdatePropertyRequest struct {
	Name         string          `json:"name" validate:"required"`
	Description  string          `json:"description"`
	Location     string          `json:"location"`
	Status       string          `json:"status"`
	NightlyRate  decimal.Decimal `json:"nightlyRate"`
	MaxGuests    int             `json:"maxGuests" validate:"gte=1"`
	CheckInTime  string          `json:"checkInTime"`
	CheckOutTime string          `json:"checkOutTime"`
}
