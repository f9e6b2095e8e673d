// Package admin declares the list configuration of every back-office table.
package admin

import (
	"strconv"

	"github.com/cx-tal-miterani/rental-booking-system/internal/listview"
	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
)

// BookingStatusRanks orders bookings by workflow stage rather than name
var BookingStatusRanks = map[string]int{
	string(models.BookingStatusPending):   1,
	string(models.BookingStatusConfirmed): 2,
	string(models.BookingStatusCancelled): 3,
}

// PaymentStatusRanks orders payments by processor stage
var PaymentStatusRanks = map[string]int{
	"created":   1,
	"approved":  2,
	"completed": 3,
	"captured":  3,
	"failed":    4,
}

var Bookings = listview.New(
	listview.WithSearch(
		func(r models.Reservation) string { return r.ID.String() },
		func(r models.Reservation) string { return r.CustomerName },
		func(r models.Reservation) string { return r.Email },
		func(r models.Reservation) string { return r.PropertyName },
	),
	listview.WithFilter(func(r models.Reservation) string { return string(r.Status) }),
	listview.WithColumn("customer", func(r models.Reservation) listview.Key { return listview.Text(r.CustomerName) }),
	listview.WithColumn("property", func(r models.Reservation) listview.Key { return listview.Text(r.PropertyName) }),
	listview.WithColumn("checkIn", func(r models.Reservation) listview.Key { return listview.Time(r.CheckIn) }),
	listview.WithColumn("checkOut", func(r models.Reservation) listview.Key { return listview.Time(r.CheckOut) }),
	listview.WithColumn("guests", func(r models.Reservation) listview.Key { return listview.Int(r.Guests) }),
	listview.WithColumn("total", func(r models.Reservation) listview.Key { return listview.Number(r.TotalPrice.InexactFloat64()) }),
	listview.WithColumn("createdAt", func(r models.Reservation) listview.Key { return listview.Time(r.CreatedAt) }),
	listview.WithRankColumn("status", func(r models.Reservation) string { return string(r.Status) }, BookingStatusRanks),
)

var Properties = listview.New(
	listview.WithSearch(
		func(p models.Property) string { return p.Name },
		func(p models.Property) string { return p.Location },
	),
	listview.WithFilter(func(p models.Property) string { return p.Status }),
	listview.WithColumn("name", func(p models.Property) listview.Key { return listview.Text(p.Name) }),
	listview.WithColumn("location", func(p models.Property) listview.Key { return listview.Text(p.Location) }),
	listview.WithColumn("nightlyRate", func(p models.Property) listview.Key { return listview.Number(p.NightlyRate.InexactFloat64()) }),
	listview.WithColumn("maxGuests", func(p models.Property) listview.Key { return listview.Int(p.MaxGuests) }),
)

var Amenities = listview.New(
	listview.WithSearch(
		func(a models.Amenity) string { return a.Name },
		func(a models.Amenity) string { return a.Category },
	),
	listview.WithFilter(func(a models.Amenity) string { return a.Category }),
	listview.WithColumn("name", func(a models.Amenity) listview.Key { return listview.Text(a.Name) }),
	listview.WithColumn("category", func(a models.Amenity) listview.Key { return listview.Text(a.Category) }),
)

var Reviews = listview.New(
	listview.WithSearch(
		func(r models.Review) string { return r.AuthorName },
		func(r models.Review) string { return r.Comment },
	),
	listview.WithFilter(func(r models.Review) string { return strconv.Itoa(r.Rating) }),
	listview.WithColumn("author", func(r models.Review) listview.Key { return listview.Text(r.AuthorName) }),
	listview.WithColumn("rating", func(r models.Review) listview.Key { return listview.Int(r.Rating) }),
	listview.WithColumn("createdAt", func(r models.Review) listview.Key { return listview.Time(r.CreatedAt) }),
)

var Payments = listview.New(
	listview.WithSearch(
		func(p models.Payment) string { return p.OrderID },
		func(p models.Payment) string { return p.ReservationID.String() },
		func(p models.Payment) string { return p.PayerEmail },
	),
	listview.WithFilter(func(p models.Payment) string { return p.Status }),
	listview.WithColumn("amount", func(p models.Payment) listview.Key { return listview.Number(p.Amount.InexactFloat64()) }),
	listview.WithColumn("createdAt", func(p models.Payment) listview.Key { return listview.Time(p.CreatedAt) }),
	listview.WithRankColumn("status", func(p models.Payment) string { return p.Status }, PaymentStatusRanks),
)

var Customers = listview.New(
	listview.WithSearch(
		func(c models.Customer) string { return c.FirstName },
		func(c models.Customer) string { return c.LastName },
		func(c models.Customer) string { return c.Email },
		func(c models.Customer) string { return c.PhoneNumber },
	),
	listview.WithFilter(func(c models.Customer) string { return c.Country }),
	listview.WithColumn("name", func(c models.Customer) listview.Key { return listview.Text(c.FirstName + " " + c.LastName) }),
	listview.WithColumn("email", func(c models.Customer) listview.Key { return listview.Text(c.Email) }),
	listview.WithColumn("country", func(c models.Customer) listview.Key { return listview.Text(c.Country) }),
	listview.WithColumn("createdAt", func(c models.Customer) listview.Key { return listview.Time(c.CreatedAt) }),
)
