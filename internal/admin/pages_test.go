package admin

import (
	"testing"

	"github.com/cx-tal-miterani/rental-booking-system/internal/listview"
	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookings_SortByStatusPriority(t *testing.T) {
	records := []models.Reservation{
		{ID: "1", Status: models.BookingStatusCancelled},
		{ID: "2", Status: models.BookingStatusPending},
		{ID: "3", Status: models.BookingStatusConfirmed},
	}

	result := Bookings.Process(records, "", listview.FilterAll, listview.Sort{Key: "status", Direction: listview.Asc})

	require.Len(t, result, 3)
	assert.Equal(t, models.BookingStatusPending, result[0].Status)
	assert.Equal(t, models.BookingStatusConfirmed, result[1].Status)
	assert.Equal(t, models.BookingStatusCancelled, result[2].Status)
}

func TestBookings_SearchAndFilter(t *testing.T) {
	records := []models.Reservation{
		{ID: "1", CustomerName: "John Doe", Status: models.BookingStatusPending},
		{ID: "2", CustomerName: "Amy", Status: models.BookingStatusPending},
		{ID: "3", CustomerName: "Johnny", Status: models.BookingStatusConfirmed},
	}

	result := Bookings.Process(records, "john", "pending", listview.Sort{})

	require.Len(t, result, 1)
	assert.Equal(t, models.ID("1"), result[0].ID)
}

func TestBookings_SortByTotal(t *testing.T) {
	records := []models.Reservation{
		{ID: "a", TotalPrice: decimal.NewFromInt(1000)},
		{ID: "b", TotalPrice: decimal.RequireFromString("99.50")},
	}

	result := Bookings.Process(records, "", "", listview.Sort{Key: "total", Direction: listview.Asc})
	assert.Equal(t, models.ID("b"), result[0].ID)
}

func TestReviews_FilterByRating(t *testing.T) {
	records := []models.Review{
		{ID: "1", AuthorName: "Ann", Rating: 5},
		{ID: "2", AuthorName: "Ben", Rating: 3},
	}

	result := Reviews.Process(records, "", "5", listview.Sort{})
	require.Len(t, result, 1)
	assert.Equal(t, "Ann", result[0].AuthorName)
}

func TestPayments_StatusRank(t *testing.T) {
	records := []models.Payment{
		{OrderID: "o1", Status: "failed"},
		{OrderID: "o2", Status: "captured"},
		{OrderID: "o3", Status: "created"},
	}

	result := Payments.Process(records, "", "", listview.Sort{Key: "status", Direction: listview.Asc})
	assert.Equal(t, "o3", result[0].OrderID)
	assert.Equal(t, "o2", result[1].OrderID)
	assert.Equal(t, "o1", result[2].OrderID)
}

func TestCustomers_SearchByEmail(t *testing.T) {
	records := []models.Customer{
		{ID: "1", FirstName: "Ann", Email: "ann@example.com", Country: "US"},
		{ID: "2", FirstName: "Ben", Email: "ben@example.org", Country: "CA"},
	}

	assert.Len(t, Customers.Process(records, "EXAMPLE.ORG", "", listview.Sort{}), 1)
	assert.Len(t, Customers.Process(records, "", "us", listview.Sort{}), 1)
}

func TestAmenitiesAndProperties_Sortable(t *testing.T) {
	assert.True(t, Amenities.Sortable("name"))
	assert.True(t, Properties.Sortable("nightlyRate"))
	assert.False(t, Properties.Sortable("status"))
}
