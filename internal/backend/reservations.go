package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
)

// CreateReservation records a reservation and returns its ID
func (c *Client) CreateReservation(ctx context.Context, req *models.CreateReservationRequest) (models.ID, error) {
	var resp idResponse
	if err := c.do(ctx, http.MethodPost, "/reservations", req, &resp); err != nil {
		return "", fmt.Errorf("failed to create reservation: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("failed to create reservation: response has no id")
	}
	c.invalidate(ctx, ResourceReservations)
	return resp.ID, nil
}

func (c *Client) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	var rs []models.Reservation
	if err := c.cachedGet(ctx, ResourceReservations, "/reservations", &rs); err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return rs, nil
}

// UpdateReservationStatus moves a booking to status
func (c *Client) UpdateReservationStatus(ctx context.Context, id models.ID, status models.BookingStatus) (*models.Reservation, error) {
	var r models.Reservation
	body := map[string]models.BookingStatus{"status": status}
	path := "/reservations/" + url.PathEscape(id.String()) + "/status"
	if err := c.do(ctx, http.MethodPatch, path, body, &r); err != nil {
		return nil, fmt.Errorf("failed to update reservation %s: %w", id, err)
	}
	c.invalidate(ctx, ResourceReservations)
	return &r, nil
}
