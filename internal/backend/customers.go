package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
)

// CreateCustomer registers the guest and returns the backend's customer ID
func (c *Client) CreateCustomer(ctx context.Context, contact models.ContactInfo) (models.ID, error) {
	var resp idResponse
	if err := c.do(ctx, http.MethodPost, "/customers", contact, &resp); err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("failed to create customer: response has no id")
	}
	c.invalidate(ctx, ResourceCustomers)
	return resp.ID, nil
}

func (c *Client) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var cs []models.Customer
	if err := c.cachedGet(ctx, ResourceCustomers, "/customers", &cs); err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return cs, nil
}
