package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
)

func (c *Client) ListAmenities(ctx context.Context) ([]models.Amenity, error) {
	var as []models.Amenity
	if err := c.cachedGet(ctx, ResourceAmenities, "/amenities", &as); err != nil {
		return nil, fmt.Errorf("failed to list amenities: %w", err)
	}
	return as, nil
}

func (c *Client) CreateAmenity(ctx context.Context, a *models.Amenity) (*models.Amenity, error) {
	var created models.Amenity
	if err := c.do(ctx, http.MethodPost, "/amenities", a, &created); err != nil {
		return nil, fmt.Errorf("failed to create amenity: %w", err)
	}
	c.invalidate(ctx, ResourceAmenities)
	return &created, nil
}

// UpdateAmenity also drops cached properties, which embed their amenities
func (c *Client) UpdateAmenity(ctx context.Context, id models.ID, a *models.Amenity) (*models.Amenity, error) {
	var updated models.Amenity
	if err := c.do(ctx, http.MethodPut, "/amenities/"+url.PathEscape(id.String()), a, &updated); err != nil {
		return nil, fmt.Errorf("failed to update amenity %s: %w", id, err)
	}
	c.invalidate(ctx, ResourceAmenities, ResourceProperties)
	return &updated, nil
}

func (c *Client) DeleteAmenity(ctx context.Context, id models.ID) error {
	if err := c.do(ctx, http.MethodDelete, "/amenities/"+url.PathEscape(id.String()), nil, nil); err != nil {
		return fmt.Errorf("failed to delete amenity %s: %w", id, err)
	}
	c.invalidate(ctx, ResourceAmenities, ResourceProperties)
	return nil
}
