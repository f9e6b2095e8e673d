package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/cx-tal-miterani/rental-booking-system/internal/cache"
	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
)

// GetProperty returns a property with its images, amenities and policies
func (c *Client) GetProperty(ctx context.Context, id models.ID) (*models.Property, error) {
	var p models.Property
	path := "/properties/" + url.PathEscape(id.String())
	if err := c.cachedGet(ctx, cache.Key(ResourceProperties, id.String()), path, &p); err != nil {
		return nil, fmt.Errorf("failed to get property %s: %w", id, err)
	}
	return &p, nil
}

func (c *Client) ListProperties(ctx context.Context) ([]models.Property, error) {
	var ps []models.Property
	if err := c.cachedGet(ctx, ResourceProperties, "/properties", &ps); err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return ps, nil
}

func (c *Client) UpdateProperty(ctx context.Context, id models.ID, req *models.UpdatePropertyRequest) (*models.Property, error) {
	var p models.Property
	if err := c.do(ctx, http.MethodPut, "/properties/"+url.PathEscape(id.String()), req, &p); err != nil {
		return nil, fmt.Errorf("failed to update property %s: %w", id, err)
	}
	c.invalidate(ctx, ResourceProperties)
	return &p, nil
}
