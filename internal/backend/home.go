package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
)

func (c *Client) GetHomeContent(ctx context.Context) (*models.HomeContent, error) {
	var h models.HomeContent
	if err := c.cachedGet(ctx, ResourceHome, "/home", &h); err != nil {
		return nil, fmt.Errorf("failed to get home content: %w", err)
	}
	return &h, nil
}

// UpdateHomeContent sets the home page title and subtitle
func (c *Client) UpdateHomeContent(ctx context.Context, content *models.HomeContent) (*models.HomeContent, error) {
	var h models.HomeContent
	body := map[string]string{"title": content.Title, "subtitle": content.Subtitle}
	if err := c.do(ctx, http.MethodPut, "/home", body, &h); err != nil {
		return nil, fmt.Errorf("failed to update home content: %w", err)
	}
	c.invalidate(ctx, ResourceHome)
	return &h, nil
}

func (c *Client) AddHomeImage(ctx context.Context, img *models.HomeImage) (*models.HomeImage, error) {
	var created models.HomeImage
	if err := c.do(ctx, http.MethodPost, "/home/images", img, &created); err != nil {
		return nil, fmt.Errorf("failed to add home image: %w", err)
	}
	c.invalidate(ctx, ResourceHome)
	return &created, nil
}

func (c *Client) DeleteHomeImage(ctx context.Context, id models.ID) error {
	if err := c.do(ctx, http.MethodDelete, "/home/images/"+url.PathEscape(id.String()), nil, nil); err != nil {
		return fmt.Errorf("failed to delete home image %s: %w", id, err)
	}
	c.invalidate(ctx, ResourceHome)
	return nil
}
