package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/cx-tal-miterani/rental-booking-system/internal/cache"
	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
)

func (c *Client) ListReviews(ctx context.Context) ([]models.Review, error) {
	var rs []models.Review
	if err := c.cachedGet(ctx, ResourceReviews, "/reviews", &rs); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return rs, nil
}

// ListPropertyReviews returns the reviews of one property
func (c *Client) ListPropertyReviews(ctx context.Context, propertyID models.ID) ([]models.Review, error) {
	var rs []models.Review
	key := cache.Key(ResourceProperties, propertyID.String(), "reviews")
	path := "/properties/" + url.PathEscape(propertyID.String()) + "/reviews"
	if err := c.cachedGet(ctx, key, path, &rs); err != nil {
		return nil, fmt.Errorf("failed to list reviews of %s: %w", propertyID, err)
	}
	return rs, nil
}

func (c *Client) CreateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	var created models.Review
	if err := c.do(ctx, http.MethodPost, "/reviews", review, &created); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	c.invalidate(ctx, ResourceReviews, cache.Key(ResourceProperties, review.PropertyID.String(), "reviews"))
	return &created, nil
}

// DeleteReview removes a review. Property review lists are all dropped
// since the review's property is not known here.
func (c *Client) DeleteReview(ctx context.Context, id models.ID) error {
	if err := c.do(ctx, http.MethodDelete, "/reviews/"+url.PathEscape(id.String()), nil, nil); err != nil {
		return fmt.Errorf("failed to delete review %s: %w", id, err)
	}
	c.invalidate(ctx, ResourceReviews, ResourceProperties)
	return nil
}
