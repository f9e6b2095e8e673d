// Package backend is the typed client of the booking backend API. Responses
// are decoded into internal/models records at this boundary.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/cx-tal-miterani/rental-booking-system/internal/cache"
	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
	"github.com/cx-tal-miterani/rental-booking-system/internal/session"
	"github.com/google/uuid"
)

const (
	DefaultTimeout = 8 * time.Second
	maxErrorBody   = 64 << 10
)

// Client calls the backend API
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      cache.Cache
}

type Option func(*Client)

// WithCache caches reads per resource; mutations invalidate them
func WithCache(c cache.Cache) Option {
	return func(cl *Client) { cl.cache = c }
}

// WithHTTPClient replaces the underlying HTTP client. Its Timeout is
// overwritten by the timeout given to New.
func WithHTTPClient(hc *http.Client) Option {
	return func(cl *Client) { cl.httpClient = hc }
}

// New creates a Client. timeout <= 0 uses DefaultTimeout.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient.Timeout = timeout
	return c
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	sess := session.FromContext(ctx)
	if token := sessionToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return ctx.Err()
		}
		log.Printf("backend: %s %s failed: %v", method, path, err)
		return fmt.Errorf("%w: %s %s: %v", ErrUnreachable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		if sess.Pinned() {
			log.Printf("backend: %s %s rejected the service token with %d", method, path, resp.StatusCode)
		} else {
			log.Printf("backend: %s %s rejected with %d, clearing session", method, path, resp.StatusCode)
			if err := sess.Clear(ctx); err != nil {
				log.Printf("backend: failed to clear session: %v", err)
			}
		}
		return fmt.Errorf("%w: %s %s returned %d", ErrUnauthorized, method, path, resp.StatusCode)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil {
			apiErr.Message = eb.Message
			if apiErr.Message == "" {
				apiErr.Message = eb.Error
			}
		}
		log.Printf("backend: %s %s returned %d: %s", method, path, resp.StatusCode, apiErr.Message)
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func sessionToken(ctx context.Context) string {
	token, err := session.FromContext(ctx).Token(ctx)
	if err != nil {
		return ""
	}
	return token
}

// tokenScope names the cache partition of results fetched with token, so
// a cached read is only served to a caller the backend already answered.
// Anonymous reads share the unscoped key.
func tokenScope(key, token string) string {
	if token == "" {
		return key
	}
	return cache.Key(key, "token-"+uuid.NewSHA1(uuid.NameSpaceOID, []byte(token)).String())
}

// cachedGet serves key from the cache, falling back to GET path
func (c *Client) cachedGet(ctx context.Context, key, path string, out any) error {
	key = tokenScope(key, sessionToken(ctx))
	if c.cache != nil {
		found, err := c.cache.Get(ctx, key, out)
		if err != nil {
			log.Printf("backend: cache read %s: %v", key, err)
		} else if found {
			return nil
		}
	}

	if err := c.do(ctx, http.MethodGet, path, nil, out); err != nil {
		return err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, out); err != nil {
			log.Printf("backend: cache write %s: %v", key, err)
		}
	}
	return nil
}

func (c *Client) invalidate(ctx context.Context, resources ...string) {
	if c.cache == nil {
		return
	}
	for _, r := range resources {
		if err := c.cache.Invalidate(ctx, r); err != nil {
			log.Printf("backend: cache invalidate %s: %v", r, err)
		}
	}
}

// Cache resource names
const (
	ResourceProperties   = "properties"
	ResourceCustomers    = "customers"
	ResourceReservations = "reservations"
	ResourcePayments     = "payments"
	ResourceReviews      = "reviews"
	ResourceAmenities    = "amenities"
	ResourceHome         = "home"
)

type idResponse struct {
	ID models.ID `json:"id"`
}
