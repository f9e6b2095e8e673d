package backend

import (
	"context"
	"fmt"
	"net/http"
)

// Credentials are an admin's sign-in details
type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", creds, &resp); err != nil {
		return "", fmt.Errorf("failed to sign in: %w", err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("failed to sign in: response has no token")
	}
	return resp.Token, nil
}
