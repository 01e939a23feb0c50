package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"tadoku-client/internal/models"

	"go.uber.org/zap"
)

// SignUp registers a new account. Token issuance happens on the server; a
// successful signup is followed by a regular Login.
func (c *Client) SignUp(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", models.ErrInvalidInput)
	}

	req := models.SignupRequest{Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/signup", nil, req, nil); err != nil {
		return err
	}

	c.logger.Info("User signed up", zap.String("email", email))
	return nil
}

// Login exchanges credentials for a bearer token. The token is returned to
// the caller; persisting it is the session store's job.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", fmt.Errorf("%w: email and password are required", models.ErrInvalidInput)
	}

	req := models.LoginRequest{Email: email, Password: password}
	var resp models.TokenResponse
	if err := c.doJSON(ctx, http.MethodPost, "/login", nil, req, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("login response did not contain a token")
	}

	c.logger.Info("User logged in", zap.String("email", email))
	return resp.Token, nil
}
