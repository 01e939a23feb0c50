package api

import (
	"context"
	"net/http"

	"tadoku-client/internal/models"
)

// GenerationStatus fetches the current daily generation counter and limit.
func (c *Client) GenerationStatus(ctx context.Context) (*models.GenerationStatus, error) {
	var resp models.GenerationStatus
	if err := c.doJSON(ctx, http.MethodGet, "/users/me/generation-status", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UserStats fetches the aggregate word-count statistics for the current user.
func (c *Client) UserStats(ctx context.Context) (*models.UserStats, error) {
	var resp models.UserStats
	if err := c.doJSON(ctx, http.MethodGet, "/users/me/stats", nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Last7DaysWordCount == nil {
		resp.Last7DaysWordCount = make(map[string]int)
	}
	return &resp, nil
}
