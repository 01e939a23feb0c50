package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"tadoku-client/internal/models"

	"go.uber.org/zap"
)

// ListStories fetches one page of the user's stories (server order,
// newest first).
func (c *Client) ListStories(ctx context.Context, page, limit int) (*models.StoryPage, error) {
	if page < 1 {
		page = 1
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var resp models.StoryListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/stories", query, nil, &resp); err != nil {
		return nil, err
	}

	// null в JSON не должен превращаться в nil-срез у вызывающего кода
	if resp.Stories == nil {
		resp.Stories = make([]models.Story, 0)
	}

	c.logger.Debug("Stories page retrieved", zap.Int("page", page), zap.Int("count", len(resp.Stories)), zap.Int("totalPages", resp.TotalPages))
	return &models.StoryPage{
		Stories:    resp.Stories,
		Page:       page,
		TotalPages: resp.TotalPages,
	}, nil
}

// GetStory fetches one story with its read counter.
func (c *Client) GetStory(ctx context.Context, id int) (*models.StoryDetail, error) {
	var resp models.StoryDetail
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/stories/%d", id), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateStory asks the server to generate a new story from the prompt. An
// empty prompt is rejected locally and never reaches the network. Quota
// exhaustion comes back as ErrRateLimited.
func (c *Client) GenerateStory(ctx context.Context, prompt string) (*models.Story, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("%w: prompt must not be empty", models.ErrInvalidInput)
	}

	var resp models.Story
	if err := c.doJSON(ctx, http.MethodPost, "/stories", nil, models.GenerateRequest{Prompt: prompt}, &resp); err != nil {
		return nil, err
	}

	c.logger.Info("Story generated", zap.Int("storyID", resp.ID))
	return &resp, nil
}

// UpdateStoryTitle sends a partial update for the story title and returns the
// server's version of the detail. The server is authoritative for the final
// title (it may normalize the string).
func (c *Client) UpdateStoryTitle(ctx context.Context, id int, title string) (*models.StoryDetail, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title must not be empty", models.ErrInvalidInput)
	}

	var resp models.StoryDetail
	if err := c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/stories/%d", id), nil, models.UpdateTitleRequest{Title: title}, &resp); err != nil {
		return nil, err
	}

	c.logger.Info("Story title updated", zap.Int("storyID", id))
	return &resp, nil
}

// DeleteStory deletes the story on the server. Deletion is irreversible
// server-side.
func (c *Client) DeleteStory(ctx context.Context, id int) error {
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/stories/%d", id), nil, nil, nil); err != nil {
		return err
	}
	c.logger.Info("Story deleted", zap.Int("storyID", id))
	return nil
}

// MarkStoryRead records one read event for the story.
func (c *Client) MarkStoryRead(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/stories/%d/read", id), nil, nil, nil)
}

// UndoLastRead removes the story's most recent read event.
func (c *Client) UndoLastRead(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/stories/%d/read/latest", id), nil, nil, nil)
}
