package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tadoku-client/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenSource supplies the current bearer token. An empty string means the
// request goes out unauthenticated (protected routes will answer 401).
type TokenSource interface {
	Token() string
}

// Client is the request gateway to the reading-practice API. Every outgoing
// call is decorated with the session credential and a request id; transport
// and status failures are normalized into the standard error set. The client
// performs no retries - retry policy, if any, belongs to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	tokens     TokenSource
}

// NewClient creates a gateway for the API at baseURL (without the /api/v1
// suffix, it is appended here).
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource, logger *zap.Logger) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL for tadoku api: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/") + "/api/v1",
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.Named("APIClient"),
		tokens: tokens,
	}, nil
}

// doJSON выполняет один запрос: сериализует body (если есть), добавляет
// заголовки и токен, разбирает ответ в out (если есть).
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	log := c.logger.With(zap.String("method", method), zap.String("url", reqURL))

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			log.Error("Failed to marshal request body", zap.Error(err))
			return fmt.Errorf("internal error creating request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		log.Error("Failed to create HTTP request", zap.Error(err))
		return fmt.Errorf("internal error creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	// Пустой токен означает неаутентифицированный запрос - заголовок не ставим.
	if token := c.tokens.Token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	log.Debug("Sending request to tadoku api")
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Error("HTTP request failed", zap.Error(err))
		return fmt.Errorf("%w: %v", models.ErrUnavailable, err)
	}
	defer httpResp.Body.Close()

	respBodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.Int("status", httpResp.StatusCode), zap.Error(err))
		return fmt.Errorf("failed to read tadoku api response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		log.Warn("Received error status from tadoku api",
			zap.Int("status", httpResp.StatusCode),
			zap.ByteString("body", respBodyBytes))
		return newAPIError(httpResp.StatusCode, respBodyBytes)
	}

	if out != nil && len(respBodyBytes) > 0 {
		if err := json.Unmarshal(respBodyBytes, out); err != nil {
			log.Error("Failed to unmarshal response", zap.Int("status", httpResp.StatusCode), zap.ByteString("body", respBodyBytes), zap.Error(err))
			return fmt.Errorf("invalid response format from tadoku api: %w", err)
		}
	}

	return nil
}

// newAPIError переводит статус ответа в стандартную ошибку, сохраняя
// серверное сообщение, если его удалось разобрать.
func newAPIError(statusCode int, body []byte) error {
	var errResp models.ErrorResponse
	if len(body) > 0 {
		// Тело может быть не JSON (например, от прокси) - тогда просто без сообщения.
		_ = json.Unmarshal(body, &errResp)
	}

	var sentinel error
	switch {
	case statusCode == http.StatusUnauthorized:
		sentinel = models.ErrUnauthorized
	case statusCode == http.StatusForbidden:
		sentinel = models.ErrForbidden
	case statusCode == http.StatusNotFound:
		sentinel = models.ErrNotFound
	case statusCode == http.StatusTooManyRequests:
		sentinel = models.ErrRateLimited
	case statusCode >= 500:
		sentinel = models.ErrInternalServer
	default:
		sentinel = models.ErrBadRequest
	}

	return &models.APIError{
		StatusCode: statusCode,
		Message:    errResp.Error,
		Err:        sentinel,
	}
}
