package models

import (
	"errors"
	"fmt"
)

// Application-wide standard errors
var (
	// Validation (detected locally, never reaches the network)
	ErrInvalidInput = errors.New("invalid input data")

	// Authentication
	ErrUnauthorized = errors.New("unauthorized") // Missing, invalid or expired token
	ErrForbidden    = errors.New("forbidden")    // Authenticated, but lacks permission

	// Remote resource errors
	ErrNotFound       = errors.New("resource not found")
	ErrBadRequest     = errors.New("bad request")
	ErrRateLimited    = errors.New("daily generation limit reached")
	ErrInternalServer = errors.New("internal server error")

	// Transport
	ErrUnavailable = errors.New("service unavailable")

	// Local state machine errors
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrSubmissionInFlight   = errors.New("another submission is in flight")
	ErrDeleteNotRequested   = errors.New("no deletion was requested")
	ErrNothingToConfirm     = errors.New("no action awaiting confirmation")
	ErrNotLoaded            = errors.New("no data loaded yet")
)

// APIError описывает ошибку, возвращенную сервером. Оборачивает одну из
// стандартных ошибок выше, чтобы вызывающий код мог использовать errors.Is.
type APIError struct {
	StatusCode int
	Message    string // Human-readable message from the server, may be empty
	Err        error  // Sentinel the status code maps to
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Err.Error())
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// ErrorResponse - стандартная структура для ответа об ошибке в формате JSON.
type ErrorResponse struct {
	Error string `json:"error"`
}
