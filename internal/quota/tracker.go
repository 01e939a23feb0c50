package quota

import (
	"context"
	"sync"

	"tadoku-client/internal/models"

	"go.uber.org/zap"
)

// QuotaAPI is the slice of the gateway the tracker needs.
type QuotaAPI interface {
	GenerationStatus(ctx context.Context) (*models.GenerationStatus, error)
}

// Tracker mirrors the server-side daily generation limit as an advisory
// client-side gate. The snapshot is re-synchronized on view load because the
// daily reset happens on a server-side boundary the client does not compute.
// The server remains the authoritative enforcer: a stale snapshot can still
// run into a rate-limit rejection.
type Tracker struct {
	api    QuotaAPI
	logger *zap.Logger

	mu        sync.Mutex
	status    models.GenerationStatus
	refreshed bool
}

// NewTracker creates a quota tracker.
func NewTracker(api QuotaAPI, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		api:    api,
		logger: logger.Named("QuotaTracker"),
	}
}

// Refresh fetches the current generation status from the server.
func (t *Tracker) Refresh(ctx context.Context) error {
	status, err := t.api.GenerationStatus(ctx)
	if err != nil {
		t.logger.Warn("Failed to refresh generation status", zap.Error(err))
		return err
	}

	t.mu.Lock()
	t.status = *status
	t.refreshed = true
	t.mu.Unlock()

	t.logger.Debug("Generation status refreshed",
		zap.Int("currentCount", status.CurrentCount),
		zap.Int("limit", status.Limit))
	return nil
}

// CanGenerate reports whether the last-refreshed snapshot still allows
// generation. Before the first successful Refresh the gate fails closed.
func (t *Tracker) CanGenerate() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.refreshed && t.status.CanGenerate()
}

// RecordSuccess bumps the local counter by one after a confirmed successful
// generation, keeping the gate responsive between refreshes without a round
// trip.
func (t *Tracker) RecordSuccess() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.refreshed {
		return
	}
	t.status.CurrentCount++
	t.logger.Debug("Generation recorded locally", zap.Int("currentCount", t.status.CurrentCount))
}

// Status returns the last-refreshed snapshot and whether one exists.
func (t *Tracker) Status() (models.GenerationStatus, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status, t.refreshed
}
