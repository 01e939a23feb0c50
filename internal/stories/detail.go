package stories

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"tadoku-client/internal/models"

	"go.uber.org/zap"
)

// pendingAction - действие, ожидающее подтверждения пользователя.
type pendingAction int

const (
	pendingNone pendingAction = iota
	pendingMarkRead
	pendingUndoRead
)

// DetailAPI is the slice of the gateway the detail reconciler needs.
type DetailAPI interface {
	GetStory(ctx context.Context, id int) (*models.StoryDetail, error)
	UpdateStoryTitle(ctx context.Context, id int, title string) (*models.StoryDetail, error)
	MarkStoryRead(ctx context.Context, id int) error
	UndoLastRead(ctx context.Context, id int) error
}

// Detail keeps one story's local representation aligned with server-confirmed
// mutations: the editable title and the read counter. Read-mutating actions
// go through an Idle -> AwaitingConfirmation -> Submitting -> Idle machine:
// a first read executes immediately, a repeated read and every undo must be
// confirmed first. The counter changes only inside the success path of the
// confirmed call, never before dispatch.
type Detail struct {
	api    DetailAPI
	logger *zap.Logger

	mu         sync.Mutex
	story      *models.StoryDetail
	pending    pendingAction
	submitting bool
}

// NewDetail creates a reconciler for a single story-detail view.
func NewDetail(api DetailAPI, logger *zap.Logger) *Detail {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detail{
		api:    api,
		logger: logger.Named("StoryDetail"),
	}
}

// Load fetches the story detail. On failure the view holds no story and the
// error is terminal for this view until a Load succeeds.
func (d *Detail) Load(ctx context.Context, id int) error {
	detail, err := d.api.GetStory(ctx, id)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.story = nil
		d.pending = pendingNone
		d.logger.Warn("Failed to load story detail", zap.Int("storyID", id), zap.Error(err))
		return err
	}
	d.story = detail
	d.pending = pendingNone
	return nil
}

// Story returns a copy of the currently held detail, or nil before a
// successful Load.
func (d *Detail) Story() *models.StoryDetail {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.story == nil {
		return nil
	}
	cp := *d.story
	return &cp
}

// EditTitle sends a partial update for the title. An empty or whitespace-only
// title is rejected locally without a network call. On success the held title
// is replaced with the server-returned value, absorbing any server-side
// normalization.
func (d *Detail) EditTitle(ctx context.Context, title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title must not be empty", models.ErrInvalidInput)
	}

	d.mu.Lock()
	if d.story == nil {
		d.mu.Unlock()
		return models.ErrNotLoaded
	}
	id := d.story.ID
	d.mu.Unlock()

	updated, err := d.api.UpdateStoryTitle(ctx, id, title)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.story == nil || d.story.ID != id {
		// Представление сменилось, поздний ответ игнорируем.
		return nil
	}
	d.story.Title = updated.Title
	d.story.UpdatedAt = updated.UpdatedAt
	d.logger.Debug("Story title reconciled with server value", zap.Int("storyID", id))
	return nil
}

// MarkAsRead records one read event. A first read (read_count == 0) executes
// immediately; a repeated read is likely an accidental re-trigger, so it arms
// the confirmation gate and returns ErrConfirmationRequired instead of
// calling the server. While a submission is in flight any further
// read-mutating call is rejected.
func (d *Detail) MarkAsRead(ctx context.Context) error {
	d.mu.Lock()
	if d.submitting {
		d.mu.Unlock()
		return models.ErrSubmissionInFlight
	}
	if d.story == nil {
		d.mu.Unlock()
		return models.ErrNotLoaded
	}
	if d.story.ReadCount > 0 {
		d.pending = pendingMarkRead
		d.mu.Unlock()
		return models.ErrConfirmationRequired
	}
	d.mu.Unlock()

	return d.submitMarkRead(ctx)
}

// UndoLastRead removes the most recent read event. Undo is an irreversible
// removal of history, so it always requires confirmation. On a counter that
// is already zero it is a local no-op.
func (d *Detail) UndoLastRead(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.submitting {
		return models.ErrSubmissionInFlight
	}
	if d.story == nil {
		return models.ErrNotLoaded
	}
	if d.story.ReadCount == 0 {
		// Счетчик и так на нуле - отменять нечего.
		return nil
	}

	d.pending = pendingUndoRead
	return models.ErrConfirmationRequired
}

// Confirm executes the action armed by MarkAsRead or UndoLastRead.
func (d *Detail) Confirm(ctx context.Context) error {
	d.mu.Lock()
	if d.submitting {
		d.mu.Unlock()
		return models.ErrSubmissionInFlight
	}
	action := d.pending
	d.pending = pendingNone
	d.mu.Unlock()

	switch action {
	case pendingMarkRead:
		return d.submitMarkRead(ctx)
	case pendingUndoRead:
		return d.submitUndoRead(ctx)
	default:
		return models.ErrNothingToConfirm
	}
}

// Cancel disarms a pending confirmation, if any.
func (d *Detail) Cancel() {
	d.mu.Lock()
	d.pending = pendingNone
	d.mu.Unlock()
}

func (d *Detail) submitMarkRead(ctx context.Context) error {
	id, err := d.beginSubmission()
	if err != nil {
		return err
	}

	err = d.api.MarkStoryRead(ctx, id)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.submitting = false
	if err != nil {
		d.logger.Warn("Failed to mark story as read", zap.Int("storyID", id), zap.Error(err))
		return err
	}
	if d.story != nil && d.story.ID == id {
		d.story.ReadCount++
		d.logger.Debug("Read count incremented", zap.Int("storyID", id), zap.Int("readCount", d.story.ReadCount))
	}
	return nil
}

func (d *Detail) submitUndoRead(ctx context.Context) error {
	id, err := d.beginSubmission()
	if err != nil {
		return err
	}

	err = d.api.UndoLastRead(ctx, id)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.submitting = false
	if err != nil {
		d.logger.Warn("Failed to undo last read", zap.Int("storyID", id), zap.Error(err))
		return err
	}
	if d.story != nil && d.story.ID == id && d.story.ReadCount > 0 {
		d.story.ReadCount--
		d.logger.Debug("Read count decremented", zap.Int("storyID", id), zap.Int("readCount", d.story.ReadCount))
	}
	return nil
}

// beginSubmission поднимает флаг отправки. Второй вызов, пока первый не
// завершился, отклоняется - защита от двойного счета при быстрых повторных
// нажатиях.
func (d *Detail) beginSubmission() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.submitting {
		return 0, models.ErrSubmissionInFlight
	}
	if d.story == nil {
		return 0, models.ErrNotLoaded
	}
	d.submitting = true
	return d.story.ID, nil
}
