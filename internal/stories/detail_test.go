package stories

import (
	"context"
	"sync"
	"testing"

	"tadoku-client/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDetailAPI struct {
	getStory    func(ctx context.Context, id int) (*models.StoryDetail, error)
	updateTitle func(ctx context.Context, id int, title string) (*models.StoryDetail, error)
	markRead    func(ctx context.Context, id int) error
	undoRead    func(ctx context.Context, id int) error

	updateCalls int
	markCalls   int
	undoCalls   int
}

func (f *fakeDetailAPI) GetStory(ctx context.Context, id int) (*models.StoryDetail, error) {
	return f.getStory(ctx, id)
}

func (f *fakeDetailAPI) UpdateStoryTitle(ctx context.Context, id int, title string) (*models.StoryDetail, error) {
	f.updateCalls++
	return f.updateTitle(ctx, id, title)
}

func (f *fakeDetailAPI) MarkStoryRead(ctx context.Context, id int) error {
	f.markCalls++
	return f.markRead(ctx, id)
}

func (f *fakeDetailAPI) UndoLastRead(ctx context.Context, id int) error {
	f.undoCalls++
	return f.undoRead(ctx, id)
}

func detailWithReadCount(readCount int) func(ctx context.Context, id int) (*models.StoryDetail, error) {
	return func(ctx context.Context, id int) (*models.StoryDetail, error) {
		return &models.StoryDetail{
			Story:     models.Story{ID: id, Title: "The Mysterious Forest"},
			ReadCount: readCount,
		}, nil
	}
}

func TestEditTitleRejectsBlankLocally(t *testing.T) {
	fake := &fakeDetailAPI{
		getStory: detailWithReadCount(0),
		updateTitle: func(ctx context.Context, id int, title string) (*models.StoryDetail, error) {
			return nil, models.ErrInvalidInput
		},
	}
	d := NewDetail(fake, nil)
	require.NoError(t, d.Load(context.Background(), 7))

	for _, title := range []string{"", "   "} {
		err := d.EditTitle(context.Background(), title)
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	}
	assert.Zero(t, fake.updateCalls, "a blank title must never issue a network call")
	assert.Equal(t, "The Mysterious Forest", d.Story().Title)
}

func TestEditTitleAdoptsServerValue(t *testing.T) {
	fake := &fakeDetailAPI{
		getStory: detailWithReadCount(0),
		updateTitle: func(ctx context.Context, id int, title string) (*models.StoryDetail, error) {
			// Сервер нормализовал строку.
			return &models.StoryDetail{Story: models.Story{ID: id, Title: "Normalized Title"}}, nil
		},
	}
	d := NewDetail(fake, nil)
	require.NoError(t, d.Load(context.Background(), 7))

	require.NoError(t, d.EditTitle(context.Background(), "normalized   title"))
	assert.Equal(t, "Normalized Title", d.Story().Title, "the server is authoritative for the final title")
}

func TestFirstReadNeedsNoConfirmation(t *testing.T) {
	fake := &fakeDetailAPI{
		getStory: detailWithReadCount(0),
		markRead: func(ctx context.Context, id int) error { return nil },
	}
	d := NewDetail(fake, nil)
	require.NoError(t, d.Load(context.Background(), 7))

	require.NoError(t, d.MarkAsRead(context.Background()))
	assert.Equal(t, 1, fake.markCalls)
	assert.Equal(t, 1, d.Story().ReadCount)
}

func TestRepeatedReadIsGated(t *testing.T) {
	fake := &fakeDetailAPI{
		getStory: detailWithReadCount(2),
		markRead: func(ctx context.Context, id int) error { return nil },
	}
	d := NewDetail(fake, nil)
	require.NoError(t, d.Load(context.Background(), 7))

	err := d.MarkAsRead(context.Background())
	assert.ErrorIs(t, err, models.ErrConfirmationRequired)
	assert.Zero(t, fake.markCalls, "the call must wait for confirmation")
	assert.Equal(t, 2, d.Story().ReadCount)

	require.NoError(t, d.Confirm(context.Background()))
	assert.Equal(t, 1, fake.markCalls)
	assert.Equal(t, 3, d.Story().ReadCount)
}

func TestCancelDisarmsConfirmation(t *testing.T) {
	fake := &fakeDetailAPI{
		getStory: detailWithReadCount(1),
		markRead: func(ctx context.Context, id int) error { return nil },
	}
	d := NewDetail(fake, nil)
	require.NoError(t, d.Load(context.Background(), 7))

	assert.ErrorIs(t, d.MarkAsRead(context.Background()), models.ErrConfirmationRequired)
	d.Cancel()

	err := d.Confirm(context.Background())
	assert.ErrorIs(t, err, models.ErrNothingToConfirm)
	assert.Zero(t, fake.markCalls)
}

func TestUndoAlwaysRequiresConfirmation(t *testing.T) {
	fake := &fakeDetailAPI{
		getStory: detailWithReadCount(1),
		undoRead: func(ctx context.Context, id int) error { return nil },
	}
	d := NewDetail(fake, nil)
	require.NoError(t, d.Load(context.Background(), 7))

	err := d.UndoLastRead(context.Background())
	assert.ErrorIs(t, err, models.ErrConfirmationRequired)
	assert.Zero(t, fake.undoCalls)

	require.NoError(t, d.Confirm(context.Background()))
	assert.Equal(t, 1, fake.undoCalls)
	assert.Equal(t, 0, d.Story().ReadCount)
}

func TestUndoOnZeroIsClampedNoOp(t *testing.T) {
	fake := &fakeDetailAPI{
		getStory: detailWithReadCount(0),
		undoRead: func(ctx context.Context, id int) error { return nil },
	}
	d := NewDetail(fake, nil)
	require.NoError(t, d.Load(context.Background(), 7))

	require.NoError(t, d.UndoLastRead(context.Background()))
	assert.Zero(t, fake.undoCalls, "nothing to undo, nothing to send")
	assert.Equal(t, 0, d.Story().ReadCount, "the counter never goes negative")
}

func TestSubmissionFlagRejectsOverlappingCalls(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	fake := &fakeDetailAPI{
		getStory: detailWithReadCount(0),
		markRead: func(ctx context.Context, id int) error {
			close(entered)
			<-release
			return nil
		},
	}
	d := NewDetail(fake, nil)
	require.NoError(t, d.Load(context.Background(), 7))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, d.MarkAsRead(context.Background()))
	}()

	<-entered
	// Пока первая отправка висит в сети, вторая отклоняется.
	err := d.MarkAsRead(context.Background())
	assert.ErrorIs(t, err, models.ErrSubmissionInFlight)

	close(release)
	wg.Wait()
	assert.Equal(t, 1, fake.markCalls)
	assert.Equal(t, 1, d.Story().ReadCount, "no double counting from rapid re-triggers")
}

func TestFailedReadLeavesCounterUntouched(t *testing.T) {
	fake := &fakeDetailAPI{
		getStory: detailWithReadCount(0),
		markRead: func(ctx context.Context, id int) error {
			return &models.APIError{StatusCode: 500, Err: models.ErrInternalServer}
		},
	}
	d := NewDetail(fake, nil)
	require.NoError(t, d.Load(context.Background(), 7))

	err := d.MarkAsRead(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, d.Story().ReadCount, "the counter only moves on a confirmed response")

	// Флаг отправки должен быть снят - следующая попытка проходит.
	fake.markRead = func(ctx context.Context, id int) error { return nil }
	require.NoError(t, d.MarkAsRead(context.Background()))
	assert.Equal(t, 1, d.Story().ReadCount)
}
