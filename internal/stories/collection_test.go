package stories

import (
	"context"
	"errors"
	"testing"

	"tadoku-client/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCollectionAPI struct {
	listStories func(ctx context.Context, page, limit int) (*models.StoryPage, error)
	deleteStory func(ctx context.Context, id int) error
	listCalls   int
	deleteCalls int
}

func (f *fakeCollectionAPI) ListStories(ctx context.Context, page, limit int) (*models.StoryPage, error) {
	f.listCalls++
	return f.listStories(ctx, page, limit)
}

func (f *fakeCollectionAPI) DeleteStory(ctx context.Context, id int) error {
	f.deleteCalls++
	return f.deleteStory(ctx, id)
}

func fiveStoriesPage(page int) *models.StoryPage {
	return &models.StoryPage{
		Stories: []models.Story{
			{ID: 9, Title: "Ninth"},
			{ID: 8, Title: "Eighth"},
			{ID: 7, Title: "Seventh"},
			{ID: 6, Title: "Sixth"},
			{ID: 5, Title: "Fifth"},
		},
		Page:       page,
		TotalPages: 3,
	}
}

func TestConfirmedDeleteRemovesItemLocally(t *testing.T) {
	fake := &fakeCollectionAPI{
		listStories: func(ctx context.Context, page, limit int) (*models.StoryPage, error) {
			return fiveStoriesPage(page), nil
		},
		deleteStory: func(ctx context.Context, id int) error {
			assert.Equal(t, 7, id)
			return nil
		},
	}
	c := NewCollection(fake, 5, nil)
	require.NoError(t, c.Load(context.Background(), 1))

	require.NoError(t, c.RequestDelete(7))
	require.NoError(t, c.ConfirmDelete(context.Background()))

	page := c.Page()
	require.NotNil(t, page)
	assert.Len(t, page.Stories, 4)
	for _, s := range page.Stories {
		assert.NotEqual(t, 7, s.ID, "deleted story must not remain on the page")
	}
}

func TestFailedDeleteRetainsItem(t *testing.T) {
	fake := &fakeCollectionAPI{
		listStories: func(ctx context.Context, page, limit int) (*models.StoryPage, error) {
			return fiveStoriesPage(page), nil
		},
		deleteStory: func(ctx context.Context, id int) error {
			return &models.APIError{StatusCode: 500, Err: models.ErrInternalServer}
		},
	}
	c := NewCollection(fake, 5, nil)
	require.NoError(t, c.Load(context.Background(), 1))

	require.NoError(t, c.RequestDelete(7))
	err := c.ConfirmDelete(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInternalServer)

	// Список не тронут - удаление применяется только после подтверждения сервера.
	page := c.Page()
	require.NotNil(t, page)
	assert.Len(t, page.Stories, 5)
}

func TestRequestDeleteIsTwoPhase(t *testing.T) {
	fake := &fakeCollectionAPI{
		listStories: func(ctx context.Context, page, limit int) (*models.StoryPage, error) {
			return fiveStoriesPage(page), nil
		},
		deleteStory: func(ctx context.Context, id int) error { return nil },
	}
	c := NewCollection(fake, 5, nil)
	require.NoError(t, c.Load(context.Background(), 1))

	// Фаза 1 только записывает намерение.
	require.NoError(t, c.RequestDelete(7))
	assert.Zero(t, fake.deleteCalls, "RequestDelete must not call the server")
	assert.Len(t, c.Page().Stories, 5, "RequestDelete must not touch the list")

	// Отмена сбрасывает намерение.
	c.CancelDelete()
	err := c.ConfirmDelete(context.Background())
	assert.ErrorIs(t, err, models.ErrDeleteNotRequested)
	assert.Zero(t, fake.deleteCalls)
}

func TestRequestDeleteUnknownStory(t *testing.T) {
	fake := &fakeCollectionAPI{
		listStories: func(ctx context.Context, page, limit int) (*models.StoryPage, error) {
			return fiveStoriesPage(page), nil
		},
	}
	c := NewCollection(fake, 5, nil)
	require.NoError(t, c.Load(context.Background(), 1))

	err := c.RequestDelete(999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestInsertGeneratedPrependsOnFirstPage(t *testing.T) {
	fake := &fakeCollectionAPI{
		listStories: func(ctx context.Context, page, limit int) (*models.StoryPage, error) {
			return fiveStoriesPage(page), nil
		},
	}
	c := NewCollection(fake, 5, nil)
	require.NoError(t, c.Load(context.Background(), 1))
	require.Equal(t, 1, fake.listCalls)

	require.NoError(t, c.InsertGenerated(context.Background(), models.Story{ID: 10, Title: "Tenth"}))

	assert.Equal(t, 1, fake.listCalls, "a prepend on page 1 needs no round trip")
	page := c.Page()
	require.NotEmpty(t, page.Stories)
	assert.Equal(t, 10, page.Stories[0].ID, "the new story goes to the top")
	assert.Len(t, page.Stories, 6)
}

func TestInsertGeneratedReloadsFirstPageFromOtherPages(t *testing.T) {
	var lastRequestedPage int
	fake := &fakeCollectionAPI{
		listStories: func(ctx context.Context, page, limit int) (*models.StoryPage, error) {
			lastRequestedPage = page
			return fiveStoriesPage(page), nil
		},
	}
	c := NewCollection(fake, 5, nil)
	require.NoError(t, c.Load(context.Background(), 2))

	require.NoError(t, c.InsertGenerated(context.Background(), models.Story{ID: 10}))

	// Со второй страницы локальная вставка дала бы неверный порядок - вместо
	// этого перезапрашивается первая страница.
	assert.Equal(t, 2, fake.listCalls)
	assert.Equal(t, 1, lastRequestedPage)
	assert.Equal(t, 1, c.Page().Page)
}

func TestFailedLoadRetainsPreviousPage(t *testing.T) {
	failNext := false
	fake := &fakeCollectionAPI{
		listStories: func(ctx context.Context, page, limit int) (*models.StoryPage, error) {
			if failNext {
				return nil, errors.New("connection refused")
			}
			return fiveStoriesPage(page), nil
		},
	}
	c := NewCollection(fake, 5, nil)
	require.NoError(t, c.Load(context.Background(), 1))

	failNext = true
	err := c.Load(context.Background(), 2)
	require.Error(t, err)

	assert.Equal(t, CollectionFailed, c.State())
	page := c.Page()
	require.NotNil(t, page, "the stale page stays displayable after a failed load")
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Stories, 5)
}
