package stories

import (
	"context"
	"fmt"
	"sync"

	"tadoku-client/internal/models"

	"go.uber.org/zap"
)

// CollectionState описывает состояние текущего просмотра страницы.
type CollectionState int

const (
	CollectionIdle CollectionState = iota
	CollectionLoading
	CollectionLoaded
	CollectionFailed
)

// CollectionAPI is the slice of the gateway the collection manager needs.
type CollectionAPI interface {
	ListStories(ctx context.Context, page, limit int) (*models.StoryPage, error)
	DeleteStory(ctx context.Context, id int) error
}

// Collection owns the paginated view of the user's stories. Loads replace the
// in-memory page only on success; a failed load keeps the previous (possibly
// stale) page displayable. Deletion is two-phase: RequestDelete records
// intent, ConfirmDelete performs the call, and the item is removed from the
// local page only after the server acknowledged the deletion.
type Collection struct {
	api      CollectionAPI
	logger   *zap.Logger
	pageSize int

	mu            sync.Mutex
	state         CollectionState
	page          *models.StoryPage
	pendingDelete int // 0 = нет запрошенного удаления
	loadGen       uint64
}

// NewCollection creates a collection manager with the given page size.
func NewCollection(api CollectionAPI, pageSize int, logger *zap.Logger) *Collection {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Collection{
		api:      api,
		logger:   logger.Named("StoryCollection"),
		pageSize: pageSize,
	}
}

// Load fetches one page. On failure the previously loaded page is retained.
// A response that arrives for a load superseded by a newer one is discarded.
func (c *Collection) Load(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}

	c.mu.Lock()
	c.state = CollectionLoading
	c.loadGen++
	gen := c.loadGen
	pageSize := c.pageSize
	c.mu.Unlock()

	sp, err := c.api.ListStories(ctx, page, pageSize)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.loadGen {
		// Этот просмотр уже неинтересен - пришел более новый запрос.
		c.logger.Debug("Discarding late page response", zap.Int("page", page))
		return nil
	}

	if err != nil {
		c.state = CollectionFailed
		c.logger.Warn("Failed to load stories page", zap.Int("page", page), zap.Error(err))
		return err
	}

	c.state = CollectionLoaded
	c.page = sp
	c.logger.Debug("Stories page loaded", zap.Int("page", sp.Page), zap.Int("count", len(sp.Stories)))
	return nil
}

// InsertGenerated makes a freshly generated story visible. The story is a
// server-confirmed creation result, so when the first page is on display it
// is simply prepended without a round trip. On any other page the correct
// position of the new story is unknown locally, so page 1 is re-requested
// instead.
func (c *Collection) InsertGenerated(ctx context.Context, story models.Story) error {
	c.mu.Lock()
	if c.page != nil && c.page.Page == 1 {
		stories := make([]models.Story, 0, len(c.page.Stories)+1)
		stories = append(stories, story)
		stories = append(stories, c.page.Stories...)
		c.page.Stories = stories
		c.mu.Unlock()
		c.logger.Debug("Generated story prepended to first page", zap.Int("storyID", story.ID))
		return nil
	}
	c.mu.Unlock()

	c.logger.Debug("Not on first page, reloading page 1 after generation", zap.Int("storyID", story.ID))
	return c.Load(ctx, 1)
}

// RequestDelete records the intent to delete a story. The list is not
// touched; the deletion only happens via ConfirmDelete.
func (c *Collection) RequestDelete(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.page == nil {
		return models.ErrNotLoaded
	}
	found := false
	for _, s := range c.page.Stories {
		if s.ID == id {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: story %d is not on the current page", models.ErrNotFound, id)
	}

	c.pendingDelete = id
	return nil
}

// CancelDelete drops a previously recorded deletion intent.
func (c *Collection) CancelDelete() {
	c.mu.Lock()
	c.pendingDelete = 0
	c.mu.Unlock()
}

// ConfirmDelete issues the deletion call for the story recorded by
// RequestDelete. Only after the server confirms is the item removed from the
// in-memory page; on failure the list stays intact and the error surfaces.
// Note that total_pages is not refreshed here, so pagination metadata can go
// stale after a delete; callers that care should Load the page again.
func (c *Collection) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	id := c.pendingDelete
	c.pendingDelete = 0
	c.mu.Unlock()

	if id == 0 {
		return models.ErrDeleteNotRequested
	}

	if err := c.api.DeleteStory(ctx, id); err != nil {
		c.logger.Warn("Story deletion failed, keeping item", zap.Int("storyID", id), zap.Error(err))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page == nil {
		return nil
	}
	stories := c.page.Stories[:0]
	for _, s := range c.page.Stories {
		if s.ID != id {
			stories = append(stories, s)
		}
	}
	c.page.Stories = stories
	c.logger.Info("Story removed from local page after confirmed deletion", zap.Int("storyID", id))
	return nil
}

// State returns the current page-view state.
func (c *Collection) State() CollectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Page returns the currently held page, which may be stale after a failed
// load. Nil when nothing was ever loaded.
func (c *Collection) Page() *models.StoryPage {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page == nil {
		return nil
	}
	cp := *c.page
	cp.Stories = append([]models.Story(nil), c.page.Stories...)
	return &cp
}
