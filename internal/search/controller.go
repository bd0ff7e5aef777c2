// Package search owns the query/pagination state machine behind the search
// screen: debounced title input, immediate author/language refetches, paged
// results and best-effort detail lookups. The controller absorbs remote
// failures into an error state instead of surfacing them to the renderer.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mrlokans/bookfinder/internal/catalog"
)

// State is the controller's lifecycle phase.
type State string

const (
	StateIdle       State = "idle"
	StateDebouncing State = "debouncing"
	StateFetching   State = "fetching"
	StateReady      State = "ready"
	StateError      State = "error"
)

// Catalog is the remote client surface the controller drives.
type Catalog interface {
	Search(ctx context.Context, q catalog.Query) (*catalog.ResultPage, error)
	WorkDetail(ctx context.Context, workKey string) (*catalog.WorkDetail, error)
	Ratings(ctx context.Context, workKey string) (*catalog.RatingSummary, error)
	Reviews(ctx context.Context, workKey string) ([]catalog.Review, error)
}

// Snapshot is the renderable view of the controller at one point in time.
type Snapshot struct {
	State      State
	TitleText  string
	AuthorText string
	Language   string
	Page       int
	TotalPages int
	Items      []catalog.BookSummary
	TotalFound int
}

// DetailView is the result of a detail lookup. Ratings and Reviews are
// best-effort and may be absent even when the work detail loaded.
type DetailView struct {
	Book    catalog.BookSummary
	Work    *catalog.WorkDetail
	Ratings *catalog.RatingSummary
	Reviews []catalog.Review
}

// Controller coordinates debounced querying, pagination and result state.
// Every in-flight request carries a sequence number; a response is dropped
// unless its sequence still matches, so a slow earlier response can never
// overwrite a newer one.
type Controller struct {
	mu sync.Mutex

	catalog  Catalog
	pageSize int
	debounce time.Duration

	state      State
	titleText  string
	authorText string
	language   string
	page       int
	items      []catalog.BookSummary
	totalFound int

	timer *time.Timer
	seq   uint64
}

// NewController creates an idle controller. PageSize and the debounce window
// come from the search configuration.
func NewController(cat Catalog, pageSize int, debounce time.Duration) *Controller {
	return &Controller{
		catalog:  cat,
		pageSize: pageSize,
		debounce: debounce,
		state:    StateIdle,
		page:     1,
	}
}

// SetTitle records a title keystroke. Each call restarts the debounce
// window and supersedes any in-flight request; only the text present when
// the window finally elapses triggers a fetch. Clearing the title
// short-circuits: results are dropped immediately and no request is made.
func (c *Controller) SetTitle(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.titleText = text
	if strings.TrimSpace(text) == "" {
		c.clearLocked(StateIdle)
		return
	}

	// An in-flight response must not land mid-window: it would flip the
	// state away from debouncing and starve the pending dispatch.
	c.seq++
	c.state = StateDebouncing
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, c.debounceElapsed)
}

func (c *Controller) debounceElapsed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateDebouncing {
		// A direct trigger or reset got there first.
		return
	}
	c.page = 1
	c.dispatchLocked()
}

// SetAuthor updates the author filter and refetches immediately from page 1,
// bypassing the debounce window.
func (c *Controller) SetAuthor(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authorText = text
	c.triggerLocked()
}

// SetLanguage updates the language filter and refetches immediately from
// page 1, bypassing the debounce window.
func (c *Controller) SetLanguage(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.language = code
	c.triggerLocked()
}

// Search is the explicit search trigger: fetch now from page 1 with the
// current query, bypassing the debounce window.
func (c *Controller) Search() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.triggerLocked()
}

func (c *Controller) triggerLocked() {
	if strings.TrimSpace(c.titleText) == "" {
		c.clearLocked(StateIdle)
		return
	}
	c.page = 1
	c.dispatchLocked()
}

// NextPage advances to the next page and refetches. A no-op past the last
// page.
func (c *Controller) NextPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page >= c.totalPagesLocked() {
		return
	}
	c.page++
	c.dispatchLocked()
}

// PreviousPage steps back one page and refetches. A no-op below page 1.
func (c *Controller) PreviousPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page <= 1 {
		return
	}
	c.page--
	c.dispatchLocked()
}

// Reset returns the controller to idle: query text, results and page are
// cleared. The language filter is kept.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.titleText = ""
	c.authorText = ""
	c.clearLocked(StateIdle)
}

// Snapshot returns a copy of the current view state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]catalog.BookSummary, len(c.items))
	copy(items, c.items)
	return Snapshot{
		State:      c.state,
		TitleText:  c.titleText,
		AuthorText: c.authorText,
		Language:   c.language,
		Page:       c.page,
		TotalPages: c.totalPagesLocked(),
		Items:      items,
		TotalFound: c.totalFound,
	}
}

// OpenDetails fetches the work detail for a result entry, then the rating
// summary and review list. The two secondary fetches are independent and
// fail silently; a work-detail failure is returned alongside the partial
// view but the view itself is always usable.
func (c *Controller) OpenDetails(ctx context.Context, book catalog.BookSummary) (*DetailView, error) {
	view := &DetailView{Book: book}
	if book.WorkKey == "" {
		return view, nil
	}

	work, err := c.catalog.WorkDetail(ctx, book.WorkKey)
	if err == nil {
		view.Work = work
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if ratings, rerr := c.catalog.Ratings(ctx, book.WorkKey); rerr == nil {
			view.Ratings = ratings
		}
	}()
	go func() {
		defer wg.Done()
		if reviews, rerr := c.catalog.Reviews(ctx, book.WorkKey); rerr == nil {
			view.Reviews = reviews
		}
	}()
	wg.Wait()

	return view, err
}

// clearLocked supersedes any in-flight request and drops results.
func (c *Controller) clearLocked(state State) {
	c.seq++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.items = nil
	c.totalFound = 0
	c.page = 1
	c.state = state
}

// dispatchLocked launches a fetch for the current query and page. The
// captured sequence number guards against stale responses.
func (c *Controller) dispatchLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.seq++
	seq := c.seq
	c.state = StateFetching

	q := catalog.Query{
		Title:    c.titleText,
		Author:   c.authorText,
		Language: c.language,
		Page:     c.page,
	}

	go func() {
		page, err := c.catalog.Search(context.Background(), q)

		c.mu.Lock()
		defer c.mu.Unlock()
		if seq != c.seq {
			// Superseded while in flight; drop the response.
			return
		}
		if err != nil {
			// Page resets with the cleared results so the pager never
			// points past the (now empty) result set.
			c.items = nil
			c.totalFound = 0
			c.page = 1
			c.state = StateError
			return
		}
		c.items = page.Items
		c.totalFound = page.TotalFound
		c.state = StateReady
	}()
}

func (c *Controller) totalPagesLocked() int {
	if c.totalFound <= 0 {
		return 1
	}
	pages := (c.totalFound + c.pageSize - 1) / c.pageSize
	if pages < 1 {
		return 1
	}
	return pages
}
