package search

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookfinder/internal/catalog"
)

// fakeCatalog records queries and serves one synthetic result per title,
// with optional per-title response delays to simulate slow requests.
type fakeCatalog struct {
	mu         sync.Mutex
	calls      []catalog.Query
	delays     map[string]time.Duration
	totalFound int
	failSearch bool

	workDetail *catalog.WorkDetail
	workErr    error
	ratings    *catalog.RatingSummary
	ratingsErr error
	reviews    []catalog.Review
	reviewsErr error
}

func (f *fakeCatalog) Search(ctx context.Context, q catalog.Query) (*catalog.ResultPage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	delay := f.delays[q.Title]
	fail := f.failSearch
	total := f.totalFound
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if fail {
		return nil, &catalog.TransportError{StatusCode: 500}
	}
	return &catalog.ResultPage{
		Items:      []catalog.BookSummary{{WorkKey: "/works/" + q.Title, Title: q.Title}},
		TotalFound: total,
		PageNumber: q.Page,
	}, nil
}

func (f *fakeCatalog) WorkDetail(ctx context.Context, workKey string) (*catalog.WorkDetail, error) {
	return f.workDetail, f.workErr
}

func (f *fakeCatalog) Ratings(ctx context.Context, workKey string) (*catalog.RatingSummary, error) {
	return f.ratings, f.ratingsErr
}

func (f *fakeCatalog) Reviews(ctx context.Context, workKey string) ([]catalog.Review, error) {
	return f.reviews, f.reviewsErr
}

func (f *fakeCatalog) queries() []catalog.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]catalog.Query, len(f.calls))
	copy(out, f.calls)
	return out
}

func waitForState(t *testing.T, c *Controller, state State) Snapshot {
	t.Helper()
	var snap Snapshot
	require.Eventually(t, func() bool {
		snap = c.Snapshot()
		return snap.State == state
	}, 2*time.Second, 5*time.Millisecond, "controller never reached state %q", state)
	return snap
}

func TestController_DebounceFiresOnceWithFinalText(t *testing.T) {
	fake := &fakeCatalog{totalFound: 1}
	c := NewController(fake, 20, 80*time.Millisecond)

	for _, text := range []string{"D", "Du", "Dun", "Dune"} {
		c.SetTitle(text)
		assert.Equal(t, StateDebouncing, c.Snapshot().State)
		time.Sleep(15 * time.Millisecond) // well inside the window
	}

	snap := waitForState(t, c, StateReady)
	assert.Equal(t, "Dune", snap.TitleText)

	queries := fake.queries()
	require.Len(t, queries, 1)
	assert.Equal(t, "Dune", queries[0].Title)
	assert.Equal(t, 1, queries[0].Page)
}

func TestController_EmptyTitleShortCircuits(t *testing.T) {
	fake := &fakeCatalog{totalFound: 45}
	c := NewController(fake, 20, 10*time.Millisecond)

	c.SetTitle("Dune")
	waitForState(t, c, StateReady)

	c.SetTitle("")

	// Cleared immediately, without waiting for any timer or response.
	snap := c.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, snap.Items)
	assert.Zero(t, snap.TotalFound)
	assert.Equal(t, 1, snap.Page)

	time.Sleep(50 * time.Millisecond)
	assert.Len(t, fake.queries(), 1) // no extra network call
}

func TestController_AuthorChangeBypassesDebounce(t *testing.T) {
	fake := &fakeCatalog{totalFound: 45}
	c := NewController(fake, 20, 10*time.Millisecond)

	c.SetTitle("Dune")
	waitForState(t, c, StateReady)
	c.NextPage()
	waitForState(t, c, StateReady)

	c.SetAuthor("Herbert")
	snap := waitForState(t, c, StateReady)
	assert.Equal(t, 1, snap.Page) // reset to the first page

	queries := fake.queries()
	require.Len(t, queries, 3)
	assert.Equal(t, "Herbert", queries[2].Author)
	assert.Equal(t, 1, queries[2].Page)
}

func TestController_LanguageChangeRefetches(t *testing.T) {
	fake := &fakeCatalog{totalFound: 1}
	c := NewController(fake, 20, 10*time.Millisecond)

	c.SetTitle("Dune")
	waitForState(t, c, StateReady)

	c.SetLanguage("tam")
	waitForState(t, c, StateReady)

	queries := fake.queries()
	require.Len(t, queries, 2)
	assert.Equal(t, "tam", queries[1].Language)
}

func TestController_LanguageChangeWithoutTitleStaysIdle(t *testing.T) {
	fake := &fakeCatalog{}
	c := NewController(fake, 20, 10*time.Millisecond)

	c.SetLanguage("tam")

	assert.Equal(t, StateIdle, c.Snapshot().State)
	assert.Empty(t, fake.queries())
}

func TestController_PaginationBounds(t *testing.T) {
	fake := &fakeCatalog{totalFound: 45}
	c := NewController(fake, 20, 10*time.Millisecond)

	c.SetTitle("Dune")
	snap := waitForState(t, c, StateReady)
	assert.Equal(t, 3, snap.TotalPages) // ceil(45/20)

	c.NextPage()
	snap = waitForState(t, c, StateReady)
	assert.Equal(t, 2, snap.Page)

	c.NextPage()
	snap = waitForState(t, c, StateReady)
	assert.Equal(t, 3, snap.Page)

	// Past the last page: no-op, no request.
	before := len(fake.queries())
	c.NextPage()
	time.Sleep(30 * time.Millisecond)
	snap = c.Snapshot()
	assert.Equal(t, 3, snap.Page)
	assert.Len(t, fake.queries(), before)

	c.PreviousPage()
	snap = waitForState(t, c, StateReady)
	assert.Equal(t, 2, snap.Page)
	c.PreviousPage()
	snap = waitForState(t, c, StateReady)
	assert.Equal(t, 1, snap.Page)

	// Below page 1: no-op, no request.
	before = len(fake.queries())
	c.PreviousPage()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, c.Snapshot().Page)
	assert.Len(t, fake.queries(), before)
}

func TestController_StaleResponseNeverOverwritesNewer(t *testing.T) {
	fake := &fakeCatalog{
		totalFound: 1,
		delays: map[string]time.Duration{
			"Dune":       150 * time.Millisecond,
			"Foundation": 5 * time.Millisecond,
		},
	}
	c := NewController(fake, 20, 20*time.Millisecond)

	c.SetTitle("Dune")
	time.Sleep(50 * time.Millisecond) // debounce elapsed, slow request in flight

	c.SetTitle("Foundation")
	snap := waitForState(t, c, StateReady)
	require.NotEmpty(t, snap.Items)
	assert.Equal(t, "Foundation", snap.Items[0].Title)

	// Let the slow Dune response arrive; it must be dropped.
	time.Sleep(200 * time.Millisecond)
	snap = c.Snapshot()
	assert.Equal(t, StateReady, snap.State)
	require.NotEmpty(t, snap.Items)
	assert.Equal(t, "Foundation", snap.Items[0].Title)
}

func TestController_EditDuringFlightSupersedesAndRefetches(t *testing.T) {
	fake := &fakeCatalog{
		totalFound: 1,
		delays:     map[string]time.Duration{"Dune": 150 * time.Millisecond},
	}
	c := NewController(fake, 20, 20*time.Millisecond)

	c.SetTitle("Dune")
	time.Sleep(50 * time.Millisecond) // debounce elapsed, slow request in flight
	require.Equal(t, StateFetching, c.Snapshot().State)

	// Typing while the request is in flight must still debounce and fetch
	// the new text; the old response must not satisfy the new query.
	c.SetTitle("Dune Messiah")
	assert.Equal(t, StateDebouncing, c.Snapshot().State)

	snap := waitForState(t, c, StateReady)
	require.NotEmpty(t, snap.Items)
	assert.Equal(t, "Dune Messiah", snap.Items[0].Title)

	queries := fake.queries()
	require.Len(t, queries, 2)
	assert.Equal(t, "Dune Messiah", queries[1].Title)

	// The slow Dune response arrives after the fact and is dropped.
	time.Sleep(200 * time.Millisecond)
	snap = c.Snapshot()
	require.NotEmpty(t, snap.Items)
	assert.Equal(t, "Dune Messiah", snap.Items[0].Title)
}

func TestController_TransportFailureBecomesErrorState(t *testing.T) {
	fake := &fakeCatalog{failSearch: true}
	c := NewController(fake, 20, 10*time.Millisecond)

	c.SetTitle("Dune")
	snap := waitForState(t, c, StateError)
	assert.Empty(t, snap.Items)
	assert.Zero(t, snap.TotalFound)

	// Typing again recovers from the error state.
	fake.mu.Lock()
	fake.failSearch = false
	fake.totalFound = 1
	fake.mu.Unlock()

	c.SetTitle("Dune II")
	waitForState(t, c, StateReady)
}

func TestController_TransportFailureResetsPage(t *testing.T) {
	fake := &fakeCatalog{totalFound: 45}
	c := NewController(fake, 20, 10*time.Millisecond)

	c.SetTitle("Dune")
	waitForState(t, c, StateReady)
	c.NextPage()
	waitForState(t, c, StateReady)

	fake.mu.Lock()
	fake.failSearch = true
	fake.mu.Unlock()

	c.NextPage()
	snap := waitForState(t, c, StateError)

	// The pager must agree with the empty result set.
	assert.Equal(t, 1, snap.Page)
	assert.Equal(t, 1, snap.TotalPages)
}

func TestController_Reset(t *testing.T) {
	fake := &fakeCatalog{totalFound: 45}
	c := NewController(fake, 20, 10*time.Millisecond)

	c.SetTitle("Dune")
	c.SetAuthor("Herbert")
	waitForState(t, c, StateReady)
	c.NextPage()
	waitForState(t, c, StateReady)

	c.Reset()

	snap := c.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, snap.TitleText)
	assert.Empty(t, snap.AuthorText)
	assert.Empty(t, snap.Items)
	assert.Zero(t, snap.TotalFound)
	assert.Equal(t, 1, snap.Page)
}

func TestController_ExplicitSearchBypassesDebounce(t *testing.T) {
	fake := &fakeCatalog{totalFound: 1}
	c := NewController(fake, 20, 10*time.Minute) // window long enough to never elapse

	c.SetTitle("Dune")
	assert.Equal(t, StateDebouncing, c.Snapshot().State)

	c.Search()
	waitForState(t, c, StateReady)

	queries := fake.queries()
	require.Len(t, queries, 1)
	assert.Equal(t, "Dune", queries[0].Title)
}

func TestController_OpenDetails(t *testing.T) {
	fake := &fakeCatalog{
		workDetail: &catalog.WorkDetail{Description: "A desert planet."},
		ratings:    &catalog.RatingSummary{Average: 4.2, Count: 10},
		reviews:    []catalog.Review{{Author: "Reader", Text: "Loved it"}},
	}
	c := NewController(fake, 20, 10*time.Millisecond)

	view, err := c.OpenDetails(context.Background(), catalog.BookSummary{WorkKey: "/works/OL1W", Title: "Dune"})
	require.NoError(t, err)
	require.NotNil(t, view.Work)
	assert.Equal(t, "A desert planet.", view.Work.Description)
	require.NotNil(t, view.Ratings)
	assert.Equal(t, 4.2, view.Ratings.Average)
	require.Len(t, view.Reviews, 1)
}

func TestController_OpenDetails_SecondaryFailuresAreSilent(t *testing.T) {
	fake := &fakeCatalog{
		workDetail: &catalog.WorkDetail{Description: "A desert planet."},
		ratingsErr: &catalog.TransportError{StatusCode: 500},
		reviews:    []catalog.Review{{Author: "Reader", Text: "Loved it"}},
	}
	c := NewController(fake, 20, 10*time.Millisecond)

	view, err := c.OpenDetails(context.Background(), catalog.BookSummary{WorkKey: "/works/OL1W"})
	require.NoError(t, err)
	require.NotNil(t, view.Work)
	assert.Nil(t, view.Ratings)     // failed silently
	require.Len(t, view.Reviews, 1) // unaffected by the ratings failure
}

func TestController_OpenDetails_PrimaryFailureReported(t *testing.T) {
	fake := &fakeCatalog{
		workErr: catalog.ErrNotFound,
		ratings: &catalog.RatingSummary{Average: 4.2, Count: 10},
	}
	c := NewController(fake, 20, 10*time.Millisecond)

	view, err := c.OpenDetails(context.Background(), catalog.BookSummary{WorkKey: "/works/OL404W"})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	require.NotNil(t, view) // partial view is still usable
	assert.Nil(t, view.Work)
	assert.NotNil(t, view.Ratings)
}

func TestController_OpenDetails_NoWorkKey(t *testing.T) {
	fake := &fakeCatalog{}
	c := NewController(fake, 20, 10*time.Millisecond)

	view, err := c.OpenDetails(context.Background(), catalog.BookSummary{Title: "Untitled"})
	require.NoError(t, err)
	assert.Nil(t, view.Work)
	assert.Equal(t, "Untitled", view.Book.Title)
}
