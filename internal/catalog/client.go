// Package catalog is a thin client for the Open Library API: paged book
// search plus per-work detail, ratings and reviews lookups. No retries and
// no caching. Ratings and reviews are optional sub-resources; their absence
// is a valid outcome, not an error.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mrlokans/bookfinder/internal/config"
)

// Query describes one search invocation. Page is 1-based.
type Query struct {
	Title    string
	Author   string
	Language string
	Page     int
}

// BookSummary is one search result entry, in API order.
type BookSummary struct {
	WorkKey          string   `json:"work_key,omitempty"` // e.g. /works/OL45883W
	Title            string   `json:"title"`
	AuthorNames      []string `json:"author_names,omitempty"`
	CoverImageID     int      `json:"cover_image_id,omitempty"` // 0 means no cover
	FirstPublishYear int      `json:"first_publish_year,omitempty"`
	EditionKey       string   `json:"edition_key,omitempty"`
}

// ResultPage is one page of search results.
type ResultPage struct {
	Items      []BookSummary `json:"items"`
	TotalFound int           `json:"total_found"`
	PageNumber int           `json:"page_number"`
}

// WorkDetail is the on-demand detail document for a work.
type WorkDetail struct {
	Description      string   `json:"description,omitempty"`
	Subjects         []string `json:"subjects,omitempty"`
	FirstPublishDate string   `json:"first_publish_date,omitempty"`
}

// RatingSummary is the aggregate rating of a work.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Review is one reader review of a work.
type Review struct {
	Author string `json:"author,omitempty"`
	Text   string `json:"text,omitempty"`
}

// Client fetches search results and work details from the Open Library API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	coversURL   string
	userAgent   string
	pageSize    int
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

// NewClient creates an Open Library client with rate limiting.
func NewClient(cfg config.Catalog, pageSize int) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     cfg.BaseURL,
		coversURL:   cfg.CoversBaseURL,
		userAgent:   cfg.UserAgent,
		pageSize:    pageSize,
		rateLimiter: newRateLimiter(cfg.RateLimitInterval),
	}
}

// PageSize returns the fixed number of results per page.
func (c *Client) PageSize() int {
	return c.pageSize
}

// Search runs a paged title search. The offset is (page-1)*pageSize.
func (c *Client) Search(ctx context.Context, q Query) (*ResultPage, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}

	c.rateLimiter.wait()

	params := url.Values{}
	params.Set("title", strings.TrimSpace(q.Title))
	if author := strings.TrimSpace(q.Author); author != "" {
		params.Set("author", author)
	}
	if q.Language != "" {
		params.Set("language", q.Language)
	}
	params.Set("limit", strconv.Itoa(c.pageSize))
	params.Set("offset", strconv.Itoa((page-1)*c.pageSize))

	searchURL := fmt.Sprintf("%s/search.json?%s", c.baseURL, params.Encode())
	var result searchResult
	if err := c.getJSON(ctx, searchURL, &result); err != nil {
		return nil, err
	}

	items := make([]BookSummary, 0, len(result.Docs))
	for _, doc := range result.Docs {
		items = append(items, BookSummary{
			WorkKey:          doc.Key,
			Title:            doc.Title,
			AuthorNames:      doc.AuthorName,
			CoverImageID:     doc.CoverI,
			FirstPublishYear: doc.FirstPublishYear,
			EditionKey:       doc.CoverEditionKey,
		})
	}

	return &ResultPage{
		Items:      items,
		TotalFound: result.NumFound,
		PageNumber: page,
	}, nil
}

// WorkDetail fetches the detail document for a work key like "/works/OL45883W".
func (c *Client) WorkDetail(ctx context.Context, workKey string) (*WorkDetail, error) {
	if workKey == "" {
		return nil, ErrNotFound
	}

	c.rateLimiter.wait()

	detailURL := fmt.Sprintf("%s%s.json", c.baseURL, workKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, detailURL, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{StatusCode: resp.StatusCode}
	}

	var work workResponse
	if err := json.NewDecoder(resp.Body).Decode(&work); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("decode work detail: %w", err)}
	}

	return &WorkDetail{
		Description:      extractDescription(&work),
		Subjects:         work.Subjects,
		FirstPublishDate: work.FirstPublishDate,
	}, nil
}

// Ratings fetches the rating summary for a work. A missing or empty rating
// resource returns (nil, nil); only a failed request is an error.
func (c *Client) Ratings(ctx context.Context, workKey string) (*RatingSummary, error) {
	if workKey == "" {
		return nil, nil
	}

	c.rateLimiter.wait()

	ratingsURL := fmt.Sprintf("%s%s/ratings.json", c.baseURL, workKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ratingsURL, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var ratings ratingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&ratings); err != nil {
		return nil, nil
	}
	if ratings.Summary == nil || ratings.Summary.Average == nil {
		return nil, nil
	}

	return &RatingSummary{
		Average: *ratings.Summary.Average,
		Count:   ratings.Summary.Count,
	}, nil
}

// Reviews fetches reader reviews for a work. A missing review resource
// returns (nil, nil); only a failed request is an error.
func (c *Client) Reviews(ctx context.Context, workKey string) ([]Review, error) {
	if workKey == "" {
		return nil, nil
	}

	c.rateLimiter.wait()

	reviewsURL := fmt.Sprintf("%s%s/reviews.json", c.baseURL, workKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reviewsURL, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var body reviewsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, nil
	}

	reviews := make([]Review, 0, len(body.Entries))
	for _, entry := range body.Entries {
		reviews = append(reviews, Review{
			Author: entry.authorName(),
			Text:   entry.text(),
		})
	}
	if len(reviews) == 0 {
		return nil, nil
	}
	return reviews, nil
}

// CoverURL builds the cover image URL for a cover id. Size is "S", "M" or
// "L"; anything else falls back to "M". Returns "" when there is no cover.
func (c *Client) CoverURL(coverID int, size string) string {
	if coverID == 0 {
		return ""
	}
	switch size {
	case "S", "M", "L":
	default:
		size = "M"
	}
	return fmt.Sprintf("%s/b/id/%d-%s.jpg", c.coversURL, coverID, size)
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &TransportError{Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &TransportError{StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// extractDescription handles the description being a plain string or a
// {type, value} object, with the first excerpt as fallback.
func extractDescription(work *workResponse) string {
	if s := textValue(work.Description); s != "" {
		return s
	}
	for _, ex := range work.Excerpts {
		if s := textValue(ex.Excerpt); s != "" {
			return s
		}
		if ex.Comment != "" {
			return ex.Comment
		}
	}
	return ""
}

func textValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if s, ok := t["value"].(string); ok {
			return s
		}
	}
	return ""
}

// Open Library API response types (internal)

type searchResult struct {
	NumFound int         `json:"numFound"`
	Docs     []searchDoc `json:"docs"`
}

type searchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	CoverI           int      `json:"cover_i"`
	FirstPublishYear int      `json:"first_publish_year"`
	CoverEditionKey  string   `json:"cover_edition_key"`
}

type workResponse struct {
	Key              string         `json:"key"`
	Title            string         `json:"title"`
	Description      any            `json:"description"` // Can be string or {type, value}
	Subjects         []string       `json:"subjects"`
	FirstPublishDate string         `json:"first_publish_date"`
	Excerpts         []excerptEntry `json:"excerpts"`
}

type excerptEntry struct {
	Excerpt any    `json:"excerpt"` // Can be string or {type, value}
	Comment string `json:"comment"`
}

type ratingsResponse struct {
	Summary *ratingsSummary `json:"summary"`
}

type ratingsSummary struct {
	Average *float64 `json:"average"`
	Count   int      `json:"count"`
}

type reviewsResponse struct {
	Entries []reviewEntry `json:"entries"`
}

type reviewEntry struct {
	Author  *reviewAuthor `json:"author"`
	Summary string        `json:"summary"`
	Excerpt any           `json:"excerpt"`
	Body    any           `json:"body"`
}

type reviewAuthor struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

func (e *reviewEntry) authorName() string {
	if e.Author == nil {
		return ""
	}
	if e.Author.Name != "" {
		return e.Author.Name
	}
	return e.Author.Username
}

func (e *reviewEntry) text() string {
	if e.Summary != "" {
		return e.Summary
	}
	if s := textValue(e.Excerpt); s != "" {
		return s
	}
	return textValue(e.Body)
}
