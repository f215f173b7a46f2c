// Package wiki fetches short encyclopedia summaries for catalog topics
// from a Wikimedia REST endpoint.
package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"
)

// DefaultAPIBase is the English Wikipedia REST root.
const DefaultAPIBase = "https://en.wikipedia.org/api/rest_v1"

// ErrNotFound means the topic has no page.
var ErrNotFound = errors.New("no encyclopedia page for topic")

// Summary is the lead section of a page.
type Summary struct {
	Title     string `json:"title"`
	Extract   string `json:"extract"`
	ImageURL  string `json:"image_url,omitempty"`
	Thumbnail string `json:"thumbnail_url,omitempty"`
	PageURL   string `json:"page_url,omitempty"`
}

// summaryResponse mirrors the subset of the REST payload we read.
type summaryResponse struct {
	Title         string `json:"title"`
	Extract       string `json:"extract"`
	OriginalImage struct {
		Source string `json:"source"`
	} `json:"originalimage"`
	Thumbnail struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// Client requests summaries, pacing calls so bulk lookups stay polite.
type Client struct {
	base      string
	http      *http.Client
	userAgent string
	limiter   *rate.Limiter
}

// NewClient creates a client for apiBase (DefaultAPIBase when empty)
// allowing at most rps requests per second. rps <= 0 disables pacing.
func NewClient(apiBase, userAgent string, rps float64) *Client {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Client{
		base:      strings.TrimRight(apiBase, "/"),
		http:      &http.Client{},
		userAgent: userAgent,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// SummaryURL returns the request URL for topic. Spaces become
// underscores, as in page titles.
func (c *Client) SummaryURL(topic string) string {
	title := strings.ReplaceAll(strings.TrimSpace(topic), " ", "_")
	return c.base + "/page/summary/" + url.PathEscape(title)
}

// Summary fetches the summary for topic.
func (c *Client) Summary(ctx context.Context, topic string) (*Summary, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, fmt.Errorf("empty topic")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SummaryURL(topic), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching summary: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %q", ErrNotFound, topic)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("summary request failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var raw summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding summary: %w", err)
	}
	return &Summary{
		Title:     raw.Title,
		Extract:   raw.Extract,
		ImageURL:  raw.OriginalImage.Source,
		Thumbnail: raw.Thumbnail.Source,
		PageURL:   raw.ContentURLs.Desktop.Page,
	}, nil
}
