package goodreads

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mrlokans/shelfsync/internal/entities"
)

const (
	defaultBaseURL = "https://www.goodreads.com"
	defaultTimeout = 30 * time.Second
	maxFeedSize    = 10 << 20
)

// Client reads shelves from the Goodreads list RSS feed.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Goodreads feed client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    defaultBaseURL,
	}
}

// ShelfURL returns the RSS URL of a user's shelf.
func (c *Client) ShelfURL(userID, shelf string) string {
	return fmt.Sprintf("%s/review/list_rss/%s?shelf=%s", c.baseURL, url.PathEscape(userID), url.QueryEscape(shelf))
}

// FetchShelf retrieves and parses every item of the given shelf.
func (c *Client) FetchShelf(ctx context.Context, userID, shelf string) ([]entities.ShelfBook, error) {
	if userID == "" || shelf == "" {
		return nil, fmt.Errorf("user id and shelf are required")
	}

	feedURL := c.ShelfURL(userID, shelf)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "ShelfSync/1.0 (+https://github.com/mrlokans/shelfsync)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: feedURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: feedURL, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, &FetchError{URL: feedURL, Err: err}
	}

	return parseFeed(body)
}
