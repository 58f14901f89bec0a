package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// GoogleBooksClient searches the Google Books volumes API for cover images.
type GoogleBooksClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewGoogleBooksClient creates a new Google Books API client. The API key may
// be empty, in which case requests are made anonymously.
func NewGoogleBooksClient(apiKey string) *GoogleBooksClient {
	return &GoogleBooksClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: "https://www.googleapis.com/books/v1",
		apiKey:  apiKey,
	}
}

// SearchThumbnail runs a free-text volume search and returns the thumbnail of
// the first result that has one. An empty string with a nil error means the
// search succeeded but nothing had an image.
func (c *GoogleBooksClient) SearchThumbnail(ctx context.Context, query string) (string, error) {
	if query == "" {
		return "", fmt.Errorf("query is required")
	}

	q := url.Values{}
	q.Set("q", query)
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	searchURL := fmt.Sprintf("%s/volumes?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("search volumes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode search response: %w", err)
	}

	for _, item := range result.Items {
		if thumb := item.VolumeInfo.ImageLinks.Thumbnail; thumb != "" {
			return thumb, nil
		}
	}
	return "", nil
}

// Google Books API response types (internal)

type volumesResponse struct {
	TotalItems int          `json:"totalItems"`
	Items      []volumeItem `json:"items"`
}

type volumeItem struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title      string   `json:"title"`
		Authors    []string `json:"authors"`
		ImageLinks struct {
			SmallThumbnail string `json:"smallThumbnail"`
			Thumbnail      string `json:"thumbnail"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
}
