package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(server *httptest.Server) *GoogleBooksClient {
	return &GoogleBooksClient{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    server.URL,
		apiKey:     "test-key",
	}
}

func TestSearchThumbnail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/volumes" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "Dune Frank Herbert" {
			t.Errorf("expected query 'Dune Frank Herbert', got %q", got)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("expected key 'test-key', got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"totalItems": 2, "items": [
			{"id": "a", "volumeInfo": {"title": "Dune"}},
			{"id": "b", "volumeInfo": {"title": "Dune", "imageLinks": {"thumbnail": "http://books.google.com/dune.jpg"}}}
		]}`))
	}))
	defer server.Close()

	thumb, err := newTestClient(server).SearchThumbnail(context.Background(), "Dune Frank Herbert")
	if err != nil {
		t.Fatalf("SearchThumbnail failed: %v", err)
	}
	if thumb != "http://books.google.com/dune.jpg" {
		t.Errorf("expected second item's thumbnail, got %q", thumb)
	}
}

func TestSearchThumbnail_NoImages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalItems": 0}`))
	}))
	defer server.Close()

	thumb, err := newTestClient(server).SearchThumbnail(context.Background(), "Nothing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if thumb != "" {
		t.Errorf("expected empty thumbnail, got %q", thumb)
	}
}

func TestSearchThumbnail_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	if _, err := newTestClient(server).SearchThumbnail(context.Background(), "Dune"); err == nil {
		t.Error("expected error for 403 response")
	}
}

func TestSearchThumbnail_EmptyQuery(t *testing.T) {
	if _, err := NewGoogleBooksClient("").SearchThumbnail(context.Background(), ""); err == nil {
		t.Error("expected error for empty query")
	}
}
