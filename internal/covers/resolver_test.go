package covers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/shelfsync/internal/entities"
)

// fakeSearcher returns canned thumbnails per query and records every call.
type fakeSearcher struct {
	mu      sync.Mutex
	results map[string]string
	errs    map[string]error
	block   map[string]bool
	queries []string
}

func (f *fakeSearcher) SearchThumbnail(ctx context.Context, query string) (string, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()

	if f.block[query] {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err := f.errs[query]; err != nil {
		return "", err
	}
	return f.results[query], nil
}

func TestResolver_PrefersFeedCover(t *testing.T) {
	searcher := &fakeSearcher{}
	r := NewDefaultResolver(searcher, time.Second)

	got := r.Resolve(context.Background(), entities.ShelfBook{Title: "Dune", Author: "Frank Herbert", CoverURL: "http://img/dune.jpg"})

	assert.Equal(t, "http://img/dune.jpg", got)
	assert.Empty(t, searcher.queries)
}

func TestResolver_SearchesFullTitle(t *testing.T) {
	searcher := &fakeSearcher{results: map[string]string{
		"Dune Frank Herbert": "http://books/dune.jpg",
	}}
	r := NewDefaultResolver(searcher, time.Second)

	got := r.Resolve(context.Background(), entities.ShelfBook{Title: "Dune", Author: "Frank Herbert"})

	assert.Equal(t, "http://books/dune.jpg", got)
	assert.Equal(t, []string{"Dune Frank Herbert"}, searcher.queries)
}

func TestResolver_FallsBackToSimplifiedTitle(t *testing.T) {
	searcher := &fakeSearcher{results: map[string]string{
		"Sapiens Yuval Noah Harari": "http://books/sapiens.jpg",
	}}
	r := NewDefaultResolver(searcher, time.Second)

	got := r.Resolve(context.Background(), entities.ShelfBook{
		Title:  "Sapiens: A Brief History of Humankind",
		Author: "Yuval Noah Harari",
	})

	assert.Equal(t, "http://books/sapiens.jpg", got)
	assert.Equal(t, []string{
		"Sapiens: A Brief History of Humankind Yuval Noah Harari",
		"Sapiens Yuval Noah Harari",
	}, searcher.queries)
}

func TestResolver_GivesUpAfterOneExtraQuery(t *testing.T) {
	searcher := &fakeSearcher{}
	r := NewDefaultResolver(searcher, time.Second)

	got := r.Resolve(context.Background(), entities.ShelfBook{Title: "The Hobbit (Middle-earth, #0)", Author: "J.R.R. Tolkien"})

	assert.Empty(t, got)
	require.Len(t, searcher.queries, 2)
	assert.Equal(t, "The Hobbit J.R.R. Tolkien", searcher.queries[1])
}

func TestResolver_NoSubtitleMeansSingleQuery(t *testing.T) {
	searcher := &fakeSearcher{}
	r := NewDefaultResolver(searcher, time.Second)

	got := r.Resolve(context.Background(), entities.ShelfBook{Title: "Dune", Author: "Frank Herbert"})

	assert.Empty(t, got)
	assert.Len(t, searcher.queries, 1)
}

func TestResolver_ErrorsAndTimeoutsContinueTheChain(t *testing.T) {
	searcher := &fakeSearcher{
		block:   map[string]bool{"Slow: Book A": true},
		errs:    map[string]error{},
		results: map[string]string{"Slow A": "http://books/slow.jpg"},
	}
	r := NewDefaultResolver(searcher, 20*time.Millisecond)

	got := r.Resolve(context.Background(), entities.ShelfBook{Title: "Slow: Book", Author: "A"})
	assert.Equal(t, "http://books/slow.jpg", got)

	searcher = &fakeSearcher{errs: map[string]error{"Broken: Book A": errors.New("boom")}}
	r = NewDefaultResolver(searcher, time.Second)
	assert.Empty(t, r.Resolve(context.Background(), entities.ShelfBook{Title: "Broken: Book", Author: "A"}))
	assert.Len(t, searcher.queries, 2)
}

func TestSimplifyTitle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Sapiens: A Brief History", "Sapiens"},
		{"The Hobbit (Middle-earth, #0)", "The Hobbit"},
		{"Dune", ""},
		{"(Untitled)", ""},
		{"Mixed (one): two", "Mixed"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SimplifyTitle(tt.input))
		})
	}
}

func TestDownloader_Download(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Mozilla/5.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("fake image data"))
	}))
	defer server.Close()

	d := &Downloader{httpClient: server.Client(), userAgent: defaultUserAgent}

	// The plain http URL must be upgraded to reach the TLS server.
	plain := "http://" + strings.TrimPrefix(server.URL, "https://") + "/cover.jpg"
	data, err := d.Download(context.Background(), plain)
	require.NoError(t, err)
	assert.Equal(t, "fake image data", string(data))
}

func TestDownloader_NotFound(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	d := &Downloader{httpClient: server.Client(), userAgent: defaultUserAgent}
	_, err := d.Download(context.Background(), server.URL+"/missing.jpg")
	assert.Error(t, err)
}

func TestDownloader_EmptyURL(t *testing.T) {
	_, err := NewDownloader().Download(context.Background(), "")
	assert.Error(t, err)
}

func TestUpgradeToHTTPS(t *testing.T) {
	assert.Equal(t, "https://img/a.jpg", UpgradeToHTTPS("http://img/a.jpg"))
	assert.Equal(t, "https://img/a.jpg", UpgradeToHTTPS("https://img/a.jpg"))
	assert.Equal(t, "ftp://img/a.jpg", UpgradeToHTTPS("ftp://img/a.jpg"))
}
