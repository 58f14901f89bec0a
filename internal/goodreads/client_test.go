package goodreads

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoItemFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Reader's bookshelf: read</title>
    <item>
      <title><![CDATA[  Dune  ]]></title>
      <author_name>Frank Herbert</author_name>
      <book_image_url><![CDATA[http://img/dune_small.jpg]]></book_image_url>
      <book_medium_image_url><![CDATA[]]></book_medium_image_url>
      <book_large_image_url><![CDATA[http://img/dune.jpg]]></book_large_image_url>
      <book_description><![CDATA[<b>Set</b> on the desert planet Arrakis.<br /><br />A stunning blend &amp; more.]]></book_description>
    </item>
    <item>
      <title></title>
      <author_name>   </author_name>
      <book_image_url><![CDATA[http://img/small.jpg]]></book_image_url>
    </item>
  </channel>
</rss>`

const singleItemFeed = `<?xml version="1.0"?>
<rss version="2.0"><channel><item><title>Solo</title><author_name>One</author_name></item></channel></rss>`

func newTestClient(server *httptest.Server) *Client {
	return &Client{httpClient: server.Client(), baseURL: server.URL}
}

func TestFetchShelf(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/review/list_rss/42", r.URL.Path)
		assert.Equal(t, "read", r.URL.Query().Get("shelf"))
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(twoItemFeed))
	}))
	defer server.Close()

	books, err := newTestClient(server).FetchShelf(context.Background(), "42", "read")
	require.NoError(t, err)
	require.Len(t, books, 2)

	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, "Frank Herbert", books[0].Author)
	assert.Equal(t, "http://img/dune.jpg", books[0].CoverURL)
	assert.Equal(t, "Set on the desert planet Arrakis. A stunning blend & more.", books[0].Description)

	assert.Equal(t, "Untitled", books[1].Title)
	assert.Equal(t, "Unknown", books[1].Author)
	assert.Equal(t, "http://img/small.jpg", books[1].CoverURL)
	assert.Empty(t, books[1].Description)
}

func TestFetchShelf_SingleItem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(singleItemFeed))
	}))
	defer server.Close()

	books, err := newTestClient(server).FetchShelf(context.Background(), "42", "read")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Solo", books[0].Title)
	assert.Empty(t, books[0].CoverURL)
}

func TestFetchShelf_EmptyChannel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<rss><channel><title>empty</title></channel></rss>`))
	}))
	defer server.Close()

	books, err := newTestClient(server).FetchShelf(context.Background(), "42", "read")
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestFetchShelf_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(server).FetchShelf(context.Background(), "42", "read")
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
}

func TestFetchShelf_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newTestClient(server)
	server.Close()

	_, err := client.FetchShelf(context.Background(), "42", "read")
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Zero(t, fetchErr.StatusCode)
}

func TestFetchShelf_ParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>maintenance</body></html>`))
	}))
	defer server.Close()

	_, err := newTestClient(server).FetchShelf(context.Background(), "42", "read")
	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestFetchShelf_MissingArguments(t *testing.T) {
	_, err := NewClient().FetchShelf(context.Background(), "", "read")
	assert.Error(t, err)
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"plain text", "plain text"},
		{"<p>A <b>bold</b> move.</p><p>Next</p>", "A bold move. Next"},
		{"line<br>break", "line break"},
		{"Tom &amp; Jerry", "Tom & Jerry"},
		{"  spaced\n\n  out ", "spaced out"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripHTML(tt.input))
		})
	}
}

func TestHighResCoverURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://i.gr-assets.com/images/S/books/1555447414i/44767458._SY475_.jpg", "https://i.gr-assets.com/images/S/books/1555447414i/44767458.jpg"},
		{"https://i.gr-assets.com/images/S/books/123._SX98_.jpg", "https://i.gr-assets.com/images/S/books/123.jpg"},
		{"https://img/plain.jpg", "https://img/plain.jpg"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, HighResCoverURL(tt.input))
		})
	}
}
