package http

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/shelfsync/internal/entities"
)

func shelfRoutes(sc *ShelfController) func(r *gin.Engine) {
	return func(r *gin.Engine) {
		r.GET("/api/shelf", sc.GetShelf)
	}
}

func TestShelfController_GetShelf(t *testing.T) {
	reader := &fakeShelfReader{books: []entities.ShelfBook{
		{Title: "Dune", Author: "Frank Herbert", CoverURL: "https://i.gr-assets.com/images/S/books/123._SY475_.jpg"},
		{Title: "No Cover", Author: "Someone"},
	}}

	t.Run("lists books with high resolution covers", func(t *testing.T) {
		w := serve(t, http.MethodGet, "/api/shelf?shelf=read", shelfRoutes(NewShelfController(reader, "42", "")))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

		var items []ShelfItem
		decode(t, w, &items)
		require.Len(t, items, 2)
		assert.Equal(t, "Dune", items[0].Title)
		assert.Equal(t, "https://i.gr-assets.com/images/S/books/123.jpg", items[0].CoverURL)
		assert.Empty(t, items[0].AffiliateLink)
		assert.Empty(t, items[1].CoverURL)
	})

	t.Run("adds affiliate links when a tag is configured", func(t *testing.T) {
		w := serve(t, http.MethodGet, "/api/shelf?shelf=read", shelfRoutes(NewShelfController(reader, "42", "shelf-21")))

		var items []ShelfItem
		decode(t, w, &items)
		require.Len(t, items, 2)
		assert.Equal(t, "https://www.amazon.in/s?k=Dune%20Frank%20Herbert&tag=shelf-21", items[0].AffiliateLink)
	})

	t.Run("requires a shelf", func(t *testing.T) {
		w := serve(t, http.MethodGet, "/api/shelf", shelfRoutes(NewShelfController(reader, "42", "")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Shelf and User ID are required.")
	})

	t.Run("requires a user id", func(t *testing.T) {
		w := serve(t, http.MethodGet, "/api/shelf?shelf=read", shelfRoutes(NewShelfController(reader, "", "")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("maps feed failures to 500", func(t *testing.T) {
		w := serve(t, http.MethodGet, "/api/shelf?shelf=read", shelfRoutes(NewShelfController(&fakeShelfReader{err: errBoom}, "42", "")))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "Failed to fetch or parse RSS feed.")
	})

	t.Run("returns an empty array for an empty shelf", func(t *testing.T) {
		w := serve(t, http.MethodGet, "/api/shelf?shelf=read", shelfRoutes(NewShelfController(&fakeShelfReader{}, "42", "")))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})
}

func TestAffiliateLink(t *testing.T) {
	assert.Equal(t,
		"https://www.amazon.in/s?k=Tom%20%26%20Jerry%20A.%20Author&tag=t-21",
		AffiliateLink("Tom & Jerry", "A. Author", "t-21"))
}
