package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/shelfsync/internal/shelfsync"
)

// BooksController lists book reviews stored in the content store.
type BooksController struct {
	store BooksQuerier
}

func NewBooksController(store BooksQuerier) *BooksController {
	return &BooksController{store: store}
}

// GetSummarizedBooks handles GET /api/books/summarized
// Returns reviews that carry a chapter summary, most recently updated first.
func (bc *BooksController) GetSummarizedBooks(c *gin.Context) {
	books, err := shelfsync.SummarizedBooks(c.Request.Context(), bc.store)
	if err != nil {
		log.Error().Err(err).Msg("failed to load summarized books")
		respondError(c, http.StatusBadGateway, "Could not load data.")
		return
	}

	allowAnyOrigin(c)
	c.JSON(http.StatusOK, gin.H{
		"books": books,
		"count": len(books),
	})
}
