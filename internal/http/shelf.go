package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/shelfsync/internal/goodreads"
)

const amazonSearchURL = "https://www.amazon.in/s"

// ShelfItem is one book of a public shelf listing.
type ShelfItem struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	CoverURL      string `json:"coverUrl"`
	AffiliateLink string `json:"affiliateLink,omitempty"`
}

// ShelfController serves a read-only view of any Goodreads shelf.
type ShelfController struct {
	reader       ShelfReader
	userID       string
	affiliateTag string
}

func NewShelfController(reader ShelfReader, userID, affiliateTag string) *ShelfController {
	return &ShelfController{
		reader:       reader,
		userID:       userID,
		affiliateTag: affiliateTag,
	}
}

// GetShelf handles GET /api/shelf?shelf=<name>
func (sc *ShelfController) GetShelf(c *gin.Context) {
	shelf := c.Query("shelf")
	if shelf == "" || sc.userID == "" {
		respondBadRequest(c, "Shelf and User ID are required.")
		return
	}

	books, err := sc.reader.FetchShelf(c.Request.Context(), sc.userID, shelf)
	if err != nil {
		log.Error().Err(err).Str("shelf", shelf).Msg("failed to fetch shelf")
		respondError(c, http.StatusInternalServerError, "Failed to fetch or parse RSS feed.")
		return
	}

	items := make([]ShelfItem, 0, len(books))
	for _, b := range books {
		item := ShelfItem{
			Title:    b.Title,
			Author:   b.Author,
			CoverURL: goodreads.HighResCoverURL(b.CoverURL),
		}
		if sc.affiliateTag != "" {
			item.AffiliateLink = AffiliateLink(b.Title, b.Author, sc.affiliateTag)
		}
		items = append(items, item)
	}

	allowAnyOrigin(c)
	c.JSON(http.StatusOK, items)
}

// AffiliateLink builds an Amazon search link for the book carrying the
// affiliate tag.
func AffiliateLink(title, author, tag string) string {
	query := strings.ReplaceAll(url.QueryEscape(title+" "+author), "+", "%20")
	return amazonSearchURL + "?k=" + query + "&tag=" + url.QueryEscape(tag)
}
