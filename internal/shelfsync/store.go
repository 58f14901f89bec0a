package shelfsync

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/shelfsync/internal/entities"
	"github.com/mrlokans/shelfsync/internal/sanity"
)

const (
	// DocumentType is the content-store type holding book reviews.
	DocumentType = "bookReview"
	// DefaultRating is given to every newly created review.
	DefaultRating = 3
	// PlaceholderReview is the body of a newly created review.
	PlaceholderReview = "Write your review here..."
)

// Oldest documents first so that the first-fetched record wins a title clash.
const storeRecordsQuery = `*[_type == $type && defined(_id) && defined(title)] | order(_createdAt asc) {
  _id,
  title,
  "hasCover": defined(coverImage.asset->_id),
  "hasDescription": defined(description) && length(description) > 0
}`

const summarizedBooksQuery = `*[_type == $type && defined(bookStructure) && count(bookStructure[_type == "part" && count(chapters) > 0 || _type == "chapter"]) > 0] | order(_updatedAt desc) {
  title,
  author,
  "slug": slug.current,
  "coverUrl": coverImage.asset->url
}`

// Querier runs read queries against the content store.
type Querier interface {
	Query(ctx context.Context, query string, params map[string]any, out any) error
}

// ContentStore is everything a sync run needs from the content store.
type ContentStore interface {
	Querier
	sanity.Mutator
	UploadImage(ctx context.Context, data []byte, filename string) (*sanity.Asset, error)
}

// Mirror fetches the projection of every review document and indexes it by
// title.
func Mirror(ctx context.Context, store Querier) (*StoreIndex, error) {
	var records []entities.StoreRecord
	if err := store.Query(ctx, storeRecordsQuery, map[string]any{"type": DocumentType}, &records); err != nil {
		return nil, fmt.Errorf("query store records: %w", err)
	}

	idx := NewStoreIndex(records)
	for _, dup := range idx.Duplicates() {
		log.Warn().Str("id", dup.ID).Str("title", dup.Title).Msg("duplicate title in store, record will not be updated")
	}
	return idx, nil
}

// SummarizedBooks lists reviews that carry a chapter structure, most
// recently updated first.
func SummarizedBooks(ctx context.Context, store Querier) ([]entities.SummarizedBook, error) {
	books := []entities.SummarizedBook{}
	if err := store.Query(ctx, summarizedBooksQuery, map[string]any{"type": DocumentType}, &books); err != nil {
		return nil, fmt.Errorf("query summarized books: %w", err)
	}
	return books, nil
}

func newDocument(book entities.ShelfBook, assetID string) sanity.Document {
	doc := sanity.Document{
		"_type":      DocumentType,
		"title":      book.Title,
		"author":     book.Author,
		"slug":       sanity.SlugField(Slugify(book.Title)),
		"yourRating": DefaultRating,
		"yourReview": sanity.TextBlocks(PlaceholderReview),
	}
	if book.Description != "" {
		doc["description"] = book.Description
	}
	if assetID != "" {
		doc["coverImage"] = sanity.ImageField(assetID)
	}
	return doc
}

// patchFields returns only the fields the existing record is missing.
func patchFields(d Decision, assetID string) map[string]any {
	set := map[string]any{}
	if assetID != "" && d.NeedsCover() {
		set["coverImage"] = sanity.ImageField(assetID)
	}
	if d.Book.Description != "" && d.NeedsDescription() {
		set["description"] = d.Book.Description
	}
	return set
}
