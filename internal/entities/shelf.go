package entities

// ShelfBook is one item of a Goodreads shelf, normalized for syncing.
// It only lives for the duration of a sync run.
type ShelfBook struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	CoverURL    string `json:"coverUrl,omitempty"` // empty when the feed has no image
	Description string `json:"description,omitempty"`
}

// StoreRecord is the projection of a bookReview document fetched from the
// content store at the start of every run.
type StoreRecord struct {
	ID             string `json:"_id"`
	Title          string `json:"title"`
	HasCover       bool   `json:"hasCover"`
	HasDescription bool   `json:"hasDescription"`
}

// Complete reports whether the record needs no further enrichment.
func (r StoreRecord) Complete() bool {
	return r.HasCover && r.HasDescription
}

// SummarizedBook is a bookReview document that carries a chapter structure.
type SummarizedBook struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Slug     string `json:"slug"`
	CoverURL string `json:"coverUrl,omitempty"`
}
