package covers

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/shelfsync/internal/entities"
)

// DefaultSearchTimeout bounds a single image search attempt.
const DefaultSearchTimeout = 8 * time.Second

// ImageSearcher finds a thumbnail URL for a free-text query.
type ImageSearcher interface {
	SearchThumbnail(ctx context.Context, query string) (string, error)
}

// Strategy is one step of the cover fallback chain. Find returns "" when the
// strategy has nothing to offer; failures are never propagated.
type Strategy interface {
	Name() string
	Find(ctx context.Context, book entities.ShelfBook) string
}

// Resolver tries its strategies in order and stops at the first hit.
type Resolver struct {
	strategies []Strategy
}

// NewResolver creates a resolver over an explicit strategy list.
func NewResolver(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// NewDefaultResolver builds the standard chain: the feed's own cover, a
// search for the full title, then a search for the title without subtitle.
func NewDefaultResolver(searcher ImageSearcher, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultSearchTimeout
	}
	return NewResolver(
		FeedCover{},
		&TitleSearch{Searcher: searcher, Timeout: timeout},
		&TitleSearch{Searcher: searcher, Timeout: timeout, Simplify: true},
	)
}

// Resolve returns a cover URL for the book, or "" when every strategy failed.
func (r *Resolver) Resolve(ctx context.Context, book entities.ShelfBook) string {
	for _, s := range r.strategies {
		if ctx.Err() != nil {
			return ""
		}
		if coverURL := s.Find(ctx, book); coverURL != "" {
			log.Debug().Str("title", book.Title).Str("strategy", s.Name()).Msg("cover resolved")
			return coverURL
		}
	}
	return ""
}

// FeedCover uses the image URL supplied by the shelf feed.
type FeedCover struct{}

func (FeedCover) Name() string { return "feed" }

func (FeedCover) Find(_ context.Context, book entities.ShelfBook) string {
	return book.CoverURL
}

// TitleSearch queries an image search API with "<title> <author>".
// With Simplify set it only runs for titles carrying a subtitle and searches
// for the main title alone.
type TitleSearch struct {
	Searcher ImageSearcher
	Timeout  time.Duration
	Simplify bool
}

func (s *TitleSearch) Name() string {
	if s.Simplify {
		return "search_simplified_title"
	}
	return "search_title"
}

func (s *TitleSearch) Find(ctx context.Context, book entities.ShelfBook) string {
	if s.Searcher == nil {
		return ""
	}

	title := book.Title
	if s.Simplify {
		title = SimplifyTitle(title)
		if title == "" {
			return ""
		}
	}
	query := strings.TrimSpace(title + " " + book.Author)

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	thumb, err := s.Searcher.SearchThumbnail(ctx, query)
	if err != nil {
		log.Warn().Err(err).Str("title", book.Title).Str("query", query).Msg("cover search failed")
		return ""
	}
	return thumb
}

// SimplifyTitle drops a subtitle introduced by ':' or '('. It returns "" for
// titles without a subtitle separator.
func SimplifyTitle(title string) string {
	idx := strings.IndexAny(title, ":(")
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(title[:idx])
}
