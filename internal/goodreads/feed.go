package goodreads

import (
	"encoding/xml"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/mrlokans/shelfsync/internal/entities"
)

const (
	defaultTitle  = "Untitled"
	defaultAuthor = "Unknown"
)

// rssFeed mirrors the parts of the Goodreads list_rss document we read.
// A shelf with a single book still decodes into a one-element Items slice.
type rssFeed struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title           string `xml:"title"`
	AuthorName      string `xml:"author_name"`
	LargeImageURL   string `xml:"book_large_image_url"`
	MediumImageURL  string `xml:"book_medium_image_url"`
	ImageURL        string `xml:"book_image_url"`
	BookDescription string `xml:"book_description"`
}

func parseFeed(data []byte) ([]entities.ShelfBook, error) {
	var feed rssFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		return nil, &ParseError{Err: err}
	}

	books := make([]entities.ShelfBook, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		books = append(books, item.toShelfBook())
	}
	return books, nil
}

func (item rssItem) toShelfBook() entities.ShelfBook {
	return entities.ShelfBook{
		Title:       orDefault(item.Title, defaultTitle),
		Author:      orDefault(item.AuthorName, defaultAuthor),
		CoverURL:    firstNonEmpty(item.LargeImageURL, item.MediumImageURL, item.ImageURL),
		Description: StripHTML(item.BookDescription),
	}
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// blockElements separate words when tags are removed.
var blockElements = map[string]bool{
	"br": true, "p": true, "div": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "blockquote": true,
}

// StripHTML converts an HTML fragment to plain text with collapsed whitespace.
func StripHTML(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.TextToken:
			sb.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if blockElements[string(name)] {
				sb.WriteByte(' ')
			}
		}
	}
}

var sizeSpecifier = regexp.MustCompile(`\._S[XY]\d+(_)?`)

// HighResCoverURL removes the Goodreads thumbnail size specifier
// (for example "._SX98_") so the full-size image is served.
func HighResCoverURL(coverURL string) string {
	if coverURL == "" {
		return ""
	}
	return sizeSpecifier.ReplaceAllString(coverURL, "")
}
