package shelfsync

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	nonWordChars   = regexp.MustCompile(`[^\w\-]+`)
	repeatedHyphen = regexp.MustCompile(`--+`)
)

// Slugify turns a title into a URL slug: lowercase, whitespace to hyphens,
// non-word characters removed, hyphens collapsed and trimmed. Titles made
// only of non-ASCII letters or punctuation yield "".
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = nonWordChars.ReplaceAllString(s, "")
	s = repeatedHyphen.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// coverFilename names an uploaded cover after the book's slug.
func coverFilename(title string) string {
	slug := Slugify(title)
	if slug == "" {
		slug = "cover"
	}
	return slug + ".jpg"
}
