package goodreads

import (
	"fmt"
)

// FetchError indicates the shelf feed could not be retrieved.
type FetchError struct {
	URL        string
	StatusCode int    // zero when the request never got a response
	Status     string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch Goodreads RSS feed: %s", e.Status)
	}
	return fmt.Sprintf("failed to fetch Goodreads RSS feed: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError indicates the feed body was not the expected RSS document.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse Goodreads RSS feed: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
