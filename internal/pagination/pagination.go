// Package pagination converts page requests into offset/limit windows and
// derives page summaries from a total row count.
package pagination

import (
	"errors"
	"fmt"
)

// Defaults applied by the HTTP layer when the client omits paging parameters.
const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
)

var (
	// ErrInvalidPageNumber is returned for page numbers below 1.
	ErrInvalidPageNumber = errors.New("page number must be at least 1")
	// ErrInvalidPageSize is returned for page sizes below 1.
	ErrInvalidPageSize = errors.New("page size must be at least 1")
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// Validate rejects page requests that cannot be turned into a window.
func (p Page) Validate() error {
	if p.Size <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, p.Size)
	}
	if p.Number <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPageNumber, p.Number)
	}
	return nil
}

// Offset is the number of rows to skip. The page must be valid.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Limit is the maximum number of rows on the page.
func (p Page) Limit() int {
	return p.Size
}

// Summary describes where a page sits in the full result set.
type Summary struct {
	LastPage int
	HasPrev  bool
	HasNext  bool
}

// Summarize derives the page summary from the total count. The flags are
// computed from the requested page number alone: a page past the end gets
// HasPrev=true and HasNext=false even though it holds no rows.
func Summarize(p Page, total int64) Summary {
	size := int64(p.Size)
	lastPage := int((total + size - 1) / size)
	return Summary{
		LastPage: lastPage,
		HasPrev:  p.Number > 1,
		HasNext:  p.Number < lastPage,
	}
}
