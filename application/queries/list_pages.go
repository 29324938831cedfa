package queries

import (
	"time"
)

// ListPagesQuery lists every addressable page
type ListPagesQuery struct {
	// IncludeDrafts adds unpublished stored pages to the listing
	IncludeDrafts bool
}

// Validate validates the ListPagesQuery
func (q ListPagesQuery) Validate() error {
	return nil
}

// PageListing is one entry of a ListPagesQuery result
type PageListing struct {
	Path      string     `json:"path"`
	Title     string     `json:"title"`
	Kind      string     `json:"kind"`
	Published bool       `json:"published"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	// Slots lists the overridable slot ids of a designed page
	Slots []string `json:"slots,omitempty"`
}

// ListPagesResult holds designed pages first, then stored pages, each
// ordered by path
type ListPagesResult struct {
	Pages []PageListing `json:"pages"`
}
