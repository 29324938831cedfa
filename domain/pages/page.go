package pages

import (
	"path"
	"strings"
	"time"

	"loopsite/domain/sections"
)

// Page is a stored, section-driven page. The renderer only ever reads it.
type Page struct {
	Path        string             `json:"path"`
	Title       string             `json:"title" validate:"required,max=200"`
	Description string             `json:"description,omitempty" validate:"max=500"`
	Published   bool               `json:"published"`
	Sections    []sections.Section `json:"sections"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// Summary is the listing view of a page.
type Summary struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Published bool      `json:"published"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summarize returns the listing view of p.
func (p *Page) Summarize() Summary {
	return Summary{
		Path:      p.Path,
		Title:     p.Title,
		Published: p.Published,
		UpdatedAt: p.UpdatedAt,
	}
}

// NormalizePath turns a URL path into the key pages are stored under.
// Leading and trailing slashes are dropped, so the home page is "".
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	cleaned := path.Clean("/" + p)
	return strings.Trim(cleaned, "/")
}
