package queries

import (
	"errors"
	"strings"

	"loopsite/application/rendering"
	"loopsite/application/resolution"
)

const maxPathLength = 512

// GetPageQuery asks for the rendered page at a URL path
type GetPageQuery struct {
	Path string
}

// Validate validates the GetPageQuery
func (q GetPageQuery) Validate() error {
	return validatePath(q.Path)
}

// RenderedPage is a resolved and rendered page, ready for the layout
type RenderedPage struct {
	Path        string               `json:"path"`
	Kind        resolution.PlanKind  `json:"kind"`
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	Fragments   []rendering.Fragment `json:"fragments"`
	// Skipped counts sections dropped by the renderer
	Skipped int `json:"skipped"`
}

// GetPageContentQuery asks for the stored content of a generic page
type GetPageContentQuery struct {
	Path string
}

// Validate validates the GetPageContentQuery
func (q GetPageContentQuery) Validate() error {
	return validatePath(q.Path)
}

func validatePath(p string) error {
	if len(p) > maxPathLength {
		return errors.New("path is too long")
	}
	if strings.ContainsAny(p, "\x00?#") {
		return errors.New("path contains invalid characters")
	}
	return nil
}
