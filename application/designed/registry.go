// Package designed holds the hand-built pages. Their structure lives in
// code; only the text in their declared slots comes from storage.
package designed

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"loopsite/domain/pages"
	"loopsite/domain/sections"
	"loopsite/domain/slots"
)

// Page is a hand-built page.
type Page interface {
	Path() string
	Title() string
	Description() string
	// Slots declares the overridable text of the page. It may be empty.
	Slots() slots.Config
	// Build lays out the page from merged slot values.
	Build(values slots.Values) []sections.Section
}

// Entry registers a page either at its exact path or over its subtree.
type Entry struct {
	Page    Page
	Subtree bool
}

// Exact registers p for its path only.
func Exact(p Page) Entry { return Entry{Page: p} }

// Subtree registers p for its path and every path below it.
func Subtree(p Page) Entry { return Entry{Page: p, Subtree: true} }

// Registry is the compiled-in set of designed paths. It is immutable.
type Registry struct {
	exact    map[string]Page
	subtrees []Page
}

// NewRegistry builds a registry. Paths are normalized and must be unique.
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{exact: make(map[string]Page, len(entries))}
	for _, e := range entries {
		p := e.Page.Path()
		if p != pages.NormalizePath(p) {
			return nil, fmt.Errorf("designed page path %q is not normalized", p)
		}
		if _, dup := r.exact[p]; dup {
			return nil, fmt.Errorf("duplicate designed page %q", p)
		}
		r.exact[p] = e.Page
		if e.Subtree {
			r.subtrees = append(r.subtrees, e.Page)
		}
	}
	// Longest prefix first, so nested subtrees win over their parents.
	sort.Slice(r.subtrees, func(i, j int) bool {
		return len(r.subtrees[i].Path()) > len(r.subtrees[j].Path())
	})
	return r, nil
}

// Lookup returns the designed page serving path, if any.
func (r *Registry) Lookup(path string) (Page, bool) {
	path = pages.NormalizePath(path)
	if p, ok := r.exact[path]; ok {
		return p, true
	}
	for _, p := range r.subtrees {
		root := p.Path()
		if root == "" || strings.HasPrefix(path, root+"/") {
			return p, true
		}
	}
	return nil, false
}

// Contains reports whether path is served by a designed page.
func (r *Registry) Contains(path string) bool {
	_, ok := r.Lookup(path)
	return ok
}

// Paths returns the registered page paths, sorted.
func (r *Registry) Paths() []string {
	out := make([]string, 0, len(r.exact))
	for p := range r.exact {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Pages returns the registered pages ordered by path.
func (r *Registry) Pages() []Page {
	out := make([]Page, 0, len(r.exact))
	for _, p := range r.Paths() {
		out = append(out, r.exact[p])
	}
	return out
}

// page is the shared implementation behind the shipped designed pages.
type page struct {
	path        string
	title       string
	description string
	slots       slots.Config
	build       func(v slots.Values) []sections.Section
}

func (p *page) Path() string                             { return p.path }
func (p *page) Title() string                            { return p.title }
func (p *page) Description() string                      { return p.description }
func (p *page) Slots() slots.Config                      { return p.slots }
func (p *page) Build(v slots.Values) []sections.Section { return p.build(v) }

// Default returns the registry of every shipped designed page.
func Default() *Registry {
	r, err := NewRegistry(
		Exact(homePage()),
		Exact(loopPage(marketingLoop)),
		Exact(loopPage(salesLoop)),
		Exact(loopPage(customerSuccessLoop)),
		Exact(podcastPage()),
		Subtree(leadershipPage()),
	)
	if err != nil {
		panic(err)
	}
	return r
}
