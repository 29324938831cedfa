// Package memory provides an in-process page store for development, the
// seed watcher and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"loopsite/domain/pages"
	"loopsite/domain/sections"
	"loopsite/domain/slots"
)

// Store keeps pages and slot overrides in maps guarded by a RWMutex.
// Values are copied on the way in and out.
type Store struct {
	mu        sync.RWMutex
	pages     map[string]*pages.Page
	overrides map[string]slots.Overrides
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		pages:     make(map[string]*pages.Page),
		overrides: make(map[string]slots.Overrides),
	}
}

// FetchPage implements ports.PageReader
func (s *Store) FetchPage(_ context.Context, path string) (*pages.Page, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pages[path]
	if !ok {
		return nil, false, nil
	}
	return clonePage(p), true, nil
}

// FetchSlotOverrides implements ports.PageReader
func (s *Store) FetchSlotOverrides(_ context.Context, path string) (slots.Overrides, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.overrides[path]
	if !ok {
		return nil, false, nil
	}
	return cloneOverrides(o), true, nil
}

// SavePage implements ports.PageWriter
func (s *Store) SavePage(_ context.Context, page *pages.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pages[page.Path] = clonePage(page)
	return nil
}

// DeletePage implements ports.PageWriter
func (s *Store) DeletePage(_ context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pages[path]; !ok {
		return false, nil
	}
	delete(s.pages, path)
	return true, nil
}

// SaveSlotOverrides implements ports.PageWriter
func (s *Store) SaveSlotOverrides(_ context.Context, path string, overrides slots.Overrides) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.overrides[path] = cloneOverrides(overrides)
	return nil
}

// ListPages implements ports.PageLister
func (s *Store) ListPages(_ context.Context) ([]pages.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]pages.Summary, 0, len(s.pages))
	for _, p := range s.pages {
		out = append(out, p.Summarize())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Replace swaps the whole content of the store in one step, so readers see
// either the old or the new set and never a mix.
func (s *Store) Replace(list []*pages.Page, overrides map[string]slots.Overrides) {
	nextPages := make(map[string]*pages.Page, len(list))
	for _, p := range list {
		nextPages[p.Path] = clonePage(p)
	}
	nextOverrides := make(map[string]slots.Overrides, len(overrides))
	for path, o := range overrides {
		nextOverrides[path] = cloneOverrides(o)
	}

	s.mu.Lock()
	s.pages = nextPages
	s.overrides = nextOverrides
	s.mu.Unlock()
}

// Ping implements ports.HealthChecker
func (s *Store) Ping(context.Context) error { return nil }

func clonePage(p *pages.Page) *pages.Page {
	c := *p
	c.Sections = append([]sections.Section(nil), p.Sections...)
	return &c
}

func cloneOverrides(o slots.Overrides) slots.Overrides {
	c := make(slots.Overrides, len(o))
	for id, v := range o {
		if v == nil {
			c[id] = nil
			continue
		}
		value := *v
		c[id] = &value
	}
	return c
}
