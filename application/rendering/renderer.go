// Package rendering turns an ordered section list into HTML fragments.
package rendering

import (
	"errors"
	"html/template"

	"loopsite/application/blocks"
	"loopsite/domain/sections"
)

// Fragment is the rendered output of one section.
type Fragment struct {
	SectionID string        `json:"sectionId"`
	Type      sections.Type `json:"type"`
	HTML      template.HTML `json:"html"`
}

// BlockLookup is the part of the block registry the renderer needs.
type BlockLookup interface {
	Lookup(t sections.Type) (blocks.Block, bool)
}

// Renderer dispatches sections to blocks. It holds no state between calls
// and never mutates its input.
type Renderer struct {
	blocks   BlockLookup
	observer DiagnosticObserver
}

// NewRenderer creates a renderer. A nil observer discards diagnostics.
func NewRenderer(lookup BlockLookup, observer DiagnosticObserver) *Renderer {
	if observer == nil {
		observer = DiscardDiagnostics{}
	}
	return &Renderer{blocks: lookup, observer: observer}
}

// Render produces one fragment per renderable section, in input order.
// Sections with no block, undecodable props, or a failing block are
// skipped and reported to the observer. The result is never nil.
func (r *Renderer) Render(list []sections.Section) []Fragment {
	fragments := make([]Fragment, 0, len(list))
	for i, s := range list {
		if f, ok := r.renderOne(i, s); ok {
			fragments = append(fragments, f)
		}
	}
	return fragments
}

func (r *Renderer) renderOne(index int, s sections.Section) (Fragment, bool) {
	switch p := s.Props.(type) {
	case nil:
		r.observer.Observe(Diagnostic{Kind: MalformedSectionProps, Index: index, SectionID: s.ID, Err: errMissingProps})
		return Fragment{}, false
	case sections.Malformed:
		r.observer.Observe(Diagnostic{Kind: MalformedSectionProps, Index: index, SectionID: s.ID, Type: p.Tag, Err: p.Err})
		return Fragment{}, false
	}

	t := s.Type()
	block, ok := r.blocks.Lookup(t)
	if !ok {
		r.observer.Observe(Diagnostic{Kind: UnknownSectionType, Index: index, SectionID: s.ID, Type: t})
		return Fragment{}, false
	}

	html, err := block.Render(s.Props)
	if err != nil {
		r.observer.Observe(Diagnostic{Kind: MalformedSectionProps, Index: index, SectionID: s.ID, Type: t, Err: err})
		return Fragment{}, false
	}
	return Fragment{SectionID: s.ID, Type: t, HTML: html}, true
}

var errMissingProps = errors.New("section has no props")

// Join concatenates fragments into one HTML value.
func Join(fragments []Fragment) template.HTML {
	var out template.HTML
	for _, f := range fragments {
		out += f.HTML
	}
	return out
}
