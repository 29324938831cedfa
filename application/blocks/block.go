// Package blocks holds one rendering unit per section type and the
// immutable registry the renderer dispatches through.
package blocks

import (
	"errors"
	"fmt"
	"html/template"
	"maps"
	"slices"

	"loopsite/domain/sections"
)

// ErrPropsMismatch is returned when a block is handed props of another type.
var ErrPropsMismatch = errors.New("props do not match block")

// Block renders the props of exactly one section type. Blocks know nothing
// about their siblings or position on the page.
type Block interface {
	Type() sections.Type
	Render(props sections.Props) (template.HTML, error)
}

type boundBlock[P sections.Props] struct {
	sectionType sections.Type
	render      func(P) (template.HTML, error)
}

func (b boundBlock[P]) Type() sections.Type { return b.sectionType }

func (b boundBlock[P]) Render(props sections.Props) (template.HTML, error) {
	typed, ok := props.(P)
	if !ok {
		return "", fmt.Errorf("%w: %s block got %T", ErrPropsMismatch, b.sectionType, props)
	}
	return b.render(typed)
}

// bind adapts a typed render function to Block. The section type is taken
// from P so a block cannot be registered under the wrong tag.
func bind[P sections.Props](render func(P) (template.HTML, error)) Block {
	var zero P
	return boundBlock[P]{sectionType: zero.SectionType(), render: render}
}

// Registry maps section types to blocks. It is immutable once built.
type Registry struct {
	blocks map[sections.Type]Block
}

// NewRegistry builds a registry. Registering a type twice, or a type the
// section model does not know, is an error.
func NewRegistry(blocks ...Block) (*Registry, error) {
	r := &Registry{blocks: make(map[sections.Type]Block, len(blocks))}
	for _, b := range blocks {
		t := b.Type()
		if !sections.Known(t) {
			return nil, fmt.Errorf("block registered for unknown section type %q", t)
		}
		if _, dup := r.blocks[t]; dup {
			return nil, fmt.Errorf("duplicate block for section type %q", t)
		}
		r.blocks[t] = b
	}
	return r, nil
}

// Lookup returns the block registered for t.
func (r *Registry) Lookup(t sections.Type) (Block, bool) {
	b, ok := r.blocks[t]
	return b, ok
}

// Types returns the registered types, sorted.
func (r *Registry) Types() []sections.Type {
	return slices.Sorted(maps.Keys(r.blocks))
}
