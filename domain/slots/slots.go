// Package slots models overridable text values inside designed pages.
package slots

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Kind is the declared shape of a slot.
type Kind string

const (
	KindText      Kind = "text"
	KindParagraph Kind = "paragraph"
	KindRichText  Kind = "richText"
	KindList      Kind = "list"
)

// Value is either a single string or a list of strings. Its JSON form is
// `string | string[]`.
type Value struct {
	text   string
	items  []string
	isList bool
}

// Text creates a string value.
func Text(s string) Value { return Value{text: s} }

// List creates a list value.
func List(items ...string) Value {
	return Value{items: append([]string(nil), items...), isList: true}
}

// IsList reports whether v holds a list.
func (v Value) IsList() bool { return v.isList }

// String returns the string form; for lists it is empty.
func (v Value) String() string { return v.text }

// Items returns a copy of the list form; for strings it is nil.
func (v Value) Items() []string {
	if !v.isList {
		return nil
	}
	return append([]string(nil), v.items...)
}

// fits reports whether v has the shape kind k declares.
func (v Value) fits(k Kind) bool {
	if k == KindList {
		return v.isList
	}
	return !v.isList
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.isList {
		items := v.items
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	}
	return json.Marshal(v.text)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []string
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("slot value must be a string or a list of strings: %w", err)
		}
		*v = List(items...)
		return nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return fmt.Errorf("slot value must be a string or a list of strings: %w", err)
	}
	*v = Text(s)
	return nil
}

// Slot declares one overridable value and its compiled-in default.
type Slot struct {
	ID      string
	Kind    Kind
	Default Value
}

// Config is a designed page's slot declaration. It is immutable.
type Config struct {
	slots []Slot
	index map[string]int
}

// NewConfig builds a config; slot ids must be unique and kinds known.
func NewConfig(slots ...Slot) (Config, error) {
	cfg := Config{
		slots: make([]Slot, 0, len(slots)),
		index: make(map[string]int, len(slots)),
	}
	for _, s := range slots {
		if s.ID == "" {
			return Config{}, fmt.Errorf("slot id is required")
		}
		if _, dup := cfg.index[s.ID]; dup {
			return Config{}, fmt.Errorf("duplicate slot id %q", s.ID)
		}
		switch s.Kind {
		case KindText, KindParagraph, KindRichText, KindList:
		default:
			return Config{}, fmt.Errorf("slot %q has unknown kind %q", s.ID, s.Kind)
		}
		if !s.Default.fits(s.Kind) {
			return Config{}, fmt.Errorf("default of slot %q does not fit kind %q", s.ID, s.Kind)
		}
		cfg.index[s.ID] = len(cfg.slots)
		cfg.slots = append(cfg.slots, s)
	}
	return cfg, nil
}

// MustConfig is NewConfig for compiled-in declarations.
func MustConfig(slots ...Slot) Config {
	cfg, err := NewConfig(slots...)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Slots returns the declared slots in declaration order.
func (c Config) Slots() []Slot {
	return append([]Slot(nil), c.slots...)
}

// Len returns the number of declared slots.
func (c Config) Len() int { return len(c.slots) }

// Lookup returns the declaration for id.
func (c Config) Lookup(id string) (Slot, bool) {
	i, ok := c.index[id]
	if !ok {
		return Slot{}, false
	}
	return c.slots[i], true
}

// Overrides are persisted values keyed by slot id. A nil map or a nil
// entry means no override.
type Overrides map[string]*Value

// IDs returns the override ids, sorted.
func (o Overrides) IDs() []string {
	ids := make([]string, 0, len(o))
	for id := range o {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Values are the resolved slot values of one designed page render.
type Values map[string]Value

// Text returns the string value of id, or "".
func (v Values) Text(id string) string {
	return v[id].String()
}

// List returns the list value of id, or nil.
func (v Values) List(id string) []string {
	return v[id].Items()
}
