package sections

import (
	"encoding/json"
	"fmt"
)

// Section is one visual unit of a page. ID is the rendering key and must be
// unique among its siblings.
type Section struct {
	ID    string
	Props Props
}

// New creates a section. The type tag is taken from the props.
func New(id string, props Props) Section {
	return Section{ID: id, Props: props}
}

// Type returns the section's tag, or "" when it has no props.
func (s Section) Type() Type {
	if s.Props == nil {
		return ""
	}
	return s.Props.SectionType()
}

// wireSection is the stored and transported form of a section.
type wireSection struct {
	ID    string          `json:"id"`
	Type  Type            `json:"type"`
	Props json.RawMessage `json:"props"`
}

// MarshalJSON writes {"id", "type", "props"}. Sections that were never
// typed are written back with their original props.
func (s Section) MarshalJSON() ([]byte, error) {
	var raw json.RawMessage
	switch p := s.Props.(type) {
	case nil:
		return nil, fmt.Errorf("section %q has no props", s.ID)
	case Unrecognized:
		raw = normalizeRaw(p.Raw)
	case Malformed:
		raw = normalizeRaw(p.Raw)
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal props of section %q: %w", s.ID, err)
		}
		raw = b
	}
	return json.Marshal(wireSection{ID: s.ID, Type: s.Type(), Props: raw})
}

// UnmarshalJSON decodes leniently, like Decode.
func (s *Section) UnmarshalJSON(data []byte) error {
	decoded, err := decodeElement(data, false)
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

func normalizeRaw(raw []byte) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return json.RawMessage("{}")
	}
	return json.RawMessage(raw)
}
