package sections

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

type propsDecoder func(raw []byte, strict bool) (Props, error)

// shapes maps every registered tag to the decoder for its props shape.
var shapes = map[Type]propsDecoder{
	TypeHero:            decodeAs[HeroProps],
	TypeContentBlock:    decodeAs[ContentBlockProps],
	TypeComparison:      decodeAs[ComparisonProps],
	TypeLoopDetail:      decodeAs[LoopDetailProps],
	TypeFAQ:             decodeAs[FAQProps],
	TypeNavigationCards: decodeAs[NavigationCardsProps],
	TypeFeatureGrid:     decodeAs[FeatureGridProps],
	TypeQuote:           decodeAs[QuoteProps],
	TypeCTABanner:       decodeAs[CTABannerProps],
	TypeEpisodeList:     decodeAs[EpisodeListProps],
}

// Types returns every registered section type, sorted.
func Types() []Type {
	return slices.Sorted(maps.Keys(shapes))
}

// Known reports whether t is a registered section type.
func Known(t Type) bool {
	_, ok := shapes[t]
	return ok
}

func decodeAs[P Props](raw []byte, strict bool) (Props, error) {
	var p P
	dec := json.NewDecoder(bytes.NewReader(normalizeRaw(raw)))
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(&p); err != nil {
		return nil, err
	}
	return p, nil
}

// Decode reads a stored section list. It never fails on section content:
// unknown tags become Unrecognized and undecodable props become Malformed,
// so the renderer can skip them. Only input that is not a JSON array is an
// error. Empty or null input yields an empty list.
func Decode(data []byte) ([]Section, error) {
	elements, err := splitArray(data)
	if err != nil {
		return nil, err
	}

	out := make([]Section, 0, len(elements))
	for _, element := range elements {
		s, _ := decodeElement(element, false)
		out = append(out, s)
	}
	return out, nil
}

// DecodeStrict reads a section list at the authoring boundary. Unknown tags,
// undecodable props and unknown prop fields are reported as a
// *ValidationError carrying one problem per offending section.
func DecodeStrict(data []byte) ([]Section, error) {
	elements, err := splitArray(data)
	if err != nil {
		return nil, err
	}

	out := make([]Section, 0, len(elements))
	verr := &ValidationError{}
	for i, element := range elements {
		s, err := decodeElement(element, true)
		if err != nil {
			verr.add(Problem{Index: i, SectionID: s.ID, Message: err.Error()})
			continue
		}
		out = append(out, s)
	}
	if len(verr.Problems) > 0 {
		return nil, verr
	}
	return out, nil
}

func splitArray(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return nil, fmt.Errorf("sections must be a JSON array: %w", err)
	}
	return elements, nil
}

// decodeElement decodes one section. In lenient mode the error is always
// nil and problems are folded into Unrecognized or Malformed props.
func decodeElement(data []byte, strict bool) (Section, error) {
	var w wireSection
	if err := json.Unmarshal(data, &w); err != nil {
		if strict {
			return Section{}, fmt.Errorf("section is not an object: %w", err)
		}
		return Section{Props: Malformed{Raw: data, Err: err}}, nil
	}

	decode, ok := shapes[w.Type]
	if !ok {
		if strict {
			return Section{ID: w.ID}, fmt.Errorf("unknown section type %q", w.Type)
		}
		return Section{ID: w.ID, Props: Unrecognized{Tag: w.Type, Raw: w.Props}}, nil
	}

	props, err := decode(w.Props, strict)
	if err != nil {
		if strict {
			return Section{ID: w.ID}, fmt.Errorf("invalid props for %q: %w", w.Type, err)
		}
		return Section{ID: w.ID, Props: Malformed{Tag: w.Type, Raw: w.Props, Err: err}}, nil
	}
	return Section{ID: w.ID, Props: props}, nil
}
