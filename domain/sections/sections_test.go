package sections

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_MixedKnownAndUnknownTypes(t *testing.T) {
	// Arrange
	data := []byte(`[
		{"id":"a","type":"hero","props":{"headline":"X"}},
		{"id":"b","type":"doesNotExist","props":{}},
		{"id":"c","type":"faqSection","props":{"items":[]}}
	]`)

	// Act
	list, err := Decode(data)

	// Assert
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, HeroProps{Headline: "X"}, list[0].Props)

	unknown, ok := list[1].Props.(Unrecognized)
	require.True(t, ok, "expected Unrecognized, got %T", list[1].Props)
	assert.Equal(t, Type("doesNotExist"), unknown.Tag)
	assert.Equal(t, Type("doesNotExist"), list[1].Type())

	assert.Equal(t, TypeFAQ, list[2].Type())
	assert.Empty(t, list[2].Props.(FAQProps).Items)
}

func TestDecode_MalformedProps(t *testing.T) {
	list, err := Decode([]byte(`[{"id":"h","type":"hero","props":{"headline":42}}]`))

	require.NoError(t, err)
	require.Len(t, list, 1)
	malformed, ok := list[0].Props.(Malformed)
	require.True(t, ok)
	assert.Equal(t, TypeHero, malformed.Tag)
	assert.Error(t, malformed.Err)
}

func TestDecode_NonObjectElementIsMalformed(t *testing.T) {
	list, err := Decode([]byte(`[7, {"id":"q","type":"quoteBlock","props":{"quote":"Q"}}]`))

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.IsType(t, Malformed{}, list[0].Props)
	assert.Equal(t, QuoteProps{Quote: "Q"}, list[1].Props)
}

func TestDecode_EmptyInputs(t *testing.T) {
	for _, input := range []string{"", "null", "  ", "[]"} {
		list, err := Decode([]byte(input))
		require.NoError(t, err, "input %q", input)
		assert.NotNil(t, list, "input %q", input)
		assert.Empty(t, list, "input %q", input)
	}
}

func TestDecode_NotAnArray(t *testing.T) {
	_, err := Decode([]byte(`{"id":"a"}`))
	assert.Error(t, err)
}

func TestDecode_MissingPropsDecodeAsEmpty(t *testing.T) {
	list, err := Decode([]byte(`[{"id":"q","type":"quoteBlock"}]`))

	require.NoError(t, err)
	assert.Equal(t, QuoteProps{}, list[0].Props)
}

func TestDecodeStrict_RejectsUnknownTypeAndFields(t *testing.T) {
	data := []byte(`[
		{"id":"a","type":"hero","props":{"headline":"X","colour":"red"}},
		{"id":"b","type":"doesNotExist","props":{}},
		{"id":"c","type":"quoteBlock","props":{"quote":"ok"}}
	]`)

	list, err := DecodeStrict(data)

	assert.Nil(t, list)
	verr, ok := AsValidationError(err)
	require.True(t, ok)
	require.Len(t, verr.Problems, 2)
	assert.Equal(t, 0, verr.Problems[0].Index)
	assert.Equal(t, "a", verr.Problems[0].SectionID)
	assert.Equal(t, 1, verr.Problems[1].Index)
	assert.Contains(t, verr.Problems[1].Message, "doesNotExist")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		list       []Section
		wantFields []string
	}{
		{
			name: "valid list",
			list: []Section{
				New("hero", HeroProps{Headline: "Loops beat funnels"}),
				New("faq", FAQProps{Items: []FAQItem{{Question: "Why?", Answer: "Because."}}}),
			},
		},
		{
			name:       "missing id",
			list:       []Section{New("", QuoteProps{Quote: "Q"})},
			wantFields: []string{"id"},
		},
		{
			name: "duplicate id",
			list: []Section{
				New("x", QuoteProps{Quote: "Q"}),
				New("x", QuoteProps{Quote: "R"}),
			},
			wantFields: []string{"id"},
		},
		{
			name:       "required prop",
			list:       []Section{New("h", HeroProps{})},
			wantFields: []string{"props.headline"},
		},
		{
			name:       "nested dive",
			list:       []Section{New("f", FAQProps{Items: []FAQItem{{Question: "Q"}}})},
			wantFields: []string{"props.items[0].answer"},
		},
		{
			name:       "empty list element",
			list:       []Section{New("f", FAQProps{})},
			wantFields: []string{"props.items"},
		},
		{
			name:       "unrecognized",
			list:       []Section{New("u", Unrecognized{Tag: "carousel"})},
			wantFields: []string{"type"},
		},
		{
			name:       "nil props",
			list:       []Section{{ID: "n"}},
			wantFields: []string{"props"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.list)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}
			verr, ok := AsValidationError(err)
			require.True(t, ok, "expected *ValidationError, got %v", err)
			var fields []string
			for _, p := range verr.Problems {
				fields = append(fields, p.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestSection_JSONRoundTripKeepsUntypedContent(t *testing.T) {
	input := `[{"id":"b","type":"doesNotExist","props":{"k":1}},{"id":"a","type":"hero","props":{"headline":"X"}}]`

	list, err := Decode([]byte(input))
	require.NoError(t, err)

	out, err := json.Marshal(list)
	require.NoError(t, err)
	assert.JSONEq(t, input, string(out))
}

func TestAssignMissingIDs(t *testing.T) {
	n := 0
	gen := func() string { n++; return "gen-" + string(rune('0'+n)) }
	list := []Section{New("", QuoteProps{Quote: "a"}), New("keep", QuoteProps{Quote: "b"}), New("", QuoteProps{Quote: "c"})}

	AssignMissingIDs(list, gen)

	assert.Equal(t, []string{"gen-1", "keep", "gen-2"}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestTypes_SortedAndKnown(t *testing.T) {
	types := Types()

	assert.Len(t, types, 10)
	assert.True(t, slices.IsSorted(types))
	for _, typ := range types {
		assert.True(t, Known(typ))
	}
	assert.False(t, Known("doesNotExist"))
}
