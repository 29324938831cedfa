package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type savePageBody struct {
	Title string `json:"title" validate:"required,max=10"`
	Align string `json:"align" validate:"omitempty,oneof=left center"`
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(savePageBody{Title: "Home"}))

	err := ValidateStruct(savePageBody{Align: "right"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title is required")
	assert.Contains(t, err.Error(), "align must be one of: left center")

	err = ValidateStruct(savePageBody{Title: "a much longer title"})
	require.Error(t, err)
	assert.Equal(t, "title must be at most 10", err.Error())
}

func TestRFC3339RoundTrip(t *testing.T) {
	now := time.Date(2026, 2, 3, 4, 5, 6, 7000, time.UTC)

	parsed, err := ParseRFC3339(FormatRFC3339(now))

	require.NoError(t, err)
	assert.True(t, now.Equal(parsed))
	assert.Equal(t, now, FixedClock(now).Now())
}

func TestParseStoredTime(t *testing.T) {
	zero, err := ParseStoredTime("")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	parsed, err := ParseStoredTime("2026-02-03T04:05:06Z")
	require.NoError(t, err)
	assert.Equal(t, 2026, parsed.Year())

	_, err = ParseStoredTime("not a time")
	assert.ErrorContains(t, err, `"not a time"`)
}
