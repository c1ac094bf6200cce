package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStoreDate(t *testing.T) {
	got, err := ParseStoreDate("2026-03-09 07:30:00.000Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 9, 7, 30, 0, 0, time.UTC), got)

	// Without fractional seconds.
	got, err = ParseStoreDate("2026-03-09 07:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 9, 7, 30, 0, 0, time.UTC), got)

	_, err = ParseStoreDate("not a date")
	assert.Error(t, err)
}

func TestFormatStoreDate(t *testing.T) {
	in := time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC)
	s := FormatStoreDate(in)
	assert.Equal(t, "2026-03-09 23:30:00.000Z", s)

	back, err := ParseStoreDate(s)
	require.NoError(t, err)
	assert.True(t, back.Equal(in))
}
