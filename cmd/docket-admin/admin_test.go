// ABOUTME: Tests for docket-admin argument helpers
// ABOUTME: Covers --since parsing and rendering of allowed status transitions

package main

import (
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinceArg(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	got, err := sinceArg("", now)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = sinceArg("24h", now)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-09T12:00:00Z", got)

	got, err = sinceArg("2026-03-01T08:30:00+02:00", now)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01T06:30:00Z", got)

	for _, bad := range []string{"-1h", "0s", "yesterday", "2026-03-01"} {
		_, err := sinceArg(bad, now)
		assert.Error(t, err, bad)
	}
}

func TestFormatTransitions(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	assert.Equal(t, "REVIEW_REQUIRED, APPROVED, REJECTED", formatTransitions([]string{"REVIEW_REQUIRED", "APPROVED", "REJECTED"}))
	assert.Equal(t, "none (final)", formatTransitions(nil))
}
