package model

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusSuccess.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusUploading.Terminal())
}

func TestFailedTruncatesLongMessages(t *testing.T) {
	res := Failed("youtube", strings.Repeat("x", 500))
	assert.Equal(t, StatusFailed, res.Status)
	assert.Len(t, res.Error, 200)
}

func TestTruncateNeverSplitsRunes(t *testing.T) {
	// 4-byte emoji; 199 falls mid-rune and must back off to a boundary.
	s := strings.Repeat("\U0001f3b5", 60)
	got := Truncate(s, 199)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 196, len(got))

	thai := strings.Repeat("เพลง", 30) // 3-byte runes
	got = Truncate(thai, 100)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 100)
}

func TestTruncateShortStringUnchanged(t *testing.T) {
	assert.Equal(t, "héllo", Truncate("héllo", 10))
}

func TestSucceededInvariant(t *testing.T) {
	res := Succeeded("youtube", "https://youtube.com/shorts/abc", "abc")
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Empty(t, res.Error)
	assert.Equal(t, "abc", res.VideoID)
}

func TestWithDetailAllocatesMap(t *testing.T) {
	res := Succeeded("tiktok", "", "")
	res.WithDetail("verified", "false").WithDetail("scheduled_for", "2025-06-02T13:45:00Z")
	assert.Equal(t, "false", res.Details["verified"])
	assert.Equal(t, "2025-06-02T13:45:00Z", res.Details["scheduled_for"])
}
