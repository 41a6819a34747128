package tiktok

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestPickEmojiMatchesKeyword(t *testing.T) {
	assert.Equal(t, "❤️", pickEmoji("a love story"))
	assert.Equal(t, "✨", pickEmoji("Dream On"))
	assert.Equal(t, defaultEmoji, pickEmoji("instrumental track"))
}

func TestPickEmojiIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, pickEmoji("FIRE"), pickEmoji("fire"))
}

func TestDecorateCaptionAppendsEmoji(t *testing.T) {
	got := decorateCaption("midnight rain")
	assert.True(t, strings.HasPrefix(got, "midnight rain "))
	assert.Greater(t, len(got), len("midnight rain "))
}

func TestDecorateCaptionEmptyFallsBackToEmoji(t *testing.T) {
	assert.Equal(t, defaultEmoji, decorateCaption("   "))
}

func TestDecorateCaptionRespectsLimit(t *testing.T) {
	long := strings.Repeat("a", captionMax+50)
	got := decorateCaption(long)
	assert.LessOrEqual(t, len(got), captionMax)
}

func TestDecorateCaptionKeepsMultibyteTextValid(t *testing.T) {
	long := strings.Repeat("เพลงรัก \U0001f3b5 ", 200)
	got := decorateCaption(long)
	assert.LessOrEqual(t, len(got), captionMax)
	assert.True(t, utf8.ValidString(got))
}
