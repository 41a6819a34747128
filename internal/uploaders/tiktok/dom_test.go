package tiktok

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadySignalsAreAnyOf(t *testing.T) {
	// The caption editor alone is enough.
	assert.True(t, readySignals{EditorPresent: true}.ready())

	// Processing cleared with the post button rendered is enough even if the
	// editor selector never matched.
	assert.True(t, readySignals{ProcessingGone: true, PostPresent: true}.ready())

	// A cleared processing indicator alone proves nothing: it also matches
	// a page that never started processing.
	assert.False(t, readySignals{ProcessingGone: true}.ready())
	assert.False(t, readySignals{PostPresent: true}.ready())
	assert.False(t, readySignals{}.ready())
}
