package tiktok

import (
	"strings"

	"clip-publisher/internal/model"
)

// keywordEmojis maps caption keywords to a matching emoji. First hit wins;
// the music note is the fallback since everything here ships with a track.
var keywordEmojis = []struct {
	keyword string
	emoji   string
}{
	{"love", "❤️"},
	{"heart", "❤️"},
	{"fire", "\U0001f525"},
	{"hot", "\U0001f525"},
	{"night", "\U0001f319"},
	{"dream", "✨"},
	{"star", "✨"},
	{"dance", "\U0001f57a"},
	{"party", "\U0001f389"},
	{"sad", "\U0001f97a"},
	{"cry", "\U0001f97a"},
	{"happy", "\U0001f60a"},
	{"smile", "\U0001f60a"},
}

const defaultEmoji = "\U0001f3b5"

// pickEmoji chooses an emoji for the caption by keyword match.
func pickEmoji(caption string) string {
	lower := strings.ToLower(caption)
	for _, ke := range keywordEmojis {
		if strings.Contains(lower, ke.keyword) {
			return ke.emoji
		}
	}
	return defaultEmoji
}

// decorateCaption appends an emoji and caps the caption at TikTok's limit.
func decorateCaption(caption string) string {
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return defaultEmoji
	}
	decorated := caption + " " + pickEmoji(caption)
	if len(decorated) > captionMax {
		return model.Truncate(caption, captionMax)
	}
	return decorated
}
