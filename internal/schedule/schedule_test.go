package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clip-publisher/internal/model"
)

func withFixedNow(t *testing.T, now time.Time) {
	t.Helper()
	old := nowFunc
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() { nowFunc = old })
}

func inWindow(windows []HourRange, hour int) bool {
	for _, w := range windows {
		if hour >= w.Start && hour < w.End {
			return true
		}
	}
	return false
}

func TestCalculatePublishTimeLandsInPeakWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	withFixedNow(t, now)

	for _, platform := range []string{"youtube", "tiktok", "facebook"} {
		for i := 0; i < 200; i++ {
			got := CalculatePublishTime(platform, 1)

			assert.Equal(t, ICT, got.Location())
			assert.True(t, inWindow(PeakWindows(platform), got.Hour()),
				"%s: hour %d outside peak windows", platform, got.Hour())
			assert.Contains(t, []int{0, 15, 30, 45}, got.Minute())
			assert.Zero(t, got.Second())
		}
	}
}

func TestCalculatePublishTimeDayOffset(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	withFixedNow(t, now)

	wantDay := now.In(ICT).AddDate(0, 0, 3)
	got := CalculatePublishTime("youtube", 3)
	assert.Equal(t, wantDay.Year(), got.Year())
	assert.Equal(t, wantDay.Month(), got.Month())
	assert.Equal(t, wantDay.Day(), got.Day())
}

func TestCalculatePublishTimeUnknownPlatformFallsBack(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	withFixedNow(t, now)

	got := CalculatePublishTime("vimeo", 1)
	assert.True(t, inWindow(peakWindows["youtube"], got.Hour()))
}

func TestResolveModeNonScheduled(t *testing.T) {
	cases := map[string]model.Privacy{
		"post-now": model.PrivacyPublic,
		"private":  model.PrivacyPrivate,
		"unlisted": model.PrivacyUnlisted,
	}
	for mode, want := range cases {
		privacy, at := ResolveMode(mode, "youtube", 0)
		assert.Equal(t, want, privacy, mode)
		assert.Nil(t, at, mode)
	}
}

func TestResolveModeScheduledIsPublicWithTime(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	withFixedNow(t, now)

	privacy, at := ResolveMode("tomorrow", "youtube", 0)
	require.NotNil(t, at)
	assert.Equal(t, model.PrivacyPublic, privacy)
	assert.Equal(t, now.In(ICT).AddDate(0, 0, 1).Day(), at.Day())
}

func TestResolveModeRandomDaysWithinRange(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	withFixedNow(t, now)

	today := now.In(ICT)
	seen := map[int]bool{}
	for i := 0; i < 300; i++ {
		_, at := ResolveMode("random-1-3", "tiktok", 0)
		require.NotNil(t, at)
		days := at.YearDay() - today.YearDay()
		assert.GreaterOrEqual(t, days, 1)
		assert.LessOrEqual(t, days, 3)
		seen[days] = true
	}
	// All three offsets should show up over 300 draws.
	assert.Len(t, seen, 3)
}

func TestResolveModeBatchOffsetStaggersDays(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	withFixedNow(t, now)

	var prev time.Time
	for offset := 0; offset < 3; offset++ {
		_, at := ResolveMode("tomorrow", "youtube", offset)
		require.NotNil(t, at)
		if offset > 0 {
			assert.Equal(t, prev.AddDate(0, 0, 1).Day(), at.Day(),
				"offset %d should land one day after offset %d", offset, offset-1)
		}
		prev = *at
	}
}

func TestResolveModeUnknownDefaultsToPublicNow(t *testing.T) {
	privacy, at := ResolveMode("bogus", "youtube", 0)
	assert.Equal(t, model.PrivacyPublic, privacy)
	assert.Nil(t, at)
}
