package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAndRoundTikTokRoundsUpToFiveMinutes(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	got, err := ValidateAndRoundTikTok(now.Add(62*time.Minute), now)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Minute())
	assert.Zero(t, got.Second())
}

func TestValidateAndRoundTikTokCarriesIntoNextHour(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	in := time.Date(2025, 6, 1, 13, 58, 30, 0, time.UTC)

	got, err := ValidateAndRoundTikTok(in, now)
	require.NoError(t, err)
	assert.Equal(t, 14, got.Hour())
	assert.Equal(t, 0, got.Minute())
}

func TestValidateAndRoundTikTokIdempotentOnAlignedTimes(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	in := time.Date(2025, 6, 2, 13, 45, 0, 0, time.UTC)

	once, err := ValidateAndRoundTikTok(in, now)
	require.NoError(t, err)
	twice, err := ValidateAndRoundTikTok(once, now)
	require.NoError(t, err)
	assert.True(t, once.Equal(in))
	assert.True(t, twice.Equal(once))
}

func TestValidateAndRoundTikTokBounds(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	_, err := ValidateAndRoundTikTok(now.Add(5*time.Minute), now)
	assert.Error(t, err, "5 minutes out is below the 20 minute minimum")

	_, err = ValidateAndRoundTikTok(now.Add(25*time.Minute), now)
	assert.NoError(t, err, "25 minutes out is allowed")

	_, err = ValidateAndRoundTikTok(now.Add(11*24*time.Hour), now)
	assert.Error(t, err, "11 days out is beyond the 10 day maximum")

	_, err = ValidateAndRoundTikTok(now.Add(9*24*time.Hour+23*time.Hour), now)
	assert.NoError(t, err, "9 days 23 hours out is allowed")
}

func TestValidateAndRoundTikTokRoundingCanCrossMinimum(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// 18 minutes out rounds up to 20, landing exactly on the minimum.
	got, err := ValidateAndRoundTikTok(now.Add(18*time.Minute), now)
	require.NoError(t, err)
	assert.True(t, got.Equal(now.Add(20*time.Minute)))
}
