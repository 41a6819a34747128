package schedule

import (
	"fmt"
	"time"
)

// TikTok's scheduler only accepts times on 5-minute boundaries, at least
// 20 minutes out and at most 10 days out.
const (
	tiktokMinLead    = 20 * time.Minute
	tiktokMaxLead    = 10 * 24 * time.Hour
	tiktokMinuteStep = 5
)

// ValidateAndRoundTikTok rounds t's minute up to the next multiple of 5
// (carrying into the hour) and checks the result against TikTok's allowed
// window relative to now. Already-aligned times pass through unchanged, so
// the operation is idempotent.
func ValidateAndRoundTikTok(t, now time.Time) (time.Time, error) {
	rounded := t.Truncate(time.Minute)
	if rem := rounded.Minute() % tiktokMinuteStep; rem != 0 {
		rounded = rounded.Add(time.Duration(tiktokMinuteStep-rem) * time.Minute)
	}

	if min := now.Add(tiktokMinLead); rounded.Before(min) {
		return time.Time{}, fmt.Errorf("schedule time %s is less than 20 minutes from now", rounded.Format(time.RFC3339))
	}
	if max := now.Add(tiktokMaxLead); rounded.After(max) {
		return time.Time{}, fmt.Errorf("schedule time %s is more than 10 days from now", rounded.Format(time.RFC3339))
	}
	return rounded, nil
}
