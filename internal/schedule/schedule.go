// Package schedule resolves symbolic publish modes into concrete per-platform
// timestamps inside peak-engagement windows.
package schedule

import (
	"math/rand"
	"time"

	"clip-publisher/internal/model"
)

// ICT is the fixed civil calendar all publish times are computed in.
var ICT = time.FixedZone("ICT", 7*3600) // UTC+7

// RandomDays marks a mode whose day offset is drawn from [1,3] at call time,
// not at definition time.
const RandomDays = -1

// Mode is a symbolic scheduling choice presented to the caller.
type Mode struct {
	// Privacy applies when the mode carries no day offset.
	Privacy model.Privacy
	// Scheduled marks modes that resolve to a future timestamp.
	Scheduled bool
	// Days is the offset from today, or RandomDays.
	Days int
}

// Modes maps the dropdown labels to their scheduling behavior.
var Modes = map[string]Mode{
	"post-now":   {Privacy: model.PrivacyPublic},
	"private":    {Privacy: model.PrivacyPrivate},
	"unlisted":   {Privacy: model.PrivacyUnlisted},
	"tomorrow":   {Scheduled: true, Days: 1},
	"in-2-days":  {Scheduled: true, Days: 2},
	"random-1-3": {Scheduled: true, Days: RandomDays},
}

// HourRange is a half-open [Start, End) hour window in ICT.
type HourRange struct {
	Start int
	End   int
}

// peakWindows lists disjoint engagement windows per platform, ordered by
// start hour.
var peakWindows = map[string][]HourRange{
	"youtube":  {{11, 14}, {18, 22}},
	"tiktok":   {{12, 15}, {19, 23}},
	"facebook": {{9, 12}, {18, 21}},
}

var quarterMinutes = []int{0, 15, 30, 45}

// nowFunc is swapped in tests.
var nowFunc = time.Now

// PeakWindows returns the declared windows for a platform, falling back to
// the YouTube table for unknown platforms.
func PeakWindows(platform string) []HourRange {
	if w, ok := peakWindows[platform]; ok {
		return w
	}
	return peakWindows["youtube"]
}

// CalculatePublishTime computes now + daysOffset in ICT, picks one of the
// platform's peak windows uniformly at random, an hour uniformly within it,
// and a minute from {0,15,30,45}.
func CalculatePublishTime(platform string, daysOffset int) time.Time {
	day := nowFunc().In(ICT).AddDate(0, 0, daysOffset)

	windows := PeakWindows(platform)
	w := windows[rand.Intn(len(windows))]
	hour := w.Start + rand.Intn(w.End-w.Start)
	minute := quarterMinutes[rand.Intn(len(quarterMinutes))]

	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, ICT)
}

// ResolveMode resolves a publish mode into (privacy, publish time) for one
// platform. Non-scheduled modes return their literal privacy and no schedule.
// Scheduled modes resolve the day offset at call time, add batchOffset so a
// batch of N videos lands on N consecutive days, and always post public.
func ResolveMode(modeKey, platform string, batchOffset int) (model.Privacy, *time.Time) {
	mode, ok := Modes[modeKey]
	if !ok {
		return model.PrivacyPublic, nil
	}
	if !mode.Scheduled {
		return mode.Privacy, nil
	}

	days := mode.Days
	if days == RandomDays {
		days = 1 + rand.Intn(3)
	}
	days += batchOffset

	t := CalculatePublishTime(platform, days)
	return model.PrivacyPublic, &t
}
