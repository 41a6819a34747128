package model

import (
	"time"
	"unicode/utf8"
)

// Privacy is the visibility requested for a published video.
type Privacy string

const (
	PrivacyPublic   Privacy = "public"
	PrivacyPrivate  Privacy = "private"
	PrivacyUnlisted Privacy = "unlisted"
)

// Status tracks an upload through its lifecycle. Success and Failed are the
// only terminal states.
type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// UploadRequest carries everything needed to publish one video to one
// platform. It is built once per upload attempt and never mutated.
type UploadRequest struct {
	VideoPath   string
	Title       string
	Description string
	Tags        []string
	Privacy     Privacy

	// PublishAt, when set, schedules the post for a future time. The value
	// always carries an explicit offset (Go time.Time includes a location).
	PublishAt *time.Time
}

// UploadResult is the outcome of a single uploader invocation.
//
// Invariants: StatusSuccess implies Error is empty and URL or VideoID is set
// where the platform provides one; StatusFailed implies Error is non-empty.
type UploadResult struct {
	Platform string            `json:"platform"`
	Status   Status            `json:"status"`
	URL      string            `json:"url,omitempty"`
	VideoID  string            `json:"video_id,omitempty"`
	Error    string            `json:"error,omitempty"`
	Details  map[string]string `json:"details,omitempty"`
}

// Succeeded creates a terminal success result.
func Succeeded(platform, url, videoID string) *UploadResult {
	return &UploadResult{
		Platform: platform,
		Status:   StatusSuccess,
		URL:      url,
		VideoID:  videoID,
	}
}

// Failed creates a terminal failure result with a user-facing message.
func Failed(platform, errMsg string) *UploadResult {
	return &UploadResult{
		Platform: platform,
		Status:   StatusFailed,
		Error:    Truncate(errMsg, 200),
	}
}

// WithDetail attaches a key/value pair, allocating the map on first use.
func (r *UploadResult) WithDetail(key, value string) *UploadResult {
	if r.Details == nil {
		r.Details = make(map[string]string)
	}
	r.Details[key] = value
	return r
}

// Truncate caps user-facing strings at max bytes without splitting a UTF-8
// rune; full detail belongs in logs only.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
