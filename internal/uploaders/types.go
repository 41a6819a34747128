package uploaders

import (
	"context"

	"clip-publisher/internal/model"
	"clip-publisher/internal/progress"
)

// Uploader publishes one video to one platform.
//
// Upload's error convention: a non-nil error marks a transient failure that
// may be retried; platform rejections, configuration problems and automation
// desyncs return a terminal failed Result with a nil error.
type Uploader interface {
	Platform() string

	// IsConfigured reports whether the uploader has the credentials and
	// settings it needs. It performs no network calls.
	IsConfigured() bool

	Upload(ctx context.Context, req *model.UploadRequest, cb progress.Func) (*model.UploadResult, error)
}
