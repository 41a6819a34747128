// Package retry re-invokes uploaders on transient failures.
package retry

import (
	"context"
	"time"

	"clip-publisher/internal/model"
)

// Config controls how many extra attempts a transient failure earns and the
// pause between them.
type Config struct {
	MaxRetries int
	Backoff    time.Duration
}

// DefaultConfig matches the historical behavior: two retries, three seconds
// apart.
func DefaultConfig() Config {
	return Config{MaxRetries: 2, Backoff: 3 * time.Second}
}

// UploadFunc performs one upload attempt. A non-nil error marks the attempt
// transient and retryable; a terminal rejection returns a failed Result with
// a nil error.
type UploadFunc func(ctx context.Context) (*model.UploadResult, error)

// Upload invokes f up to 1+MaxRetries times, backing off between attempts.
// It returns the first terminal Result, or the last attempt's Result when
// every attempt erred. The returned Result is never nil.
func Upload(ctx context.Context, platform string, cfg Config, f UploadFunc) *model.UploadResult {
	var last *model.UploadResult

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return model.Failed(platform, "upload canceled: "+ctx.Err().Error())
			case <-time.After(cfg.Backoff):
			}
		}

		res, err := f(ctx)
		if err == nil {
			if res == nil {
				res = model.Failed(platform, "uploader returned no result")
			}
			return res
		}
		if res == nil {
			res = model.Failed(platform, err.Error())
		}
		last = res
	}
	return last
}
