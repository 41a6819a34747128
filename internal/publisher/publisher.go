// Package publisher fans one video out to the configured platforms and
// records every terminal outcome.
package publisher

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"clip-publisher/internal/history"
	"clip-publisher/internal/logging"
	"clip-publisher/internal/model"
	"clip-publisher/internal/notify"
	"clip-publisher/internal/progress"
	"clip-publisher/internal/retry"
	"clip-publisher/internal/schedule"
	"clip-publisher/internal/uploaders"
)

// Video is one publishable item with its metadata.
type Video struct {
	Path        string
	Title       string
	Description string
	Tags        []string
}

// Publisher drives uploads across platforms sequentially, one Request per
// (video, platform).
type Publisher struct {
	uploaders []uploaders.Uploader
	ledger    *history.Ledger
	notifier  notify.Notifier
	retryCfg  retry.Config
	log       *logging.Logger
}

func New(ups []uploaders.Uploader, ledger *history.Ledger, notifier notify.Notifier, retryCfg retry.Config, log *logging.Logger) *Publisher {
	return &Publisher{
		uploaders: ups,
		ledger:    ledger,
		notifier:  notifier,
		retryCfg:  retryCfg,
		log:       log,
	}
}

// Publish uploads one video to every registered platform in order. Each
// platform gets a freshly resolved schedule; batchOffset staggers scheduled
// modes so batches land on consecutive days. Cancellation is honored between
// platform calls, never mid-upload.
func (p *Publisher) Publish(ctx context.Context, video Video, modeKey string, batchOffset int) []*model.UploadResult {
	results := make([]*model.UploadResult, 0, len(p.uploaders))

	for _, up := range p.uploaders {
		if ctx.Err() != nil {
			p.log.Warnf("publish canceled before %s", up.Platform())
			break
		}

		res := p.publishOne(ctx, up, video, modeKey, batchOffset)
		results = append(results, res)

		if p.ledger != nil && res.Status.Terminal() {
			if err := p.ledger.Append(history.RecordOf(video.Path, res)); err != nil {
				p.log.Errorf("history append: %v", err)
			}
		}
		if p.notifier != nil {
			p.notifier.NotifyResult(video.Path, res)
		}
	}
	return results
}

func (p *Publisher) publishOne(ctx context.Context, up uploaders.Uploader, video Video, modeKey string, batchOffset int) *model.UploadResult {
	platform := up.Platform()

	if !up.IsConfigured() {
		// Configuration problems are terminal and must not touch the network.
		return model.Failed(platform, platform+" is not configured")
	}

	privacy, publishAt := schedule.ResolveMode(modeKey, platform, batchOffset)

	req := &model.UploadRequest{
		VideoPath:   video.Path,
		Title:       video.Title,
		Description: video.Description,
		Tags:        normalizeTags(video.Tags),
		Privacy:     privacy,
		PublishAt:   publishAt,
	}

	if publishAt != nil {
		p.log.Infof("%s: scheduling %s for %s", platform, video.Path, publishAt.Format("2006-01-02 15:04 MST"))
	} else {
		p.log.Infof("%s: publishing %s (%s)", platform, video.Path, privacy)
	}

	cb := p.progressFunc(platform)
	res := retry.Upload(ctx, platform, p.retryCfg, func(ctx context.Context) (*model.UploadResult, error) {
		return up.Upload(ctx, req, cb)
	})
	if res.Platform == "" {
		res.Platform = platform
	}
	return res
}

// PublishBatch pushes each video through Publish sequentially, using the
// video's index as the batch offset so scheduled posts spread one per day.
func (p *Publisher) PublishBatch(ctx context.Context, videos []Video, modeKey string) []*model.UploadResult {
	var all []*model.UploadResult
	for i, v := range videos {
		if ctx.Err() != nil {
			p.log.Warnf("batch canceled at video %d of %d", i+1, len(videos))
			break
		}
		all = append(all, p.Publish(ctx, v, modeKey, i)...)
	}
	return all
}

// progressFunc logs coarse progress steps, skipping duplicates so a chunked
// upload does not flood the log.
func (p *Publisher) progressFunc(platform string) progress.Func {
	lastDecile := -1
	return func(f float64) {
		decile := int(f * 10)
		if decile > lastDecile {
			lastDecile = decile
			p.log.Infof("%s: upload %d%%", platform, int(f*100))
		}
	}
}

// normalizeTags trims, drops empties and dedupes while keeping order.
func normalizeTags(tags []string) []string {
	trimmed := lo.FilterMap(tags, func(t string, _ int) (string, bool) {
		t = strings.TrimSpace(t)
		return t, t != ""
	})
	return lo.Uniq(trimmed)
}

// ValidateMode rejects unknown publish modes before any work starts.
func ValidateMode(modeKey string) error {
	if _, ok := schedule.Modes[modeKey]; !ok {
		return fmt.Errorf("unknown publish mode %q", modeKey)
	}
	return nil
}
