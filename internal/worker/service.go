// Package worker runs publishing in the background: jobs arrive on a channel
// and execute strictly one at a time, with an optional cron trigger that
// publishes whatever sits in the output directory.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"

	"clip-publisher/internal/logging"
	"clip-publisher/internal/outputs"
	"clip-publisher/internal/publisher"
)

// Job is one batch publish request.
type Job struct {
	Videos []publisher.Video
	Mode   string
}

type Service struct {
	pub       *publisher.Publisher
	log       *logging.Logger
	cron      *cron.Cron
	jobs      chan Job
	outputDir string
	autoMode  string
}

func NewService(pub *publisher.Publisher, outputDir string, log *logging.Logger) *Service {
	return &Service{
		pub:       pub,
		log:       log,
		cron:      cron.New(),
		jobs:      make(chan Job, 8),
		outputDir: outputDir,
		autoMode:  "random-1-3",
	}
}

// Enqueue submits a batch for background publishing. It fails fast when the
// queue is full rather than blocking the caller.
func (s *Service) Enqueue(job Job) error {
	if err := publisher.ValidateMode(job.Mode); err != nil {
		return err
	}
	select {
	case s.jobs <- job:
		return nil
	default:
		return errors.New("publish queue is full")
	}
}

// EnqueueOutputDir discovers finished videos and submits them as one batch.
func (s *Service) EnqueueOutputDir(mode string) error {
	videos, err := outputs.List(s.outputDir)
	if err != nil {
		return err
	}
	if len(videos) == 0 {
		return errors.New("no videos in output directory")
	}

	job := Job{Mode: mode}
	for _, v := range videos {
		job.Videos = append(job.Videos, publisher.Video{
			Path:  v.Path,
			Title: v.Title,
		})
	}
	return s.Enqueue(job)
}

// PublishOutputDirOnce publishes the output directory synchronously,
// bypassing the queue. Used by the one-shot CLI mode.
func (s *Service) PublishOutputDirOnce(ctx context.Context, mode string) error {
	if err := publisher.ValidateMode(mode); err != nil {
		return err
	}
	videos, err := outputs.List(s.outputDir)
	if err != nil {
		return err
	}
	if len(videos) == 0 {
		return errors.New("no videos in output directory")
	}

	batch := make([]publisher.Video, 0, len(videos))
	for _, v := range videos {
		batch = append(batch, publisher.Video{Path: v.Path, Title: v.Title})
	}
	results := s.pub.PublishBatch(ctx, batch, mode)
	s.log.Infof("batch finished: %d result(s)", len(results))
	return nil
}

// ScheduleDaily installs a cron trigger that auto-publishes the output
// directory. spec is a standard cron expression.
func (s *Service) ScheduleDaily(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := s.EnqueueOutputDir(s.autoMode); err != nil {
			s.log.Warnf("auto-publish skipped: %v", err)
		}
	})
	return err
}

// Run processes jobs until the context is canceled. Jobs run strictly
// sequentially; an upload in flight finishes before cancellation takes
// effect.
func (s *Service) Run(ctx context.Context) error {
	s.cron.Start()

	for {
		select {
		case <-ctx.Done():
			return s.stop()
		case job := <-s.jobs:
			s.log.Infof("publishing batch of %d video(s), mode=%s", len(job.Videos), job.Mode)
			results := s.pub.PublishBatch(ctx, job.Videos, job.Mode)
			s.log.Infof("batch finished: %d result(s)", len(results))
		}
	}
}

func (s *Service) stop() error {
	ctxStop := s.cron.Stop()
	select {
	case <-ctxStop.Done():
		return nil
	case <-time.After(10 * time.Second):
		return errors.New("cron stop timeout")
	}
}
