package worker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clip-publisher/internal/logging"
	"clip-publisher/internal/publisher"
	"clip-publisher/internal/retry"
)

func emptyService(t *testing.T, outputDir string) *Service {
	t.Helper()
	pub := publisher.New(nil, nil, nil, retry.DefaultConfig(), logging.Discard())
	return NewService(pub, outputDir, logging.Discard())
}

func TestEnqueueRejectsUnknownMode(t *testing.T) {
	svc := emptyService(t, t.TempDir())
	err := svc.Enqueue(Job{Mode: "whenever"})
	assert.Error(t, err)
}

func TestEnqueueOutputDirRequiresVideos(t *testing.T) {
	svc := emptyService(t, t.TempDir())
	err := svc.EnqueueOutputDir("post-now")
	assert.Error(t, err)
}

func TestEnqueueOutputDirPicksUpVideos(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "song_short.mp4"), []byte("v"), 0o644))

	svc := emptyService(t, dir)
	require.NoError(t, svc.EnqueueOutputDir("post-now"))

	select {
	case job := <-svc.jobs:
		require.Len(t, job.Videos, 1)
		assert.Equal(t, "song short", job.Videos[0].Title)
		assert.Equal(t, "post-now", job.Mode)
	default:
		t.Fatal("expected a queued job")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	svc := emptyService(t, t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestScheduleDailyRejectsBadSpec(t *testing.T) {
	svc := emptyService(t, t.TempDir())
	assert.Error(t, svc.ScheduleDaily("not a cron spec"))
	assert.NoError(t, svc.ScheduleDaily("0 9 * * *"))
}
