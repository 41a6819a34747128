// Command clip-publisher runs the publishing worker: it watches a job queue,
// optionally triggers daily auto-publishing, and uploads finished videos to
// YouTube, Facebook Reels and TikTok.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"clip-publisher/internal"
	"clip-publisher/internal/history"
	"clip-publisher/internal/logging"
	"clip-publisher/internal/notify"
	"clip-publisher/internal/publisher"
	"clip-publisher/internal/retry"
	"clip-publisher/internal/store"
	"clip-publisher/internal/uploaders"
	"clip-publisher/internal/uploaders/tiktok"
	"clip-publisher/internal/worker"
)

func main() {
	envPaths := []string{".env", "../.env"}
	for _, path := range envPaths {
		_ = godotenv.Load(path)
	}

	publishNow := flag.String("publish", "", "publish the output directory once with the given mode and exit")
	flag.Parse()

	log, err := logging.New("errors.log")
	if err != nil {
		panic(err)
	}
	defer log.Close()

	cfg, err := internal.LoadConfig()
	if err != nil {
		log.Errorf("config: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Infof("shutdown signal received")
		cancel()
	}()

	svc, err := buildService(ctx, cfg, log)
	if err != nil {
		log.Errorf("build service: %v", err)
		return
	}

	if *publishNow != "" {
		if err := svc.PublishOutputDirOnce(ctx, *publishNow); err != nil {
			log.Errorf("publish: %v", err)
		}
		return
	}

	if err := svc.Run(ctx); err != nil {
		log.Errorf("worker stopped: %v", err)
	}
}

func buildService(ctx context.Context, cfg internal.Config, log *logging.Logger) (*worker.Service, error) {
	tokens, err := blobStore(ctx, cfg, cfg.YouTubeTokenPath)
	if err != nil {
		return nil, err
	}
	cookies, err := blobStore(ctx, cfg, cfg.TikTokCookiesPath)
	if err != nil {
		return nil, err
	}

	registry := map[string]uploaders.Uploader{
		"youtube":  uploaders.NewYouTubeUploader(cfg.YouTubeCredentialsPath, tokens, log),
		"facebook": uploaders.NewFacebookUploader(cfg.FacebookPageID, cfg.FacebookAccessToken, log),
		"tiktok":   tiktok.NewUploader(cookies, cfg.ScreenshotDir, cfg.TikTokHeadless, log),
	}

	var ups []uploaders.Uploader
	for _, name := range cfg.Platforms {
		up, ok := registry[name]
		if !ok {
			log.Warnf("unknown platform %q skipped", name)
			continue
		}
		ups = append(ups, up)
	}

	notifier, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID, log)
	if err != nil {
		log.Warnf("telegram disabled: %v", err)
	}

	ledger := history.NewLedger(cfg.HistoryPath)
	retryCfg := retry.Config{MaxRetries: cfg.MaxRetries, Backoff: cfg.RetryBackoff}
	pub := publisher.New(ups, ledger, notifier, retryCfg, log)

	svc := worker.NewService(pub, cfg.OutputDir, log)
	if cfg.PublishCron != "" {
		if err := svc.ScheduleDaily(cfg.PublishCron); err != nil {
			return nil, err
		}
		log.Infof("auto-publish scheduled: %s", cfg.PublishCron)
	}
	return svc, nil
}

func blobStore(ctx context.Context, cfg internal.Config, key string) (store.Store, error) {
	if !cfg.UseS3Stores() {
		return store.NewFileStore(key), nil
	}
	return store.NewS3Store(ctx, store.S3Options{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
	}, key)
}
