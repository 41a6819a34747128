// Command tiktok-login opens a visible browser for an interactive TikTok
// login and saves the session cookies for the uploader to replay.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"clip-publisher/internal"
	"clip-publisher/internal/logging"
	"clip-publisher/internal/store"
	"clip-publisher/internal/uploaders/tiktok"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := internal.LoadConfig()
	if err != nil {
		fmt.Printf("config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New("errors.log")
	if err != nil {
		panic(err)
	}
	defer log.Close()

	ctx := context.Background()

	var cookies store.Store = store.NewFileStore(cfg.TikTokCookiesPath)
	if cfg.UseS3Stores() {
		cookies, err = store.NewS3Store(ctx, store.S3Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
		}, cfg.TikTokCookiesPath)
		if err != nil {
			log.Errorf("s3 store: %v", err)
			os.Exit(1)
		}
	}

	up := tiktok.NewUploader(cookies, cfg.ScreenshotDir, false, log)
	if err := up.Login(ctx, 5*time.Minute); err != nil {
		log.Errorf("tiktok login: %v", err)
		os.Exit(1)
	}
}
