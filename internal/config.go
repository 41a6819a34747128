package internal

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Directory the finished videos land in.
	OutputDir string

	// YouTube
	YouTubeCredentialsPath string
	YouTubeTokenPath       string

	// Facebook
	FacebookPageID      string
	FacebookAccessToken string

	// TikTok
	TikTokCookiesPath string
	TikTokHeadless    bool
	ScreenshotDir     string

	// Optional S3 backing for tokens and cookie jars. When the bucket is set
	// the stores live in S3 instead of local files.
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string

	// Optional Telegram outcome notifications.
	TelegramToken  string
	TelegramChatID int64

	HistoryPath string
	PublishMode string
	Platforms   []string

	// Daily auto-publish trigger, cron expression. Empty disables it.
	PublishCron string

	MaxRetries   int
	RetryBackoff time.Duration
}

func LoadConfig() (Config, error) {
	cfg := Config{
		OutputDir:              getenvDefault("OUTPUT_DIR", "output"),
		YouTubeCredentialsPath: getenvDefault("YOUTUBE_CREDENTIALS", "client_secrets.json"),
		YouTubeTokenPath:       getenvDefault("YOUTUBE_TOKEN", "youtube_token.json"),
		FacebookPageID:         os.Getenv("FACEBOOK_PAGE_ID"),
		FacebookAccessToken:    os.Getenv("FACEBOOK_ACCESS_TOKEN"),
		TikTokCookiesPath:      getenvDefault("TIKTOK_COOKIES", "tiktok_cookies.json"),
		TikTokHeadless:         os.Getenv("TIKTOK_HEADLESS") != "false",
		ScreenshotDir:          getenvDefault("SCREENSHOT_DIR", "."),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    os.Getenv("S3_REGION"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3AccessKey: firstNonEmpty(os.Getenv("S3_ACCESS_KEY"), os.Getenv("S3_ACCESS_KEY_ID")),
		S3SecretKey: firstNonEmpty(os.Getenv("S3_SECRET_ACCESS_KEY"), os.Getenv("S3_SECRET_ACCESS_KEY_ID")),

		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),

		HistoryPath: getenvDefault("HISTORY_PATH", "upload_history.json"),
		PublishMode: getenvDefault("PUBLISH_MODE", "post-now"),
		Platforms:   []string{"youtube", "facebook", "tiktok"},
		PublishCron: os.Getenv("PUBLISH_CRON"),

		MaxRetries:   2,
		RetryBackoff: 3 * time.Second,
	}

	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.TelegramChatID = n
		}
	}
	if v := os.Getenv("PLATFORMS"); v != "" {
		cfg.Platforms = splitCSV(v)
	}
	if v := os.Getenv("MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("RETRY_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RetryBackoff = d
		}
	}

	if len(cfg.Platforms) == 0 {
		return cfg, errors.New("PLATFORMS resolved to an empty list")
	}
	return cfg, nil
}

// UseS3Stores reports whether token and cookie blobs should live in S3.
func (c Config) UseS3Stores() bool {
	return c.S3Bucket != ""
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
