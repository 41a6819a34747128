package tiktok

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// Login opens a visible browser on the TikTok login page, waits for the user
// to finish logging in, then snapshots the session cookies into the store.
// It is the interactive seed for the jar Upload replays.
func (u *Uploader) Login(ctx context.Context, timeout time.Duration) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", false),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1280, 900),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	if err := chromedp.Run(browserCtx, chromedp.Navigate("https://www.tiktok.com/login")); err != nil {
		return fmt.Errorf("open login page: %w", err)
	}

	u.log.Infof("log in to TikTok in the opened browser window...")

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		var loc string
		if err := chromedp.Run(browserCtx, chromedp.Location(&loc)); err != nil {
			return fmt.Errorf("poll location: %w", err)
		}
		if !strings.Contains(loc, "/login") {
			// Give post-login redirects a moment to set their cookies.
			time.Sleep(5 * time.Second)
			if err := u.snapshotSession(browserCtx); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			u.log.Infof("TikTok session saved")
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
	return fmt.Errorf("login not completed within %s", timeout)
}
