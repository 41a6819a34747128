// Package tiktok publishes videos by driving the tiktok.com upload page with
// a headless browser. TikTok has no public upload API, so the uploader is a
// state machine over a session-cookie login, the upload form, the schedule
// picker and the post-submit signals.
package tiktok

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"clip-publisher/internal/logging"
	"clip-publisher/internal/model"
	"clip-publisher/internal/progress"
	"clip-publisher/internal/schedule"
	"clip-publisher/internal/store"
)

const uploadURL = "https://www.tiktok.com/upload"

// Uploader drives the TikTok upload page. The cookie jar lives in an
// injected store; logging in is a separate interactive step (cmd/tiktok-login)
// that seeds the jar.
type Uploader struct {
	cookies       store.Store
	screenshotDir string
	headless      bool
	log           *logging.Logger

	// hasSession caches jar presence so IsConfigured stays a local check
	// even when the store is S3-backed. It is read once at construction
	// and tracked through Clear/snapshot afterwards.
	hasSession bool

	// timeouts are fields so tests can shrink them.
	browserTimeout time.Duration
	settleDelay    time.Duration
	readyTimeout   time.Duration
	postTimeout    time.Duration
	resultTimeout  time.Duration

	now func() time.Time
}

func NewUploader(cookies store.Store, screenshotDir string, headless bool, log *logging.Logger) *Uploader {
	_, ok, err := cookies.Load(context.Background())
	return &Uploader{
		cookies:        cookies,
		screenshotDir:  screenshotDir,
		headless:       headless,
		log:            log,
		hasSession:     err == nil && ok,
		browserTimeout: 10 * time.Minute,
		settleDelay:    10 * time.Second,
		readyTimeout:   90 * time.Second,
		postTimeout:    60 * time.Second,
		resultTimeout:  60 * time.Second,
		now:            time.Now,
	}
}

func (u *Uploader) Platform() string {
	return "tiktok"
}

func (u *Uploader) IsConfigured() bool {
	return u.hasSession
}

// Upload publishes one video. Every exit path returns a terminal Result with
// a nil error: a failed browser run may still have posted the video, so
// retrying blindly risks a duplicate post.
func (u *Uploader) Upload(ctx context.Context, req *model.UploadRequest, cb progress.Func) (*model.UploadResult, error) {
	// Validate the schedule before any browser work.
	var scheduleAt *time.Time
	if req.PublishAt != nil {
		rounded, err := schedule.ValidateAndRoundTikTok(*req.PublishAt, u.now())
		if err != nil {
			return model.Failed("tiktok", "invalid schedule: "+err.Error()), nil
		}
		scheduleAt = &rounded
	}

	jar, err := u.loadSession(ctx)
	if err != nil {
		u.log.Errorf("tiktok session: %v", err)
		return model.Failed("tiktok", "cannot read saved session, log in again"), nil
	}
	if len(jar) == 0 {
		return model.Failed("tiktok", "no saved session, log in first"), nil
	}

	browserCtx, cancel := u.newBrowser(ctx)
	defer cancel()
	report(cb, 0.1)

	res := u.run(browserCtx, req, scheduleAt, jar, cb)

	// Re-persist cookies on exit so refreshed session tokens survive — except
	// when the session was just discarded: snapshotting the browser then
	// would write the same stale cookies straight back into the jar.
	if shouldPersistSession(res) {
		if err := u.snapshotSession(browserCtx); err != nil {
			u.log.Warnf("tiktok cookie snapshot: %v", err)
		}
	}
	return res, nil
}

// shouldPersistSession reports whether the run left a session worth keeping.
// A result demanding re-authentication means the jar was cleared on purpose.
func shouldPersistSession(res *model.UploadResult) bool {
	return res == nil || res.Details["reauth"] != "required"
}

func (u *Uploader) run(ctx context.Context, req *model.UploadRequest, scheduleAt *time.Time, jar []sessionCookie, cb progress.Func) *model.UploadResult {
	if err := restoreSession(ctx, jar); err != nil {
		u.log.Errorf("tiktok restore session: %v", err)
		return model.Failed("tiktok", "failed to restore browser session")
	}

	if err := chromedp.Run(ctx,
		chromedp.Navigate(uploadURL),
		chromedp.Sleep(5*time.Second),
	); err != nil {
		return u.fail(ctx, "upload page did not load", err)
	}

	if onLoginPage(ctx) {
		// The session is dead. Drop the jar so the next run demands a fresh
		// login instead of replaying bad cookies.
		if err := u.cookies.Clear(ctx); err != nil {
			u.log.Warnf("tiktok clear stale cookies: %v", err)
		}
		u.hasSession = false
		return model.Failed("tiktok", "session expired, log in again").
			WithDetail("reauth", "required")
	}

	dismissObstructions(ctx)

	if err := chromedp.Run(ctx,
		chromedp.WaitVisible(`input[type="file"]`, chromedp.ByQuery),
		chromedp.SetUploadFiles(`input[type="file"]`, []string{req.VideoPath}, chromedp.ByQuery),
	); err != nil {
		return u.fail(ctx, "could not attach video file", err)
	}
	report(cb, 0.3)

	if !waitVideoReady(ctx, u.settleDelay, u.readyTimeout) {
		u.log.Warnf("tiktok readiness signals timed out, proceeding")
	}
	report(cb, 0.5)

	dismissObstructions(ctx)

	caption := decorateCaption(req.Title)
	if err := fillCaption(ctx, caption); err != nil {
		return u.fail(ctx, "could not fill caption", err)
	}
	report(cb, 0.7)

	if scheduleAt != nil {
		if err := applySchedule(ctx, *scheduleAt); err != nil {
			return u.fail(ctx, "could not apply schedule", err)
		}
	}

	if !waitPostReady(ctx, u.postTimeout) {
		u.log.Warnf("tiktok post button never reported enabled, clicking anyway")
	}
	if err := clickPost(ctx); err != nil {
		return u.fail(ctx, "could not submit post", err)
	}
	if scheduleAt == nil {
		// Immediate posts raise a confirmation dialog; scheduled ones do not.
		time.Sleep(2 * time.Second)
		confirmPostDialog(ctx)
	}
	report(cb, 0.9)

	ok, verified := waitOutcome(ctx, u.resultTimeout)
	if !ok && verified {
		return u.fail(ctx, "tiktok reported the upload failed", nil)
	}
	report(cb, 1.0)

	res := model.Succeeded("tiktok", "", "")
	if !verified {
		res.WithDetail("verified", "false")
		u.log.Warnf("tiktok gave no success signal, assuming the post went through")
	}
	if scheduleAt != nil {
		res.WithDetail("scheduled_for", scheduleAt.Format(time.RFC3339))
	}
	return res
}

// fail logs the cause, captures a screenshot for debugging and returns a
// terminal failure.
func (u *Uploader) fail(ctx context.Context, msg string, cause error) *model.UploadResult {
	if cause != nil {
		u.log.Errorf("tiktok: %s: %v", msg, cause)
	} else {
		u.log.Errorf("tiktok: %s", msg)
	}
	u.screenshot(ctx)
	return model.Failed("tiktok", msg)
}

func (u *Uploader) screenshot(ctx context.Context) {
	if u.screenshotDir == "" {
		return
	}
	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		u.log.Warnf("tiktok screenshot: %v", err)
		return
	}
	name := filepath.Join(u.screenshotDir, fmt.Sprintf("tiktok-error-%d.png", u.now().Unix()))
	if err := os.WriteFile(name, buf, 0o644); err != nil {
		u.log.Warnf("tiktok screenshot write: %v", err)
		return
	}
	u.log.Infof("tiktok error screenshot saved: %s", name)
}

// newBrowser starts a Chrome instance scoped to one upload.
func (u *Uploader) newBrowser(ctx context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", u.headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("lang", "en-US"),
		chromedp.WindowSize(1280, 900),
		chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, u.browserTimeout)

	cancel := func() {
		cancelTimeout()
		cancelBrowser()
		cancelAlloc()
	}
	return timeoutCtx, cancel
}

func report(cb progress.Func, f float64) {
	if cb != nil {
		cb(f)
	}
}
