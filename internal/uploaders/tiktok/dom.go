package tiktok

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"clip-publisher/internal/model"
)

const captionMax = 2200

const captionEditorJS = `document.querySelector('div[contenteditable="true"]')`

// dismissObstructions sweeps away the joyride tours, cookie banners and
// modals TikTok layers over the upload page. Best effort: a selector that
// matches nothing is not an error.
func dismissObstructions(ctx context.Context) {
	js := `
		(function() {
			let dismissed = 0;
			const exact = [
				'button[aria-label="Close"]',
				'div[class*="joyride"] button',
				'div[id*="joyride"] button',
			];
			for (const sel of exact) {
				for (const btn of document.querySelectorAll(sel)) {
					btn.click();
					dismissed++;
				}
			}
			const texts = ['skip', 'got it', 'not now', 'close', 'decline all'];
			for (const btn of document.querySelectorAll('button')) {
				const t = (btn.textContent || '').trim().toLowerCase();
				if (texts.includes(t)) {
					btn.click();
					dismissed++;
				}
			}
			return dismissed;
		})()
	`
	var dismissed int
	_ = chromedp.Run(ctx, chromedp.Evaluate(js, &dismissed))
}

// onLoginPage reports whether the browser was bounced to the login screen,
// which means the replayed session is dead.
func onLoginPage(ctx context.Context) bool {
	var loc string
	if err := chromedp.Run(ctx, chromedp.Location(&loc)); err != nil {
		return false
	}
	return strings.Contains(loc, "/login")
}

// readySignals are the independent weak hints that the attached video has
// been accepted and preprocessed. None is guaranteed by the markup.
type readySignals struct {
	ProcessingGone bool `json:"processingGone"`
	EditorPresent  bool `json:"editorPresent"`
	PostPresent    bool `json:"postPresent"`
}

// ready treats the signals as any-of evidence: the caption editor rendering
// is enough on its own, as is the processing indicator clearing with the
// post button visible. Requiring all of them would let one unmatched
// selector eat the whole timeout on every upload.
func (s readySignals) ready() bool {
	return s.EditorPresent || (s.ProcessingGone && s.PostPresent)
}

// waitVideoReady waits for TikTok to accept and preprocess the attached file.
// After a minimum settle delay it polls the weak signals; if none fire before
// the deadline it proceeds anyway, since absence does not prove failure.
func waitVideoReady(ctx context.Context, settle, timeout time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(settle):
	}

	js := `
		(function() {
			const processing = document.querySelector('div[class*="uploading"], div[class*="progress-bar"]');
			const editor = ` + captionEditorJS + `;
			const post = document.querySelector('button[data-e2e="post_video_button"]');
			return { processingGone: !processing, editorPresent: !!editor, postPresent: !!post };
		})()
	`
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		var sig readySignals
		if err := chromedp.Run(ctx, chromedp.Evaluate(js, &sig)); err == nil && sig.ready() {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(2 * time.Second):
		}
	}
	return false
}

// fillCaption replaces the editor's prefilled text with the caption. The
// editor is a rich-text widget that ignores value assignment, so the text
// goes in through the clipboard; if the paste visibly failed, fall back to
// typing it key by key.
func fillCaption(ctx context.Context, caption string) error {
	caption = model.Truncate(caption, captionMax)

	// Clear whatever TikTok prefilled (usually the filename).
	err := chromedp.Run(ctx,
		chromedp.Click(`div[contenteditable="true"]`, chromedp.ByQuery),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.KeyEvent("a", chromedp.KeyModifiers(input.ModifierCtrl)),
		chromedp.Sleep(200*time.Millisecond),
		chromedp.KeyEvent(kb.Delete),
		chromedp.Sleep(500*time.Millisecond),
	)
	if err != nil {
		return fmt.Errorf("clear caption editor: %w", err)
	}

	var leftover string
	_ = chromedp.Run(ctx, chromedp.Evaluate(`(`+captionEditorJS+`?.textContent || '').trim()`, &leftover))
	if leftover != "" {
		// Second sweep; some builds need two passes to drop the placeholder.
		_ = chromedp.Run(ctx,
			chromedp.KeyEvent("a", chromedp.KeyModifiers(input.ModifierCtrl)),
			chromedp.KeyEvent(kb.Delete),
		)
	}

	if err := pasteCaption(ctx, caption); err == nil {
		var got string
		_ = chromedp.Run(ctx, chromedp.Evaluate(`(`+captionEditorJS+`?.textContent || '')`, &got))
		if len(got) >= 5 || len(got) >= len(caption) {
			return nil
		}
	}

	// Keystroke fallback: slow but markup-independent.
	return chromedp.Run(ctx,
		chromedp.Click(`div[contenteditable="true"]`, chromedp.ByQuery),
		chromedp.SendKeys(`div[contenteditable="true"]`, caption, chromedp.ByQuery),
	)
}

// pasteCaption pushes the caption through the browser clipboard and sends
// ctrl-v to the focused editor.
func pasteCaption(ctx context.Context, caption string) error {
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return browser.GrantPermissions([]browser.PermissionType{
			browser.PermissionTypeClipboardReadWrite,
			browser.PermissionTypeClipboardSanitizedWrite,
		}).Do(ctx)
	}))
	if err != nil {
		return fmt.Errorf("grant clipboard permission: %w", err)
	}

	writeJS := fmt.Sprintf(`navigator.clipboard.writeText(%q)`, caption)
	return chromedp.Run(ctx,
		chromedp.Evaluate(writeJS, nil, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
		chromedp.Click(`div[contenteditable="true"]`, chromedp.ByQuery),
		chromedp.KeyEvent("v", chromedp.KeyModifiers(input.ModifierCtrl)),
		chromedp.Sleep(time.Second),
	)
}

// waitPostReady polls the post button's disabled state. When the deadline
// passes the caller clicks anyway; a stuck aria attribute is more common
// than a genuinely unready upload.
func waitPostReady(ctx context.Context, timeout time.Duration) bool {
	js := `
		(function() {
			const btn = document.querySelector('button[data-e2e="post_video_button"]');
			if (!btn) return false;
			return !btn.disabled && btn.getAttribute('aria-disabled') !== 'true';
		})()
	`
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		var enabled bool
		if err := chromedp.Run(ctx, chromedp.Evaluate(js, &enabled)); err == nil && enabled {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(2 * time.Second):
		}
	}
	return false
}

// clickPost presses the post button, preferring the data-e2e hook and
// falling back to a text match.
func clickPost(ctx context.Context) error {
	js := `
		(function() {
			let btn = document.querySelector('button[data-e2e="post_video_button"]');
			if (!btn) {
				btn = Array.from(document.querySelectorAll('button')).find(b =>
					(b.textContent || '').trim().toLowerCase() === 'post');
			}
			if (!btn) return false;
			btn.click();
			return true;
		})()
	`
	var clicked bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(js, &clicked)); err != nil {
		return err
	}
	if !clicked {
		return fmt.Errorf("post button not found")
	}
	return nil
}

// confirmPostDialog accepts the "Post now" confirmation dialog that appears
// for immediate posts. Scheduled posts skip it, so absence is fine.
func confirmPostDialog(ctx context.Context) {
	js := `
		(function() {
			const btn = Array.from(document.querySelectorAll('button')).find(b => {
				const t = (b.textContent || '').trim().toLowerCase();
				return t === 'post now' || t === 'post';
			});
			if (btn && btn.closest('[role="dialog"]')) {
				btn.click();
				return true;
			}
			return false;
		})()
	`
	var clicked bool
	_ = chromedp.Run(ctx, chromedp.Evaluate(js, &clicked))
}

// waitOutcome polls for success signals after submission: the manage-posts
// redirect, the "uploaded" toast, or the upload form resetting. Returns
// (success, verified). A silent timeout reports success with verified=false,
// because the post usually went through and a blind retry would double-post.
func waitOutcome(ctx context.Context, timeout time.Duration) (bool, bool) {
	js := `
		(function() {
			if (location.href.includes('/content') || location.href.includes('/manage')) return 'redirect';
			const bodyText = document.body ? document.body.innerText.toLowerCase() : '';
			if (bodyText.includes('your video has been uploaded') || bodyText.includes('video published')) return 'toast';
			if (bodyText.includes('something went wrong') || bodyText.includes('failed to upload')) return 'error';
			return '';
		})()
	`
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		var signal string
		if err := chromedp.Run(ctx, chromedp.Evaluate(js, &signal)); err == nil {
			switch signal {
			case "redirect", "toast":
				return true, true
			case "error":
				return false, true
			}
		}
		select {
		case <-ctx.Done():
			return false, false
		case <-time.After(2 * time.Second):
		}
	}
	return true, false
}
