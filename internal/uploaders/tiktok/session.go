package tiktok

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
)

// sessionCookie is the persisted form of a browser cookie. The jar is a JSON
// array so a jar exported from another tool can be dropped in.
type sessionCookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
}

// loadSession reads the cookie jar from the injected store and drops cookies
// that have already expired. It reports how many cookies were usable.
func (u *Uploader) loadSession(ctx context.Context) ([]sessionCookie, error) {
	raw, ok, err := u.cookies.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cookie jar: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var jar []sessionCookie
	if err := json.Unmarshal(raw, &jar); err != nil {
		return nil, fmt.Errorf("decode cookie jar: %w", err)
	}

	now := float64(time.Now().Unix())
	fresh := jar[:0]
	for _, c := range jar {
		// Expires == 0 marks a session cookie; keep those.
		if c.Expires > 0 && c.Expires < now {
			continue
		}
		fresh = append(fresh, c)
	}
	return fresh, nil
}

// restoreSession replays the jar into the running browser before navigation.
func restoreSession(ctx context.Context, jar []sessionCookie) error {
	return chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range jar {
			param := network.SetCookie(c.Name, c.Value).
				WithDomain(c.Domain).
				WithPath(c.Path).
				WithHTTPOnly(c.HTTPOnly).
				WithSecure(c.Secure)
			if c.Expires > 0 {
				t := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
				param = param.WithExpires(&t)
			}
			if err := param.Do(ctx); err != nil {
				return fmt.Errorf("set cookie %s: %w", c.Name, err)
			}
		}
		return nil
	}))
}

// snapshotSession captures the browser's current cookies and writes them back
// to the store, keeping refreshed session tokens for the next run.
func (u *Uploader) snapshotSession(ctx context.Context) error {
	var jar []sessionCookie
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		cookies, err := storage.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		for _, c := range cookies {
			jar = append(jar, sessionCookie{
				Name:     c.Name,
				Value:    c.Value,
				Domain:   c.Domain,
				Path:     c.Path,
				Expires:  c.Expires,
				HTTPOnly: c.HTTPOnly,
				Secure:   c.Secure,
			})
		}
		return nil
	}))
	if err != nil {
		return fmt.Errorf("read browser cookies: %w", err)
	}

	b, err := json.MarshalIndent(jar, "", "  ")
	if err != nil {
		return err
	}
	if err := u.cookies.Save(ctx, b); err != nil {
		return err
	}
	u.hasSession = true
	return nil
}
