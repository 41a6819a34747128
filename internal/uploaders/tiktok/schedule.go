package tiktok

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// maxMonthSteps bounds calendar navigation; the scheduler never needs to move
// more than one month for a 10-day horizon, but a missed click should not
// loop forever.
const maxMonthSteps = 12

// applySchedule drives TikTok's schedule picker: enable the toggle, walk the
// calendar to the target month, click the day, then pick hour and minute from
// the index lists. The time must already be validated and 5-minute aligned.
func applySchedule(ctx context.Context, t time.Time) error {
	if err := enableScheduleToggle(ctx); err != nil {
		return err
	}
	if err := pickCalendarDay(ctx, t); err != nil {
		return err
	}
	return pickTime(ctx, t)
}

func enableScheduleToggle(ctx context.Context) error {
	js := `
		(function() {
			let toggle = document.querySelector('input[name="postSchedule"][value="schedule"]');
			if (!toggle) {
				toggle = Array.from(document.querySelectorAll('div[class*="switch"], input[type="radio"], input[type="checkbox"]'))
					.find(el => (el.closest('label')?.textContent || '').toLowerCase().includes('schedule'));
			}
			if (!toggle) return false;
			toggle.click();
			return true;
		})()
	`
	var clicked bool
	if err := chromedp.Run(ctx,
		chromedp.Evaluate(js, &clicked),
		chromedp.Sleep(time.Second),
	); err != nil {
		return fmt.Errorf("schedule toggle: %w", err)
	}
	if !clicked {
		return fmt.Errorf("schedule toggle not found")
	}
	return nil
}

func pickCalendarDay(ctx context.Context, t time.Time) error {
	// Open the date picker.
	openJS := `
		(function() {
			const picker = document.querySelector('div[class*="date-picker"] input, input[class*="date"]');
			if (!picker) return false;
			picker.click();
			return true;
		})()
	`
	var opened bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(openJS, &opened), chromedp.Sleep(time.Second)); err != nil {
		return fmt.Errorf("open date picker: %w", err)
	}
	if !opened {
		return fmt.Errorf("date picker not found")
	}

	wantMonth := fmt.Sprintf("%d-%02d", t.Year(), int(t.Month()))
	headerJS := `
		(function() {
			const header = document.querySelector('div[class*="month-title"], div[class*="calendar"] [class*="title"]');
			if (!header) return '';
			const d = new Date(header.textContent);
			if (isNaN(d)) return '';
			return d.getFullYear() + '-' + String(d.getMonth() + 1).padStart(2, '0');
		})()
	`
	nextJS := `
		(function() {
			const arrows = document.querySelectorAll('div[class*="calendar"] [class*="arrow"], div[class*="calendar"] button');
			if (arrows.length === 0) return false;
			arrows[arrows.length - 1].click();
			return true;
		})()
	`
	for step := 0; step < maxMonthSteps; step++ {
		var shown string
		if err := chromedp.Run(ctx, chromedp.Evaluate(headerJS, &shown)); err != nil {
			return fmt.Errorf("read calendar month: %w", err)
		}
		if shown == wantMonth || shown == "" {
			break
		}
		var advanced bool
		if err := chromedp.Run(ctx, chromedp.Evaluate(nextJS, &advanced), chromedp.Sleep(500*time.Millisecond)); err != nil || !advanced {
			return fmt.Errorf("advance calendar month")
		}
	}

	// Click the day; only cells marked valid are clickable.
	dayJS := fmt.Sprintf(`
		(function() {
			const cells = Array.from(document.querySelectorAll('div[class*="calendar"] span[class*="day"], div[class*="calendar"] [class*="cell"]'))
				.filter(c => !(c.className || '').includes('disabled') && (c.textContent || '').trim() === '%d');
			if (cells.length === 0) return false;
			cells[0].click();
			return true;
		})()
	`, t.Day())
	var clicked bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(dayJS, &clicked), chromedp.Sleep(time.Second)); err != nil {
		return fmt.Errorf("click calendar day: %w", err)
	}
	if !clicked {
		return fmt.Errorf("day %d not clickable in calendar", t.Day())
	}
	return nil
}

// pickTime opens the time picker and clicks list entries by index: hours are
// listed 0-23 and minutes in 5-minute steps, so minute index is minute/5.
func pickTime(ctx context.Context, t time.Time) error {
	openJS := `
		(function() {
			const picker = document.querySelectorAll('div[class*="time-picker"] input, input[class*="time"]');
			if (picker.length === 0) return false;
			picker[0].click();
			return true;
		})()
	`
	var opened bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(openJS, &opened), chromedp.Sleep(time.Second)); err != nil {
		return fmt.Errorf("open time picker: %w", err)
	}
	if !opened {
		return fmt.Errorf("time picker not found")
	}

	pickJS := fmt.Sprintf(`
		(function() {
			const lists = document.querySelectorAll('div[class*="time-picker"] [class*="container"], div[class*="time-scroll"]');
			if (lists.length < 2) return false;
			const hours = lists[0].querySelectorAll('[class*="option"], li, span');
			const minutes = lists[1].querySelectorAll('[class*="option"], li, span');
			if (hours.length <= %d || minutes.length <= %d) return false;
			hours[%d].click();
			minutes[%d].click();
			return true;
		})()
	`, t.Hour(), t.Minute()/5, t.Hour(), t.Minute()/5)
	var picked bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(pickJS, &picked), chromedp.Sleep(time.Second)); err != nil {
		return fmt.Errorf("pick time: %w", err)
	}
	if !picked {
		return fmt.Errorf("hour/minute entries not found in time picker")
	}

	// Close the picker so it does not cover the post button.
	return chromedp.Run(ctx,
		chromedp.Evaluate(`document.body.click()`, nil),
		chromedp.Sleep(500*time.Millisecond),
	)
}
