package fetcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"

	"sitepulse/packages/domain"
)

// domFactsJS runs inside the page and answers the layout questions the
// mobile extractor needs: viewport meta, small-text ratio, tightest gap
// between clickable elements, and horizontal overflow.
const domFactsJS = `(() => {
	const facts = {
		has_viewport_meta: !!document.querySelector('meta[name="viewport"]'),
		small_text_ratio: 0,
		min_tap_target_gap_px: 1e9,
		scroll_width_px: document.documentElement.scrollWidth,
		viewport_width_px: window.innerWidth,
	};
	const texts = Array.from(document.querySelectorAll('p, span, li, a, td, div'))
		.filter(el => el.childElementCount === 0 && el.textContent.trim().length > 0);
	if (texts.length > 0) {
		const small = texts.filter(el => parseFloat(getComputedStyle(el).fontSize) < 12).length;
		facts.small_text_ratio = small / texts.length;
	}
	const clickables = Array.from(document.querySelectorAll('a, button, input[type="submit"], [onclick]'))
		.map(el => el.getBoundingClientRect())
		.filter(r => r.width > 0 && r.height > 0);
	for (let i = 0; i < clickables.length; i++) {
		for (let j = i + 1; j < clickables.length; j++) {
			const a = clickables[i], b = clickables[j];
			const dx = Math.max(0, Math.max(a.left, b.left) - Math.min(a.right, b.right));
			const dy = Math.max(0, Math.max(a.top, b.top) - Math.min(a.bottom, b.bottom));
			const gap = Math.max(dx, dy);
			if (gap < facts.min_tap_target_gap_px) facts.min_tap_target_gap_px = gap;
		}
	}
	if (facts.min_tap_target_gap_px === 1e9) facts.min_tap_target_gap_px = -1;
	return facts;
})()`

// Renderer drives a headless browser for DOM-dependent snapshots. One
// allocator is reused across sequential audits to amortize browser startup;
// every Fetch opens its own browsing context so concurrent audits never
// share page state.
type Renderer struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	timeout     time.Duration
	userAgent   string
}

func NewRenderer(timeout time.Duration, userAgent, chromePath string) *Renderer {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.UserAgent(userAgent),
	)
	if chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &Renderer{allocCtx: allocCtx, cancelAlloc: cancel, timeout: timeout, userAgent: userAgent}
}

func (r *Renderer) Close() {
	r.cancelAlloc()
}

// Fetch renders url at the profile's viewport and returns a snapshot with
// DOM facts attached. Errors come back as *domain.FetchError so the engine
// can fall through to the basic fetcher.
func (r *Renderer) Fetch(ctx context.Context, url string, profile domain.ViewportProfile) (*domain.PageSnapshot, error) {
	tabCtx, cancelTab := chromedp.NewContext(r.allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelTab()

	runCtx, cancelTimeout := context.WithTimeout(tabCtx, r.timeout)
	defer cancelTimeout()

	// Honor caller cancellation alongside the per-fetch deadline.
	go func() {
		select {
		case <-ctx.Done():
			cancelTimeout()
		case <-runCtx.Done():
		}
	}()

	var html string
	var facts domain.DOMFacts

	start := time.Now()
	err := chromedp.Run(runCtx,
		chromedp.EmulateViewport(int64(profile.Width), int64(profile.Height)),
		chromedp.Navigate(url),
		chromedp.OuterHTML("html", &html),
		chromedp.Evaluate(domFactsJS, &facts),
	)
	if err != nil {
		return nil, classifyTransportErr(url, err)
	}
	elapsed := time.Since(start)

	slog.Debug("Rendered page", "url", url, "profile", profile.Name,
		"elapsed", elapsed, "scroll_width", facts.ScrollWidthPx)

	return &domain.PageSnapshot{
		Profile:    profile,
		FinalURL:   url,
		HTTPStatus: 200,
		Headers:    map[string]string{},
		RawHTML:    html,
		LoadTime:   elapsed,
		DOMFacts:   &facts,
	}, nil
}
