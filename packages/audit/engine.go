package audit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"sitepulse/packages/domain"
	"sitepulse/packages/extractors"
	"sitepulse/packages/metrics"
	"sitepulse/packages/providers"
)

// PageFetcher is either the basic HTTP fetcher or the headless renderer.
type PageFetcher interface {
	Fetch(ctx context.Context, url string, profile domain.ViewportProfile) (*domain.PageSnapshot, error)
}

type Prober interface {
	HeadProbe(ctx context.Context, url string) (time.Duration, error)
}

// Engine orchestrates one audit run: fetch both viewports, fan the
// extractors out, then aggregate, classify, and project. The only error it
// returns is a *domain.AuditError for a target no viewport could reach;
// everything below that degrades in place.
type Engine struct {
	fetch    PageFetcher
	renderer PageFetcher // nil in basic render mode
	prober   Prober
	provs    providers.Set
	exts     []extractors.Extractor
}

func NewEngine(fetch PageFetcher, renderer PageFetcher, prober Prober, provs providers.Set) *Engine {
	return &Engine{
		fetch:    fetch,
		renderer: renderer,
		prober:   prober,
		provs:    provs,
		exts:     extractors.All(),
	}
}

func (e *Engine) Run(ctx context.Context, target domain.AuditTarget) (*domain.AuditResult, error) {
	start := time.Now()
	slog.Info("Audit run starting", "url", target.URL, "category", string(target.Category))

	var desktop, mobile *domain.PageSnapshot
	var desktopErr, mobileErr error

	fg, fctx := errgroup.WithContext(ctx)
	fg.Go(func() error {
		desktop, desktopErr = e.snapshot(fctx, target.URL, domain.ViewportDesktop)
		return nil
	})
	fg.Go(func() error {
		mobile, mobileErr = e.snapshot(fctx, target.URL, domain.ViewportMobile)
		return nil
	})
	_ = fg.Wait()

	if desktop == nil && mobile == nil {
		err := desktopErr
		if err == nil {
			err = mobileErr
		}
		slog.Error("Audit failed: no viewport could be fetched", "url", target.URL, "error", err)
		return nil, &domain.AuditError{URL: target.URL, Err: err}
	}

	in := &extractors.Input{
		Target:    target,
		Desktop:   desktop,
		Mobile:    mobile,
		Providers: e.provs,
	}
	if snap := in.PreferredSnapshot(); snap != nil {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(snap.RawHTML)); err == nil {
			in.Doc = doc
			in.Text = extractors.CleanText(doc)
		} else {
			slog.Warn("HTML parse failed, text extractors will degrade", "url", target.URL, "error", err)
		}
	}
	if e.prober != nil && snapshotsWithoutTiming(desktop, mobile) {
		if t, err := e.prober.HeadProbe(ctx, target.URL); err == nil {
			in.ProbeTime = t
		}
	}

	results := make([]domain.ExtractorResult, len(e.exts))
	g, gctx := errgroup.WithContext(ctx)
	for i, ext := range e.exts {
		i, ext := i, ext
		g.Go(func() error {
			results[i] = runRecovered(gctx, ext, in)
			return nil
		})
	}
	_ = g.Wait()

	byName := make(map[string]domain.ExtractorResult, len(results))
	for _, r := range results {
		byName[r.Name] = r
	}

	res := &domain.AuditResult{
		Target:      target,
		Timestamp:   time.Now().UTC(),
		Performance: byName["performance"],
		SEO:         byName["seo"],
		Mobile:      byName["mobile"],
		Conversion:  byName["conversion"],
		Local:       byName["local"],
		Technical:   byName["technical"],
	}
	res.HealthScore = AggregateScore(results)
	res.Issues = Classify(res.Performance, res.SEO, res.Mobile, res.Conversion, res.Local)
	res.Revenue = Project(target.Category, res.Performance, res.SEO, res.Mobile, res.Conversion, res.Local)

	elapsed := time.Since(start)
	metrics.AuditDuration.Observe(elapsed.Seconds())
	slog.Info("Audit run complete", "url", target.URL, "health_score", res.HealthScore,
		"issues", len(res.Issues), "elapsed", elapsed)
	return res, nil
}

// snapshot tries the renderer first (when configured) and falls back to the
// basic fetcher, so a broken browser install degrades rather than fails.
func (e *Engine) snapshot(ctx context.Context, url string, profile domain.ViewportProfile) (*domain.PageSnapshot, error) {
	if e.renderer != nil {
		snap, err := e.renderer.Fetch(ctx, url, profile)
		if err == nil {
			metrics.FetchDuration.WithLabelValues(profile.Name).Observe(snap.LoadTime.Seconds())
			return snap, nil
		}
		slog.Warn("Rendered fetch failed, falling back to basic", "url", url,
			"profile", profile.Name, "error", err)
	}
	snap, err := e.fetch.Fetch(ctx, url, profile)
	if err != nil {
		return nil, err
	}
	metrics.FetchDuration.WithLabelValues(profile.Name).Observe(snap.LoadTime.Seconds())
	return snap, nil
}

func snapshotsWithoutTiming(snaps ...*domain.PageSnapshot) bool {
	for _, s := range snaps {
		if s != nil && s.LoadTime > 0 {
			return false
		}
	}
	return true
}

// runRecovered isolates each extractor: a panic or late failure turns into
// a degraded result instead of taking the sibling extractors down.
func runRecovered(ctx context.Context, ext extractors.Extractor, in *extractors.Input) (out domain.ExtractorResult) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("Extractor panicked", "extractor", ext.Name(), "panic", p)
			metrics.ExtractorFailures.WithLabelValues(ext.Name()).Inc()
			out = domain.Absent(ext.Name(), fmt.Sprintf("internal failure: %v", p))
		}
	}()
	return ext.Extract(ctx, in)
}
