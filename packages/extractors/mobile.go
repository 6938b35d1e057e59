package extractors

import (
	"context"
	"errors"

	"sitepulse/packages/domain"
	"sitepulse/packages/metrics"
	"sitepulse/packages/providers"
)

type MobileIssues struct {
	ViewportNotSet         bool `json:"viewport_not_set"`
	TextTooSmall           bool `json:"text_too_small"`
	ClickTargetsTooClose   bool `json:"click_targets_too_close"`
	ContentWiderThanScreen bool `json:"content_wider_than_screen"`
}

type MobileData struct {
	Friendly bool         `json:"friendly"`
	Issues   MobileIssues `json:"issues"`
	Source   string       `json:"source"` // provider|rendered|seo-proxy
}

type Mobile struct{}

func (*Mobile) Name() string { return "mobile" }

const (
	smallTextRatioLimit = 0.10
	tapTargetGapPx      = 8.0
	friendlyThreshold   = 60
)

func (m *Mobile) Extract(ctx context.Context, in *Input) domain.ExtractorResult {
	// A third-party verdict, when available, outranks local heuristics.
	verdict, err := in.Providers.Mobile.Verdict(ctx, in.Target.URL)
	if err == nil {
		if verdict == providers.MobileFriendly {
			return domain.ExtractorResult{
				Name: m.Name(), Score: 90, Present: true,
				Data: MobileData{Friendly: true, Source: "provider"},
			}
		}
		return domain.ExtractorResult{
			Name: m.Name(), Score: 30, Present: true,
			Data: MobileData{Friendly: false, Source: "provider"},
		}
	}
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		metrics.ProviderRequests.WithLabelValues("mobile_friendly", "error").Inc()
	}

	if in.Mobile != nil && in.Mobile.DOMFacts != nil {
		return m.fromDOMFacts(in.Mobile.DOMFacts)
	}

	// Last resort: coarse proxy off the page's on-page SEO quality.
	if in.Doc != nil {
		_, seoScore := analyzeSEO(in.Doc)
		score := 60
		if seoScore > 70 {
			score = 80
		}
		metrics.ExtractorFailures.WithLabelValues(m.Name()).Inc()
		return domain.ExtractorResult{
			Name: m.Name(), Score: score, Present: true, Degraded: true,
			Note: "no rendered layout or provider verdict; basic heuristic score",
			Data: MobileData{Friendly: score > friendlyThreshold, Source: "seo-proxy"},
		}
	}

	metrics.ExtractorFailures.WithLabelValues(m.Name()).Inc()
	return domain.Absent(m.Name(), "no mobile signal source available")
}

func (m *Mobile) fromDOMFacts(facts *domain.DOMFacts) domain.ExtractorResult {
	data := MobileData{Source: "rendered"}
	score := 100

	if facts.SmallTextRatio > smallTextRatioLimit {
		data.Issues.TextTooSmall = true
		score -= 30
	}
	if facts.MinTapTargetGapPx >= 0 && facts.MinTapTargetGapPx < tapTargetGapPx {
		data.Issues.ClickTargetsTooClose = true
		score -= 25
	}
	if !facts.HasViewportMeta {
		data.Issues.ViewportNotSet = true
		score -= 25
	}
	if facts.ScrollWidthPx > facts.ViewportWidthPx {
		data.Issues.ContentWiderThanScreen = true
		score -= 20
	}

	score = clampScore(score)
	noIssues := data.Issues == MobileIssues{}
	data.Friendly = noIssues && score > friendlyThreshold

	return domain.ExtractorResult{Name: m.Name(), Score: score, Present: true, Data: data}
}
