// Package domain
package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

type BusinessCategory string

const (
	CategoryRestaurant           BusinessCategory = "restaurant"
	CategoryHomeServices         BusinessCategory = "home-services"
	CategoryHealthcare           BusinessCategory = "healthcare"
	CategoryAutomotive           BusinessCategory = "automotive"
	CategoryRetail               BusinessCategory = "retail"
	CategoryProfessionalServices BusinessCategory = "professional-services"
)

type AuditStatus string

const (
	AuditPending   AuditStatus = "pending"
	AuditRunning   AuditStatus = "running"
	AuditCompleted AuditStatus = "completed"
	AuditFailed    AuditStatus = "failed"
)

// ViewportProfile selects the simulated device for a fetch. Desktop and
// mobile are fetched separately because load time and layout differ per
// viewport.
type ViewportProfile struct {
	Name   string
	Width  int
	Height int
}

var (
	ViewportDesktop = ViewportProfile{Name: "desktop", Width: 1366, Height: 768}
	ViewportMobile  = ViewportProfile{Name: "mobile", Width: 375, Height: 667}
)

// AuditTarget is the immutable input of one audit run.
type AuditTarget struct {
	URL               string           `json:"url"`
	RegistrableDomain string           `json:"registrable_domain"`
	Category          BusinessCategory `json:"business_category"`
}

// NewAuditTarget normalizes a raw URL (scheme defaulted to https) and
// resolves its registrable domain. Unknown categories are kept as-is;
// downstream tables fall back to retail for them.
func NewAuditTarget(rawURL string, category BusinessCategory) (AuditTarget, error) {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return AuditTarget{}, fmt.Errorf("empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return AuditTarget{}, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return AuditTarget{}, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return AuditTarget{}, fmt.Errorf("missing host in url %q", rawURL)
	}
	registrable, err := publicsuffix.EffectiveTLDPlusOne(u.Hostname())
	if err != nil {
		registrable = u.Hostname()
	}
	return AuditTarget{URL: u.String(), RegistrableDomain: registrable, Category: category}, nil
}

// DOMFacts are layout signals only a rendered page can answer. Present on a
// PageSnapshot only when the fetch ran through a real browser.
type DOMFacts struct {
	HasViewportMeta   bool    `json:"has_viewport_meta"`
	SmallTextRatio    float64 `json:"small_text_ratio"`
	MinTapTargetGapPx float64 `json:"min_tap_target_gap_px"`
	ScrollWidthPx     int     `json:"scroll_width_px"`
	ViewportWidthPx   int     `json:"viewport_width_px"`
}

// PageSnapshot is one fetched representation of the target. Read-only to
// extractors; never persisted past the run.
type PageSnapshot struct {
	Profile    ViewportProfile
	FinalURL   string
	HTTPStatus int
	Headers    map[string]string
	RawHTML    string
	LoadTime   time.Duration
	DOMFacts   *DOMFacts
}

// ExtractorResult is one analyzer's contribution. Sub-scores are computed
// independently; extractors share snapshots but never each other's scores.
type ExtractorResult struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Present  bool   `json:"present"`
	Degraded bool   `json:"degraded,omitempty"`
	Note     string `json:"note,omitempty"`
	Data     any    `json:"data,omitempty"`
}

// Absent marks an extractor that produced nothing usable. Its weight is
// excluded from the health-score denominator rather than zero-filled.
func Absent(name, note string) ExtractorResult {
	return ExtractorResult{Name: name, Present: false, Degraded: true, Note: note}
}

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
)

type Issue struct {
	Title       string   `json:"title"`
	Severity    Severity `json:"severity"`
	Impact      string   `json:"impact"`
	Description string   `json:"description"`
	Solution    string   `json:"solution"`
}

// RevenueProjection is the estimated monthly USD opportunity range.
type RevenueProjection struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// AuditResult is the aggregate root of one run. Built once by the engine,
// immutable afterwards.
type AuditResult struct {
	Target      AuditTarget       `json:"target"`
	Timestamp   time.Time         `json:"timestamp"`
	Performance ExtractorResult   `json:"performance"`
	SEO         ExtractorResult   `json:"seo"`
	Mobile      ExtractorResult   `json:"mobile"`
	Conversion  ExtractorResult   `json:"conversion"`
	Local       ExtractorResult   `json:"local"`
	Technical   ExtractorResult   `json:"technical"`
	Issues      []Issue           `json:"issues"`
	HealthScore int               `json:"health_score"`
	Revenue     RevenueProjection `json:"revenue_projection"`
}

// IssuesBySeverity groups the flat issue list without reordering within a
// tier; generation order inside a tier is part of the contract.
func (r *AuditResult) IssuesBySeverity() map[Severity][]Issue {
	out := make(map[Severity][]Issue)
	for _, is := range r.Issues {
		out[is.Severity] = append(out[is.Severity], is)
	}
	return out
}

// AuditJob is one queued audit request claimed by a worker.
type AuditJob struct {
	ID       int64
	URL      string
	Category BusinessCategory
	Attempts int
}
