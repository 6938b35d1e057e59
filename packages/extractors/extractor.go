// Package extractors holds the six signal analyzers. Each one reads the
// shared immutable snapshots and produces its own 0-100 sub-score; none may
// read a sibling's result.
package extractors

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sitepulse/packages/domain"
	"sitepulse/packages/providers"
)

// Input carries everything one audit run knows about the target. Snapshots
// and documents may be nil when a viewport could not be fetched; extractors
// degrade rather than fail on missing pieces.
type Input struct {
	Target    domain.AuditTarget
	Desktop   *domain.PageSnapshot
	Mobile    *domain.PageSnapshot
	Doc       *goquery.Document
	Text      string
	Providers providers.Set
	ProbeTime time.Duration
}

type Extractor interface {
	Name() string
	Extract(ctx context.Context, in *Input) domain.ExtractorResult
}

// All returns the extractor set in result order.
func All() []Extractor {
	return []Extractor{
		&Performance{},
		&SEO{},
		&Mobile{},
		&Conversion{},
		&LocalSEO{},
		&Technical{},
	}
}

// PreferredSnapshot picks the richest snapshot for text-based extraction.
func (in *Input) PreferredSnapshot() *domain.PageSnapshot {
	if in.Desktop != nil {
		return in.Desktop
	}
	return in.Mobile
}

// CleanText flattens a document to whitespace-normalized text with scripts
// and styles stripped.
func CleanText(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	clone := goquery.CloneDocument(doc)
	clone.Find("script, style, noscript").Remove()
	re := strings.NewReplacer("\n", " ", "\t", " ", "\r", " ")
	return strings.Join(strings.Fields(re.Replace(clone.Text())), " ")
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
