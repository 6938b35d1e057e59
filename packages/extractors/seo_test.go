package extractors

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse test HTML: %v", err)
	}
	return doc
}

const cleanPage = `<!doctype html><html><head>
	<title>Joe's Plumbing - Emergency Plumber in Austin TX</title>
	<meta name="description" content="Family-owned plumbing company serving Austin for 20 years. Emergency repairs, water heaters, and drain cleaning with upfront pricing and fast scheduling.">
	</head><body>
	<h1>Austin's Trusted Plumber</h1>
	<img src="a.jpg" alt="van"><img src="b.jpg" alt="crew">
	</body></html>`

func TestSEOCleanPageScoresFull(t *testing.T) {
	// Title length 45-ish, meta description ~140, one H1, all images have alt.
	data, score := analyzeSEO(docFrom(t, cleanPage))
	if score != 100 {
		t.Fatalf("expected score 100 for clean page, got %d (issues: %+v)", score, data.Issues)
	}
	if len(data.H1Tags) != 1 {
		t.Errorf("expected 1 h1, got %d", len(data.H1Tags))
	}
}

func TestSEOPenalties(t *testing.T) {
	cases := []struct {
		name string
		html string
		want int
	}{
		{
			name: "missing title and meta description",
			// -25 title, -20 meta, -20 no h1
			html: `<html><head></head><body></body></html>`,
			want: 35,
		},
		{
			name: "short title",
			// -15 title length, -20 meta, -20 no h1
			html: `<html><head><title>Short</title></head><body></body></html>`,
			want: 45,
		},
		{
			name: "multiple h1",
			// -25 title, -20 meta, -15 multiple h1
			html: `<html><body><h1>a</h1><h1>b</h1></body></html>`,
			want: 40,
		},
		{
			name: "all images missing alt",
			// -25, -20, -20, -20 alt penalty (2/2 missing, capped portion = 20)
			html: `<html><body><img src="a.jpg"><img src="b.jpg"></body></html>`,
			want: 15,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, score := analyzeSEO(docFrom(t, c.html))
			if score != c.want {
				t.Errorf("expected %d, got %d", c.want, score)
			}
		})
	}
}

func TestSEOScoreNeverNegative(t *testing.T) {
	// Everything wrong at once: no title, no meta, multiple h1, all alts missing.
	html := `<html><body><h1>a</h1><h1>b</h1>` +
		strings.Repeat(`<img src="x.jpg">`, 10) + `</body></html>`
	_, score := analyzeSEO(docFrom(t, html))
	if score < 0 {
		t.Fatalf("score went below floor: %d", score)
	}
}

func TestSEOAltPenaltyProportional(t *testing.T) {
	// 1 of 4 images missing alt: penalty = 1/4 * 20 = 5.
	html := `<html><head>
		<title>Joe's Plumbing - Emergency Plumber in Austin TX</title>
		<meta name="description" content="Family-owned plumbing company serving Austin for 20 years. Emergency repairs, water heaters, and drain cleaning with upfront pricing and fast scheduling.">
		</head><body><h1>x</h1>
		<img src="a.jpg"><img src="b.jpg" alt="b"><img src="c.jpg" alt="c"><img src="d.jpg" alt="d">
		</body></html>`
	data, score := analyzeSEO(docFrom(t, html))
	if data.Issues.MissingAltTags != 1 || data.Issues.TotalImages != 4 {
		t.Fatalf("unexpected alt counts: %+v", data.Issues)
	}
	if score != 95 {
		t.Errorf("expected 95, got %d", score)
	}
}

func TestSEOExtractorNoDocument(t *testing.T) {
	res := (&SEO{}).Extract(context.Background(), &Input{})
	if res.Present {
		t.Fatal("expected absent result without a document")
	}
}
