package extractors

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sitepulse/packages/domain"
	"sitepulse/packages/metrics"
)

type SEOIssues struct {
	MissingTitle           bool `json:"missing_title"`
	TitleTooShort          bool `json:"title_too_short"`
	TitleTooLong           bool `json:"title_too_long"`
	MissingMetaDescription bool `json:"missing_meta_description"`
	MetaDescriptionTooShort bool `json:"meta_description_too_short"`
	MetaDescriptionTooLong  bool `json:"meta_description_too_long"`
	NoH1                   bool `json:"no_h1"`
	MultipleH1             bool `json:"multiple_h1"`
	MissingAltTags         int  `json:"missing_alt_tags"`
	TotalImages            int  `json:"total_images"`
}

type SEOData struct {
	Title           string    `json:"title"`
	MetaDescription string    `json:"meta_description"`
	H1Tags          []string  `json:"h1_tags"`
	Issues          SEOIssues `json:"issues"`
}

type SEO struct{}

func (*SEO) Name() string { return "seo" }

func (s *SEO) Extract(_ context.Context, in *Input) domain.ExtractorResult {
	if in.Doc == nil {
		metrics.ExtractorFailures.WithLabelValues(s.Name()).Inc()
		return domain.Absent(s.Name(), "no parsed document")
	}
	data, score := analyzeSEO(in.Doc)
	return domain.ExtractorResult{Name: s.Name(), Score: score, Present: true, Data: data}
}

// analyzeSEO is shared with the mobile extractor's last-resort fallback,
// which proxies off the same on-page heuristics rather than a sibling's
// result.
func analyzeSEO(doc *goquery.Document) (SEOData, int) {
	data := SEOData{}

	data.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if val, exists := doc.Find("meta[name='description']").Attr("content"); exists {
		data.MetaDescription = strings.TrimSpace(val)
	}
	doc.Find("h1").Each(func(_ int, sel *goquery.Selection) {
		data.H1Tags = append(data.H1Tags, strings.TrimSpace(sel.Text()))
	})
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		data.Issues.TotalImages++
		if alt, exists := sel.Attr("alt"); !exists || strings.TrimSpace(alt) == "" {
			data.Issues.MissingAltTags++
		}
	})

	iss := &data.Issues
	switch {
	case data.Title == "":
		iss.MissingTitle = true
	case len(data.Title) < 30:
		iss.TitleTooShort = true
	case len(data.Title) > 60:
		iss.TitleTooLong = true
	}
	switch {
	case data.MetaDescription == "":
		iss.MissingMetaDescription = true
	case len(data.MetaDescription) < 120:
		iss.MetaDescriptionTooShort = true
	case len(data.MetaDescription) > 160:
		iss.MetaDescriptionTooLong = true
	}
	switch {
	case len(data.H1Tags) == 0:
		iss.NoH1 = true
	case len(data.H1Tags) > 1:
		iss.MultipleH1 = true
	}

	score := 100
	if iss.MissingTitle {
		score -= 25
	}
	if iss.TitleTooShort || iss.TitleTooLong {
		score -= 15
	}
	if iss.MissingMetaDescription {
		score -= 20
	}
	if iss.MetaDescriptionTooShort || iss.MetaDescriptionTooLong {
		score -= 10
	}
	if iss.NoH1 {
		score -= 20
	}
	if iss.MultipleH1 {
		score -= 15
	}
	if iss.TotalImages > 0 && iss.MissingAltTags > 0 {
		penalty := float64(iss.MissingAltTags) / float64(iss.TotalImages) * 20
		if penalty > 20 {
			penalty = 20
		}
		score -= int(penalty)
	}

	return data, clampScore(score)
}
