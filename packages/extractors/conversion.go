package extractors

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sitepulse/packages/domain"
	"sitepulse/packages/metrics"
)

// NANP-style phone numbers: optional +1, 3-3-4 with common separators.
var phoneRe = regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]\d{3}[-.\s]?\d{4}`)

var ctaKeywords = []string{
	"call", "contact", "quote", "book", "schedule", "order", "buy", "get started",
}

var (
	testimonialWords = []string{"testimonial", "what our customers", "happy customer", "client stories"}
	reviewWords      = []string{"review", "rated", "stars", "rating"}
	awardWords       = []string{"award", "certified", "accredited", "winner", "best of"}
)

type SocialProof struct {
	Testimonials bool `json:"testimonials"`
	Reviews      bool `json:"reviews"`
	Awards       bool `json:"awards"`
}

type ConversionData struct {
	PhoneNumbers       []string    `json:"phone_numbers"`
	ContactForms       int         `json:"contact_forms"`
	CTAButtons         int         `json:"cta_buttons"`
	ContactLinks       int         `json:"contact_links"`
	SocialProof        SocialProof `json:"social_proof"`
	PhoneVisible       bool        `json:"phone_visible"`
	ContactFormPresent bool        `json:"contact_form_present"`
}

type Conversion struct{}

func (*Conversion) Name() string { return "conversion" }

func (c *Conversion) Extract(_ context.Context, in *Input) domain.ExtractorResult {
	if in.Doc == nil {
		metrics.ExtractorFailures.WithLabelValues(c.Name()).Inc()
		return domain.Absent(c.Name(), "no parsed document")
	}

	data := ConversionData{}
	doc := in.Doc
	lowerText := strings.ToLower(in.Text)

	data.PhoneNumbers = dedupe(phoneRe.FindAllString(in.Text, -1))
	data.PhoneVisible = len(data.PhoneNumbers) > 0

	data.ContactForms = doc.Find("form").Length()
	data.ContactFormPresent = data.ContactForms > 0

	doc.Find("a, button, input[type='submit'], input[type='button']").Each(func(_ int, sel *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(sel.Text()))
		if label == "" {
			label, _ = sel.Attr("value")
			label = strings.ToLower(label)
		}
		for _, kw := range ctaKeywords {
			if strings.Contains(label, kw) {
				data.CTAButtons++
				return
			}
		}
	})

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.ToLower(strings.TrimSpace(href))
		if strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "mailto:") {
			data.ContactLinks++
		}
	})

	data.SocialProof.Testimonials = containsAny(lowerText, testimonialWords)
	data.SocialProof.Reviews = containsAny(lowerText, reviewWords)
	data.SocialProof.Awards = containsAny(lowerText, awardWords)

	score := 0
	if data.PhoneVisible {
		score += 30
	}
	if data.ContactFormPresent {
		score += 25
	}
	if data.CTAButtons > 0 {
		score += 20
	}
	if data.ContactLinks > 0 {
		score += 15
	}
	if data.SocialProof.Testimonials || data.SocialProof.Reviews || data.SocialProof.Awards {
		score += 10
	}

	return domain.ExtractorResult{Name: c.Name(), Score: clampScore(score), Present: true, Data: data}
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
