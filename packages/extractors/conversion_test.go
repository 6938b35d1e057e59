package extractors

import (
	"context"
	"testing"

	"sitepulse/packages/domain"
)

func conversionInput(t *testing.T, html string) *Input {
	t.Helper()
	doc := docFrom(t, html)
	return &Input{
		Target: domain.AuditTarget{URL: "https://example.com"},
		Doc:    doc,
		Text:   CleanText(doc),
	}
}

func TestConversionFullSignalPage(t *testing.T) {
	html := `<html><body>
		<header>Call us: (512) 555-0199</header>
		<a href="tel:+15125550199">Tap to call</a>
		<a href="mailto:info@example.com">Email us</a>
		<form action="/contact"><input name="name"></form>
		<button>Get Started Today</button>
		<section>What our customers say: five star reviews from real clients.</section>
		</body></html>`

	res := (&Conversion{}).Extract(context.Background(), conversionInput(t, html))
	if !res.Present {
		t.Fatal("expected present result")
	}
	data := res.Data.(ConversionData)

	if !data.PhoneVisible {
		t.Error("expected phone to be detected")
	}
	if !data.ContactFormPresent {
		t.Error("expected contact form to be detected")
	}
	if data.CTAButtons == 0 {
		t.Error("expected CTA button to be detected")
	}
	if data.ContactLinks != 2 {
		t.Errorf("expected 2 contact links, got %d", data.ContactLinks)
	}
	// 30 phone + 25 form + 20 CTA + 15 links + 10 social proof
	if res.Score != 100 {
		t.Errorf("expected score 100, got %d", res.Score)
	}
}

func TestConversionEmptyPage(t *testing.T) {
	res := (&Conversion{}).Extract(context.Background(),
		conversionInput(t, `<html><body><p>Welcome.</p></body></html>`))
	data := res.Data.(ConversionData)
	if data.PhoneVisible || data.ContactFormPresent {
		t.Fatalf("unexpected detections: %+v", data)
	}
	if res.Score != 0 {
		t.Errorf("expected score 0, got %d", res.Score)
	}
}

func TestConversionAdditiveWeights(t *testing.T) {
	cases := []struct {
		name string
		html string
		want int
	}{
		{"phone only", `<html><body><p>Reach us at 512-555-0199</p></body></html>`, 30},
		{"form only", `<html><body><form></form></body></html>`, 25},
		{"cta only", `<html><body><button>Book an appointment</button></body></html>`, 20},
		{"links only", `<html><body><a href="mailto:a@b.com">write</a></body></html>`, 15},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res := (&Conversion{}).Extract(context.Background(), conversionInput(t, c.html))
			if res.Score != c.want {
				t.Errorf("expected %d, got %d", c.want, res.Score)
			}
		})
	}
}

func TestPhoneRegexForms(t *testing.T) {
	cases := []struct {
		in    string
		match bool
	}{
		{"(512) 555-0199", true},
		{"512-555-0199", true},
		{"512.555.0199", true},
		{"+1 512 555 0199", true},
		{"no digits here", false},
	}
	for _, c := range cases {
		if got := phoneRe.MatchString(c.in); got != c.match {
			t.Errorf("phoneRe(%q) = %v, want %v", c.in, got, c.match)
		}
	}
}
