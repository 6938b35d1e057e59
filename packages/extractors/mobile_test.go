package extractors

import (
	"context"
	"testing"

	"sitepulse/packages/domain"
	"sitepulse/packages/providers"
)

type fixedVerdict struct {
	verdict providers.MobileVerdict
	err     error
}

func (f fixedVerdict) Verdict(context.Context, string) (providers.MobileVerdict, error) {
	return f.verdict, f.err
}

func mobileInput(verdictProv providers.MobileFriendliness, facts *domain.DOMFacts) *Input {
	in := &Input{
		Target:    domain.AuditTarget{URL: "https://example.com"},
		Providers: providers.Set{PageSpeed: providers.Unavailable{}, Mobile: verdictProv},
	}
	if facts != nil {
		in.Mobile = &domain.PageSnapshot{Profile: domain.ViewportMobile, DOMFacts: facts}
	}
	return in
}

func TestMobileProviderVerdictShortCircuits(t *testing.T) {
	res := (&Mobile{}).Extract(context.Background(),
		mobileInput(fixedVerdict{verdict: providers.MobileFriendly}, &domain.DOMFacts{}))
	if res.Score != 90 || !res.Data.(MobileData).Friendly {
		t.Fatalf("expected 90/friendly from positive verdict, got %d/%+v", res.Score, res.Data)
	}

	res = (&Mobile{}).Extract(context.Background(),
		mobileInput(fixedVerdict{verdict: providers.NotMobileFriendly}, nil))
	if res.Score != 30 || res.Data.(MobileData).Friendly {
		t.Fatalf("expected 30/unfriendly from negative verdict, got %d/%+v", res.Score, res.Data)
	}
}

func TestMobileHeuristics(t *testing.T) {
	cases := []struct {
		name      string
		facts     domain.DOMFacts
		wantScore int
		friendly  bool
	}{
		{
			name:      "clean rendered page",
			facts:     domain.DOMFacts{HasViewportMeta: true, SmallTextRatio: 0.02, MinTapTargetGapPx: 24, ScrollWidthPx: 375, ViewportWidthPx: 375},
			wantScore: 100,
			friendly:  true,
		},
		{
			name:      "no viewport meta",
			facts:     domain.DOMFacts{HasViewportMeta: false, MinTapTargetGapPx: 24, ScrollWidthPx: 375, ViewportWidthPx: 375},
			wantScore: 75,
			friendly:  false,
		},
		{
			name:      "tiny text and cramped taps",
			facts:     domain.DOMFacts{HasViewportMeta: true, SmallTextRatio: 0.5, MinTapTargetGapPx: 2, ScrollWidthPx: 375, ViewportWidthPx: 375},
			wantScore: 45,
			friendly:  false,
		},
		{
			name:      "everything wrong",
			facts:     domain.DOMFacts{SmallTextRatio: 0.9, MinTapTargetGapPx: 0, ScrollWidthPx: 800, ViewportWidthPx: 375},
			wantScore: 0,
			friendly:  false,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res := (&Mobile{}).Extract(context.Background(),
				mobileInput(providers.Unavailable{}, &c.facts))
			if res.Score != c.wantScore {
				t.Errorf("expected score %d, got %d", c.wantScore, res.Score)
			}
			if got := res.Data.(MobileData).Friendly; got != c.friendly {
				t.Errorf("expected friendly=%v, got %v", c.friendly, got)
			}
		})
	}
}

func TestMobileSEOProxyFallback(t *testing.T) {
	in := mobileInput(providers.Unavailable{}, nil)
	in.Doc = docFrom(t, cleanPage) // SEO 100 > 70 → proxy score 80
	res := (&Mobile{}).Extract(context.Background(), in)
	if res.Score != 80 || !res.Degraded {
		t.Fatalf("expected degraded proxy score 80, got %d (degraded=%v)", res.Score, res.Degraded)
	}

	in = mobileInput(providers.Unavailable{}, nil)
	in.Doc = docFrom(t, `<html><body></body></html>`) // weak SEO → proxy score 60
	res = (&Mobile{}).Extract(context.Background(), in)
	if res.Score != 60 {
		t.Fatalf("expected proxy score 60, got %d", res.Score)
	}
}

func TestMobileAbsentWithoutAnySource(t *testing.T) {
	res := (&Mobile{}).Extract(context.Background(), mobileInput(providers.Unavailable{}, nil))
	if res.Present {
		t.Fatal("expected absent result with no verdict, no facts, no document")
	}
}
