package audit

import (
	"math"
	"testing"

	"sitepulse/packages/domain"
)

func present(name string, score int) domain.ExtractorResult {
	return domain.ExtractorResult{Name: name, Score: score, Present: true}
}

func TestAggregateAllPresent(t *testing.T) {
	results := []domain.ExtractorResult{
		present("performance", 80),
		present("mobile", 60),
		present("seo", 90),
		present("local", 50),
		present("conversion", 70),
		present("technical", 100),
	}
	// 80*.3 + 60*.2 + 90*.2 + 50*.15 + 70*.1 + 100*.05 = 73.5 → 74
	if got := AggregateScore(results); got != 74 {
		t.Fatalf("expected 74, got %d", got)
	}
}

func TestAggregateRenormalizesOverPresentWeights(t *testing.T) {
	results := []domain.ExtractorResult{
		present("performance", 80),
		present("seo", 40),
		domain.Absent("mobile", "no signal"),
		domain.Absent("local", "no signal"),
		domain.Absent("conversion", "no signal"),
		domain.Absent("technical", "no signal"),
	}
	// (80*.3 + 40*.2) / (.3+.2) = 32/.5 = 64
	if got := AggregateScore(results); got != 64 {
		t.Fatalf("expected 64, got %d", got)
	}
}

func TestAggregateAllAbsentIsZero(t *testing.T) {
	results := []domain.ExtractorResult{
		domain.Absent("performance", ""),
		domain.Absent("mobile", ""),
		domain.Absent("seo", ""),
		domain.Absent("local", ""),
		domain.Absent("conversion", ""),
	}
	if got := AggregateScore(results); got != 0 {
		t.Fatalf("expected 0 for all-absent, got %d", got)
	}
	if got := AggregateScore(nil); got != 0 {
		t.Fatalf("expected 0 for empty input, got %d", got)
	}
}

func TestAggregateStaysInRange(t *testing.T) {
	names := []string{"performance", "mobile", "seo", "local", "conversion", "technical"}
	for _, base := range []int{0, 1, 33, 50, 99, 100} {
		var results []domain.ExtractorResult
		for i, n := range names {
			s := (base + i*17) % 101
			results = append(results, present(n, s))
		}
		got := AggregateScore(results)
		if got < 0 || got > 100 {
			t.Fatalf("aggregate out of range for base %d: %d", base, got)
		}

		// Cross-check against the definition.
		var sw, w float64
		for _, r := range results {
			sw += float64(r.Score) * scoreWeights[r.Name]
			w += scoreWeights[r.Name]
		}
		want := int(math.Round(sw / w))
		if got != want {
			t.Fatalf("aggregate mismatch for base %d: got %d want %d", base, got, want)
		}
	}
}

func TestAggregateIgnoresUnknownNames(t *testing.T) {
	results := []domain.ExtractorResult{
		present("performance", 50),
		present("mystery", 100),
	}
	if got := AggregateScore(results); got != 50 {
		t.Fatalf("expected unknown extractor to be ignored, got %d", got)
	}
}
