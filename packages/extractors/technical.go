package extractors

import (
	"context"
	"strings"

	"sitepulse/packages/domain"
	"sitepulse/packages/metrics"
)

type TechnicalData struct {
	HTTPS       bool   `json:"https"`
	StatusOK    bool   `json:"status_ok"`
	HTMLContent bool   `json:"html_content"`
	Server      string `json:"server,omitempty"`
}

// Technical scores the transport-level basics of the fetch itself.
type Technical struct{}

func (*Technical) Name() string { return "technical" }

func (t *Technical) Extract(_ context.Context, in *Input) domain.ExtractorResult {
	snap := in.PreferredSnapshot()
	if snap == nil {
		metrics.ExtractorFailures.WithLabelValues(t.Name()).Inc()
		return domain.Absent(t.Name(), "no snapshot")
	}

	data := TechnicalData{
		HTTPS:       strings.HasPrefix(snap.FinalURL, "https://"),
		StatusOK:    snap.HTTPStatus >= 200 && snap.HTTPStatus < 300,
		HTMLContent: in.Doc != nil,
		Server:      snap.Headers["Server"],
	}

	score := 0
	if data.HTTPS {
		score += 40
	}
	if data.StatusOK {
		score += 30
	}
	if data.HTMLContent {
		score += 30
	}

	return domain.ExtractorResult{Name: t.Name(), Score: clampScore(score), Present: true, Data: data}
}
