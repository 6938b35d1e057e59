package extractors

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"sitepulse/packages/domain"
	"sitepulse/packages/metrics"
	"sitepulse/packages/providers"
)

// DeviceTiming is one viewport's measured or provider-supplied load time.
type DeviceTiming struct {
	LoadTimeSeconds float64 `json:"load_time_seconds"`
	Score           int     `json:"score"`
	Source          string  `json:"source"` // pagespeed|measured|probe
}

type PerformanceData struct {
	Desktop       *DeviceTiming               `json:"desktop,omitempty"`
	Mobile        *DeviceTiming               `json:"mobile,omitempty"`
	CoreWebVitals *providers.PageSpeedMetrics `json:"core_web_vitals,omitempty"`
}

type Performance struct{}

func (*Performance) Name() string { return "performance" }

// SpeedScore maps elapsed seconds to a 0-100 score at fixed breakpoints.
// Monotonically non-increasing in t.
func SpeedScore(t float64) int {
	switch {
	case t <= 2:
		return 100
	case t <= 3:
		return 90
	case t <= 4:
		return 75
	case t <= 5:
		return 60
	case t <= 7:
		return 40
	case t <= 10:
		return 20
	default:
		return 0
	}
}

func (p *Performance) Extract(ctx context.Context, in *Input) domain.ExtractorResult {
	data := PerformanceData{}

	data.Desktop = p.timing(ctx, in, in.Desktop, providers.StrategyDesktop, &data)
	data.Mobile = p.timing(ctx, in, in.Mobile, providers.StrategyMobile, &data)

	if data.Desktop == nil && data.Mobile == nil {
		if in.ProbeTime > 0 {
			// HEAD probe is the last-resort timing class.
			t := in.ProbeTime.Seconds()
			probe := &DeviceTiming{LoadTimeSeconds: t, Score: SpeedScore(t), Source: "probe"}
			data.Desktop = probe
			data.Mobile = probe
			return domain.ExtractorResult{
				Name: p.Name(), Score: probe.Score, Present: true, Degraded: true,
				Note: "timing derived from HEAD probe only", Data: data,
			}
		}
		metrics.ExtractorFailures.WithLabelValues(p.Name()).Inc()
		return domain.Absent(p.Name(), "no timing source available")
	}

	// Mobile timing dominates the sub-score; most local-business traffic
	// is mobile.
	var score int
	switch {
	case data.Desktop != nil && data.Mobile != nil:
		score = int(math.Round(0.6*float64(data.Mobile.Score) + 0.4*float64(data.Desktop.Score)))
	case data.Mobile != nil:
		score = data.Mobile.Score
	default:
		score = data.Desktop.Score
	}

	return domain.ExtractorResult{Name: p.Name(), Score: clampScore(score), Present: true, Data: data}
}

// timing prefers provider lab metrics over the locally measured fetch time.
func (p *Performance) timing(ctx context.Context, in *Input, snap *domain.PageSnapshot, strategy providers.Strategy, data *PerformanceData) *DeviceTiming {
	if m, err := in.Providers.PageSpeed.Metrics(ctx, in.Target.URL, strategy); err == nil {
		t := m.LoadTimeSeconds()
		if strategy == providers.StrategyMobile {
			cwv := m
			data.CoreWebVitals = &cwv
		}
		return &DeviceTiming{LoadTimeSeconds: t, Score: SpeedScore(t), Source: "pagespeed"}
	} else if snap == nil {
		slog.Debug("No timing for strategy", "strategy", string(strategy), "error", err)
	}

	if snap == nil {
		return nil
	}
	t := snap.LoadTime.Seconds()
	return &DeviceTiming{LoadTimeSeconds: t, Score: SpeedScore(t), Source: "measured"}
}

// MobileLoadTime is the classifier/projector view of this data: the mobile
// load time in seconds, or -1 when unknown.
func (d PerformanceData) MobileLoadTime() float64 {
	if d.Mobile == nil {
		return -1
	}
	return d.Mobile.LoadTimeSeconds
}

func (d PerformanceData) String() string {
	return fmt.Sprintf("desktop=%v mobile=%v", d.Desktop, d.Mobile)
}
