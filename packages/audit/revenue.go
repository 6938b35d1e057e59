package audit

import (
	"math"

	"sitepulse/packages/domain"
	"sitepulse/packages/extractors"
)

type revenueBase struct {
	min, max float64
}

// Monthly USD opportunity ranges per business category. Unknown categories
// fall back to retail.
var revenueBases = map[domain.BusinessCategory]revenueBase{
	domain.CategoryRestaurant:           {2000, 5000},
	domain.CategoryHomeServices:         {3000, 8000},
	domain.CategoryHealthcare:           {5000, 15000},
	domain.CategoryAutomotive:           {2500, 6000},
	domain.CategoryRetail:               {1500, 4000},
	domain.CategoryProfessionalServices: {3000, 10000},
}

// Categories whose customers pick by proximity; only these take the
// local-score multiplier.
var locationDependent = map[domain.BusinessCategory]bool{
	domain.CategoryRestaurant:   true,
	domain.CategoryHomeServices: true,
	domain.CategoryHealthcare:   true,
	domain.CategoryAutomotive:   true,
	domain.CategoryRetail:       true,
}

// Project derives the monthly revenue opportunity from the category base
// scaled by an additive multiplier. The >5s and >8s load-time findings
// stack (a >8s site accumulates +0.8), matching the source rules.
func Project(category domain.BusinessCategory, perf, seo, mobile, conversion, local domain.ExtractorResult) domain.RevenueProjection {
	base, ok := revenueBases[category]
	if !ok {
		base = revenueBases[domain.CategoryRetail]
	}

	perfData, _ := perf.Data.(extractors.PerformanceData)
	convData, _ := conversion.Data.(extractors.ConversionData)

	multiplier := 1.0
	if perf.Present {
		if load := perfData.MobileLoadTime(); load > 5 {
			multiplier += 0.3
			if load > 8 {
				multiplier += 0.5
			}
		}
	}
	if mobile.Present && mobile.Score < 50 {
		multiplier += 0.4
	}
	if seo.Present && seo.Score < 60 {
		multiplier += 0.3
	}
	if conversion.Present {
		if !convData.PhoneVisible {
			multiplier += 0.4
		}
		if !convData.ContactFormPresent {
			multiplier += 0.2
		}
	}
	if locationDependent[category] && local.Present && local.Score < 50 {
		multiplier += 0.5
	}

	return domain.RevenueProjection{
		Min: int(math.Round(base.min * multiplier)),
		Max: int(math.Round(base.max * multiplier)),
	}
}
