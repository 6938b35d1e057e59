package audit

import (
	"fmt"

	"sitepulse/packages/domain"
	"sitepulse/packages/extractors"
)

// Classify applies the fixed threshold rules in fixed order: critical,
// high, then medium. One issue per triggered rule per run; no sorting by
// magnitude afterwards.
func Classify(perf, seo, mobile, conversion, local domain.ExtractorResult) []domain.Issue {
	var issues []domain.Issue

	perfData, _ := perf.Data.(extractors.PerformanceData)
	seoData, _ := seo.Data.(extractors.SEOData)
	convData, _ := conversion.Data.(extractors.ConversionData)

	mobileLoad := -1.0
	if perf.Present {
		mobileLoad = perfData.MobileLoadTime()
	}

	// critical
	if mobileLoad > 8 {
		issues = append(issues, domain.Issue{
			Title:    "Critically slow mobile load time",
			Severity: domain.SeverityCritical,
			Impact:   "Visitors abandon slow pages before they see your offer",
			Description: fmt.Sprintf("Your site takes %.1f seconds to load on mobile; most visitors leave after 3 seconds.",
				mobileLoad),
			Solution: "Compress images, enable caching, and reduce render-blocking scripts to bring load time under 3 seconds.",
		})
	}
	if conversion.Present && !convData.PhoneVisible {
		issues = append(issues, domain.Issue{
			Title:       "Phone number not visible",
			Severity:    domain.SeverityCritical,
			Impact:      "Customers who cannot find a number call a competitor instead",
			Description: "No phone number was found in the page content.",
			Solution:    "Place your phone number in the header and make it a tap-to-call link on mobile.",
		})
	}
	if mobile.Present && mobile.Score < 40 {
		issues = append(issues, domain.Issue{
			Title:       "Site is not mobile friendly",
			Severity:    domain.SeverityCritical,
			Impact:      "Most local searches happen on phones",
			Description: fmt.Sprintf("The mobile experience scored %d out of 100.", mobile.Score),
			Solution:    "Adopt a responsive layout with a viewport meta tag, readable text sizes, and touch-friendly buttons.",
		})
	}

	// high
	if seo.Present && seoData.Issues.MissingTitle {
		issues = append(issues, domain.Issue{
			Title:       "Missing page title",
			Severity:    domain.SeverityHigh,
			Impact:      "Search engines cannot rank a page they cannot describe",
			Description: "The page has no <title> tag.",
			Solution:    "Add a descriptive 30-60 character title that names your service and city.",
		})
	}
	if seo.Present && seoData.Issues.MissingMetaDescription {
		issues = append(issues, domain.Issue{
			Title:       "Missing meta description",
			Severity:    domain.SeverityHigh,
			Impact:      "Search results show arbitrary page text instead of your pitch",
			Description: "The page has no meta description tag.",
			Solution:    "Write a 120-160 character summary that invites searchers to click.",
		})
	}
	if mobileLoad > 5 && mobileLoad <= 8 {
		issues = append(issues, domain.Issue{
			Title:    "Slow mobile load time",
			Severity: domain.SeverityHigh,
			Impact:   "Every extra second of load time costs conversions",
			Description: fmt.Sprintf("Your site takes %.1f seconds to load on mobile.",
				mobileLoad),
			Solution: "Optimize images and defer non-essential scripts.",
		})
	}
	if local.Present && local.Score < 50 {
		issues = append(issues, domain.Issue{
			Title:       "Weak local search presence",
			Severity:    domain.SeverityHigh,
			Impact:      "Nearby customers searching for your service cannot find you",
			Description: fmt.Sprintf("Local SEO signals scored %d out of 100.", local.Score),
			Solution:    "Publish your name, address, and phone consistently and add LocalBusiness structured data.",
		})
	}

	// medium
	if conversion.Present && !convData.ContactFormPresent {
		issues = append(issues, domain.Issue{
			Title:       "No contact form",
			Severity:    domain.SeverityMedium,
			Impact:      "After-hours visitors have no way to reach you",
			Description: "No form element was found on the page.",
			Solution:    "Add a short contact form above the fold with name, phone, and message fields.",
		})
	}
	if seo.Present && seoData.Issues.MissingAltTags > 0 {
		issues = append(issues, domain.Issue{
			Title:    "Images missing alt text",
			Severity: domain.SeverityMedium,
			Impact:   "Search engines and screen readers cannot interpret your images",
			Description: fmt.Sprintf("%d of %d images have no alt attribute.",
				seoData.Issues.MissingAltTags, seoData.Issues.TotalImages),
			Solution: "Describe each image's content in its alt attribute.",
		})
	}

	return issues
}
