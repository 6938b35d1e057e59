package extractors

import (
	"context"
	"regexp"
	"strings"

	"github.com/abadojack/whatlanggo"

	"sitepulse/packages/domain"
	"sitepulse/packages/metrics"
)

var (
	localPhoneRe = phoneRe
	emailRe      = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	addressRe    = regexp.MustCompile(`(?i)\d+\s+[A-Za-z0-9.\s]+\b(street|st|avenue|ave|road|rd|boulevard|blvd|drive|dr|lane|ln|way|court|ct|suite|ste)\b`)
)

// Category keyword vocabularies. Unlisted categories use retail's.
var localVocabulary = map[domain.BusinessCategory][]string{
	domain.CategoryRestaurant:           {"restaurant", "dining", "menu", "reservations", "local food"},
	domain.CategoryHomeServices:         {"plumber", "electrician", "hvac", "repair", "emergency service", "licensed"},
	domain.CategoryHealthcare:           {"clinic", "doctor", "appointment", "patients", "care"},
	domain.CategoryAutomotive:           {"auto repair", "mechanic", "oil change", "tires", "brake"},
	domain.CategoryRetail:               {"store", "shop", "hours", "location", "near you"},
	domain.CategoryProfessionalServices: {"consultation", "attorney", "accountant", "firm", "services"},
}

type ContactInfo struct {
	Phone   bool `json:"phone"`
	Address bool `json:"address"`
	Email   bool `json:"email"`
}

type LocalData struct {
	ContactInfo    ContactInfo `json:"contact_info"`
	LocalKeywords  []string    `json:"local_keywords"`
	StructuredData bool        `json:"structured_data"`
	Language       string      `json:"language,omitempty"`
}

type LocalSEO struct{}

func (*LocalSEO) Name() string { return "local" }

func (l *LocalSEO) Extract(_ context.Context, in *Input) domain.ExtractorResult {
	if in.Doc == nil {
		metrics.ExtractorFailures.WithLabelValues(l.Name()).Inc()
		return domain.Absent(l.Name(), "no parsed document")
	}

	data := LocalData{}
	text := in.Text
	lowerText := strings.ToLower(text)

	data.ContactInfo.Phone = localPhoneRe.MatchString(text)
	data.ContactInfo.Address = addressRe.MatchString(text)
	data.ContactInfo.Email = emailRe.MatchString(text)
	data.StructuredData = in.Doc.Find(`script[type="application/ld+json"]`).Length() > 0

	// The keyword vocabularies are English; skip the match when the page is
	// confidently detected as another language so the miss is not penalized
	// as a finding about keyword usage.
	info := whatlanggo.Detect(sampleForDetection(text))
	data.Language = info.Lang.Iso6393()
	englishOrUnknown := data.Language == "eng" || !info.IsReliable()

	if englishOrUnknown {
		vocab, ok := localVocabulary[in.Target.Category]
		if !ok {
			vocab = localVocabulary[domain.CategoryRetail]
		}
		for _, kw := range vocab {
			if strings.Contains(lowerText, kw) {
				data.LocalKeywords = append(data.LocalKeywords, kw)
			}
		}
	}

	score := 0
	if data.ContactInfo.Phone {
		score += 25
	}
	if data.ContactInfo.Address {
		score += 25
	}
	if data.ContactInfo.Email {
		score += 15
	}
	if len(data.LocalKeywords) > 0 {
		score += 20
	}
	if data.StructuredData {
		score += 15
	}

	return domain.ExtractorResult{Name: l.Name(), Score: clampScore(score), Present: true, Data: data}
}

// Recommendations lists the missing local-presence elements in check order.
func (d LocalData) Recommendations() []string {
	var recs []string
	if !d.ContactInfo.Phone {
		recs = append(recs, "Display a local phone number prominently on the page")
	}
	if !d.ContactInfo.Address {
		recs = append(recs, "Add a street address so customers and search engines can find you")
	}
	if !d.ContactInfo.Email {
		recs = append(recs, "Publish a contact email address")
	}
	if len(d.LocalKeywords) == 0 {
		recs = append(recs, "Mention the services and area you serve in page copy")
	}
	if !d.StructuredData {
		recs = append(recs, "Add LocalBusiness JSON-LD structured data")
	}
	return recs
}

func sampleForDetection(text string) string {
	words := strings.Fields(text)
	if len(words) > 100 {
		return strings.Join(words[:100], " ")
	}
	return text
}
