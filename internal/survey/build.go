package survey

import (
	"strings"

	"homesurvey/internal/imageref"
	"homesurvey/internal/models"
)

// ReportContext carries what a report needs beyond the parsed reply: the
// property entered with the scan and the images already known for it.
type ReportContext struct {
	Property *models.Property
	// Images are normalized references, lead image first.
	Images []string
	// Preview is the locally held preview, used when nothing else exists.
	Preview  string
	Resolver *imageref.Resolver
}

func (rc ReportContext) normalize(ref string) string {
	if rc.Resolver == nil {
		return strings.TrimSpace(ref)
	}
	return rc.Resolver.Normalize(ref)
}

func (rc ReportContext) leadImage() string {
	if len(rc.Images) > 0 && rc.Images[0] != "" {
		return rc.Images[0]
	}
	return rc.Preview
}

func (rc ReportContext) property() models.Property {
	if rc.Property == nil {
		return models.Property{}
	}
	return *rc.Property
}

// addressLabel joins address and city, skipping "-" parts, then falls back
// to postcode and finally to fallbacks.
func addressLabel(address, city, postcode string, fallbacks ...string) string {
	var parts []string
	for _, p := range []string{address, city} {
		if p = strings.TrimSpace(p); p != "" && p != "-" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	return firstNonEmpty(append([]string{postcode}, append(fallbacks, Placeholder)...)...)
}

// ReportFromClassic enriches a classic case with the scan's property and
// best image, then sanitizes it.
func ReportFromClassic(c *models.ClassicCase, rc ReportContext) models.ReportData {
	if c == nil {
		return SanitizeReportData(nil)
	}
	prop := rc.property()
	var caseProp models.Property
	if c.Property != nil {
		caseProp = *c.Property
	}

	image := rc.leadImage()
	if c.ImageURL != "" && !imageref.IsPlaceholder(c.ImageURL) {
		image = c.ImageURL
	}

	enriched := *c
	enriched.Address = addressLabel(firstNonEmpty(prop.Address, c.Address), prop.City, prop.Postcode, c.Address)
	enriched.ImageURL = rc.normalize(image)
	enriched.Property = &models.Property{
		Address:  firstNonEmpty(prop.Address, c.Address, caseProp.Address),
		City:     firstNonEmpty(prop.City, caseProp.City),
		Postcode: firstNonEmpty(prop.Postcode, caseProp.Postcode),
	}
	return SanitizeReportData(&enriched)
}

// ReportFromStructured lays a StructuredResult out as a report, using the
// actions for every follow-up list.
func ReportFromStructured(s *models.StructuredResult, rc ReportContext) models.ReportData {
	if s == nil {
		return SanitizeReportData(nil)
	}
	prop := rc.property()

	image := rc.leadImage()
	if len(rc.Images) == 0 && s.ImageURL != "" && !imageref.IsPlaceholder(s.ImageURL) {
		image = s.ImageURL
	}

	headline := firstNonEmpty(s.Summary, s.Title)
	report := models.ReportData{
		ID:       "preview",
		Title:    s.Title,
		Address:  addressLabel(prop.Address, prop.City, prop.Postcode),
		ImageURL: rc.normalize(image),
		Verdict: models.Verdict{
			Condition: headline,
			Risk:      firstNonEmpty(s.RiskLevel, models.RiskModerate),
			Stance:    headline,
		},
		Highlights:   s.Findings,
		LikelyCauses: s.Keywords,
		Level1:       models.Level1{Advice: s.Summary},
		Level2: models.Level2{
			Investigations: s.RecommendedActions,
			Remediation:    s.RecommendedActions,
		},
		Checklist: s.RecommendedActions,
	}
	if rc.Property != nil {
		p := *rc.Property
		report.Property = &p
	}
	return SanitizeReportData(&report)
}

// BuildReport prefers the classic case and falls back to the structured
// result. ok is false when neither is present.
func BuildReport(p models.Payload, rc ReportContext) (report models.ReportData, ok bool) {
	switch {
	case p.Classic != nil:
		return ReportFromClassic(p.Classic, rc), true
	case p.Structured != nil:
		return ReportFromStructured(p.Structured, rc), true
	}
	return models.ReportData{}, false
}
