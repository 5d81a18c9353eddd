package envelope

import (
	"context"
	"encoding/json"

	"homesurvey/internal/imageref"
	"homesurvey/internal/models"
	"homesurvey/internal/survey"
)

// resultImages normalizes the first image reference of every result,
// dropping placeholders and empties.
func resultImages(resolver *imageref.Resolver, results []models.ScanResult) []string {
	refs := make([]string, 0, len(results))
	for _, r := range results {
		for _, c := range r.ImageCandidates() {
			if c != "" {
				refs = append(refs, c)
				break
			}
		}
	}
	return resolver.NormalizeAll(refs...)
}

// withLeadImage fills in a missing or placeholder image of the classic case
// and the structured result from lead without touching the originals.
func withLeadImage(structured *models.StructuredResult, classic *models.ClassicCase, lead string) (*models.StructuredResult, *models.ClassicCase) {
	var c *models.ClassicCase
	if classic != nil {
		cp := *classic
		if lead != "" && (cp.ImageURL == "" || imageref.IsPlaceholder(cp.ImageURL)) {
			cp.ImageURL = lead
		}
		c = &cp
	}

	base := structured
	if base == nil && c != nil {
		base = survey.ClassicToStructured(c)
	}
	if base == nil {
		return nil, c
	}
	st := *base
	if st.ImageURL == "" || imageref.IsPlaceholder(st.ImageURL) {
		st.ImageURL = lead
	}
	return &st, c
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type analysis struct {
	*models.Analysis
	lead string
	// fromEnvelopePreview is set when the lead image is the envelope's own
	// preview because neither the results nor the caller had one.
	fromEnvelopePreview bool
}

// Analyze builds the analysis view of env without touching storage.
// pendingImage is a locally held preview used when the scan has no image.
func Analyze(resolver *imageref.Resolver, env *models.Envelope, pendingImage string) *models.Analysis {
	if env == nil {
		return nil
	}
	if resolver == nil {
		resolver = imageref.New("")
	}
	return analyze(resolver, env, pendingImage).Analysis
}

func analyze(resolver *imageref.Resolver, env *models.Envelope, pendingImage string) analysis {
	rawText := env.RawText()

	structured, classic := env.Structured, env.Classic
	if rawText != "" && (structured == nil || classic == nil) {
		parsed := survey.ExtractResultPayload(rawText)
		if structured == nil {
			structured = parsed.Structured
		}
		if classic == nil {
			classic = parsed.Classic
		}
	}

	images := resultImages(resolver, env.Results)
	envelopePreview := resolver.Preview(env.PreviewImage)
	pending := resolver.Preview(pendingImage)
	fromEnvelope := false
	if len(images) == 0 && pending != "" {
		images = []string{pending}
	}
	if len(images) == 0 && envelopePreview != "" {
		images = []string{envelopePreview}
		fromEnvelope = true
	}
	lead := ""
	if len(images) > 0 {
		lead = images[0]
	}

	structured, classic = withLeadImage(structured, classic, lead)

	if classic != nil && classic.ImageURL != "" {
		if formatted := resolver.Preview(classic.ImageURL); formatted != "" && !containsString(images, formatted) {
			images = append(images, formatted)
		}
	}
	if len(images) > 1 {
		images = images[:1]
	}

	report, _ := survey.BuildReport(
		models.Payload{Structured: structured, Classic: classic},
		survey.ReportContext{
			Property: env.Property,
			Images:   images,
			Preview:  firstNonEmpty(pending, envelopePreview),
			Resolver: resolver,
		},
	)

	return analysis{
		Analysis: &models.Analysis{
			ScanID:     env.ScanID,
			Structured: structured,
			Classic:    classic,
			Raw:        rawText,
			Meta: models.AnalysisMeta{
				CreatedAt: env.CreatedAt,
				Model:     env.Model,
				Provider:  env.Provider,
			},
			Images:   images,
			Property: env.Property,
			Report:   report,
		},
		lead:                lead,
		fromEnvelopePreview: fromEnvelope,
	}
}

// Sync rebuilds the analysis view from env for userID, rewrites the last-*
// keys and saves the envelope back stamped with userID.
func (s *Store) Sync(ctx context.Context, env *models.Envelope, userID, pendingImage string) *models.Analysis {
	if env == nil {
		return nil
	}
	a := analyze(s.resolver, env, pendingImage)

	if a.fromEnvelopePreview {
		s.items.SetItem(ctx, KeyLastImageB64, a.lead, userID)
	}
	if a.Structured != nil {
		s.setJSON(ctx, KeyLastResult, a.Structured, userID)
	}
	if a.Classic != nil {
		if pretty, err := json.MarshalIndent(a.Classic, "", "  "); err == nil {
			s.items.SetItem(ctx, KeyLastReportJSON, string(pretty), userID)
		}
	}
	if a.lead != "" {
		s.items.SetItem(ctx, KeyLastImage, a.lead, userID)
	}
	if a.Raw != "" {
		s.items.SetItem(ctx, KeyLastRaw, a.Raw, userID)
	}
	if env.Raws != nil {
		s.setJSON(ctx, KeyLastRaws, env.Raws, userID)
	}

	updated := *env
	if a.Structured != nil {
		updated.Structured = a.Structured
	}
	if a.Classic != nil {
		updated.Classic = a.Classic
	}
	s.Save(ctx, &updated, userID)

	return a.Analysis
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
