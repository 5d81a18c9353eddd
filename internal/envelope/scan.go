package envelope

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"homesurvey/internal/imageref"
	"homesurvey/internal/models"
	"homesurvey/internal/survey"
)

// ScanContext is what the client knew when it submitted a scan.
type ScanContext struct {
	QuestionID  string
	Property    *models.Property
	SurveyLevel int
	// PendingImage is the local preview (usually a data URL) of the upload.
	PendingImage string
}

func responseRaw(resp *models.ScanResponse) string {
	if len(resp.Raws) > 0 {
		return resp.Raws[0]
	}
	return resp.Raw
}

// FromScanResponse builds the envelope of a fresh scan. Nothing is
// persisted; pass the result to Sync or use Ingest.
func (s *Store) FromScanResponse(resp *models.ScanResponse, sc ScanContext) *models.Envelope {
	if resp == nil {
		return nil
	}
	parsed := survey.ExtractResultPayload(responseRaw(resp))

	property := resp.Property
	if property.IsEmpty() && !sc.Property.IsEmpty() {
		p := *sc.Property
		property = &p
	}

	surveyInfo := resp.Survey
	if surveyInfo == nil {
		surveyInfo = map[string]interface{}{"level": sc.SurveyLevel, "date": resp.CreatedAt}
	}

	images := resultImages(s.resolver, resp.Results)
	pending := s.resolver.Preview(sc.PendingImage)
	if len(images) == 0 && pending != "" {
		images = []string{pending}
	}
	lead := ""
	if len(images) > 0 {
		lead = images[0]
	}
	structured, classic := withLeadImage(parsed.Structured, parsed.Classic, lead)

	preview := firstNonEmpty(sc.PendingImage, lead)
	if imageref.IsPlaceholder(preview) {
		preview = lead
	}
	if imageref.IsPlaceholder(preview) {
		preview = ""
	}

	scanID := strings.TrimSpace(resp.ScanID)
	if scanID == "" {
		scanID = uuid.NewString()
	}

	return &models.Envelope{
		ScanID:       scanID,
		QuestionID:   firstNonEmpty(resp.QuestionID, sc.QuestionID),
		Model:        resp.Model,
		Provider:     resp.Provider,
		CreatedAt:    resp.CreatedAt,
		Results:      resp.Results,
		Raws:         resp.Raws,
		Raw:          resp.Raw,
		Structured:   structured,
		Classic:      classic,
		Property:     property,
		Survey:       surveyInfo,
		PreviewImage: preview,
	}
}

// Ingest records a fresh scan for userID and returns its analysis.
func (s *Store) Ingest(ctx context.Context, resp *models.ScanResponse, sc ScanContext, userID string) (*models.Envelope, *models.Analysis) {
	env := s.FromScanResponse(resp, sc)
	if env == nil {
		return nil, nil
	}
	if env.PreviewImage != "" {
		s.items.SetItem(ctx, KeyLastImageB64, env.PreviewImage, userID)
		s.CachePreview(ctx, env.ScanID, env.PreviewImage, userID)
	}
	stamped := s.Save(ctx, env, userID)
	return stamped, s.Sync(ctx, stamped, userID, sc.PendingImage)
}

// Hydrate turns a stored scan from the history API into an envelope.
func (s *Store) Hydrate(detail *models.ScanDetail) *models.Envelope {
	if detail == nil {
		return nil
	}
	results := detail.Results
	if results == nil {
		results = []models.ScanResult{}
	}
	raws := make([]string, 0, len(results))
	candidates := []string{detail.PreviewImage}
	for _, r := range results {
		if resp := strings.TrimSpace(r.Response); resp != "" {
			raws = append(raws, resp)
		}
		candidates = append(candidates, r.ImageURL)
	}

	return &models.Envelope{
		ScanID:       strings.TrimSpace(detail.ID),
		QuestionID:   detail.QuestionID,
		Model:        detail.Model,
		Provider:     detail.Provider,
		CreatedAt:    detail.CreatedAt,
		Results:      results,
		Raws:         raws,
		Raw:          detail.RawText,
		Structured:   detail.Structured,
		Property:     detail.Property,
		Survey:       detail.Survey,
		PreviewImage: s.resolver.Preview(candidates...),
	}
}

// Open makes a hydrated history scan the current one for userID.
func (s *Store) Open(ctx context.Context, env *models.Envelope, userID string) (*models.Envelope, error) {
	if env == nil || env.ScanID == "" {
		return nil, fmt.Errorf("%w: scan record has no id", ErrIncompleteScan)
	}
	opened := *env
	opened.PreviewImage = s.resolver.Preview(opened.PreviewImage)
	stamped := s.Save(ctx, &opened, userID)
	if stamped.PreviewImage != "" {
		s.items.SetItem(ctx, KeyLastImage, stamped.PreviewImage, userID)
		s.items.SetItem(ctx, KeyLastImageB64, stamped.PreviewImage, userID)
		s.items.SetItem(ctx, PreviewKey(stamped.ScanID), stamped.PreviewImage, userID)
	}
	return stamped, nil
}
