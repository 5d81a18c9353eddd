// internal/models/envelope.go
package models

// ScanResult is one per-image entry of a backend scan response.
type ScanResult struct {
	ImageURL        string `json:"image_url,omitempty"`
	Image           string `json:"image,omitempty"`
	ImageB64        string `json:"image_b64,omitempty"`
	ImageB64Preview string `json:"image_b64_preview,omitempty"`
	Response        string `json:"response,omitempty"`
}

// ImageCandidates lists the image references of the result in preference order.
func (r ScanResult) ImageCandidates() []string {
	return []string{r.ImageURL, r.Image, r.ImageB64, r.ImageB64Preview}
}

// Envelope is the persisted record of the latest scan for one user.
type Envelope struct {
	ScanID       string                 `json:"scan_id"`
	QuestionID   string                 `json:"question_id,omitempty"`
	Model        string                 `json:"model,omitempty"`
	Provider     string                 `json:"provider,omitempty"`
	CreatedAt    string                 `json:"created_at,omitempty"`
	Results      []ScanResult           `json:"results"`
	Raws         []string               `json:"raws"`
	Raw          string                 `json:"raw,omitempty"`
	Structured   *StructuredResult      `json:"structured,omitempty"`
	Classic      *ClassicCase           `json:"classic,omitempty"`
	Property     *Property              `json:"property,omitempty"`
	Survey       map[string]interface{} `json:"survey,omitempty"`
	PreviewImage string                 `json:"preview_image,omitempty"`
	UserID       string                 `json:"user_id"`
}

// RawText returns the first raw reply, falling back to Raw.
func (e *Envelope) RawText() string {
	for _, r := range e.Raws {
		if r != "" {
			return r
		}
	}
	return e.Raw
}

// Analysis is the in-memory view of a synced envelope.
type Analysis struct {
	ScanID     string            `json:"scanId,omitempty"`
	Structured *StructuredResult `json:"structured,omitempty"`
	Classic    *ClassicCase      `json:"classic,omitempty"`
	Raw        string            `json:"raw,omitempty"`
	Meta       AnalysisMeta      `json:"meta"`
	Images     []string          `json:"images"`
	Property   *Property         `json:"property,omitempty"`
	Report     ReportData        `json:"report"`
}

type AnalysisMeta struct {
	CreatedAt string `json:"created_at,omitempty"`
	Model     string `json:"model,omitempty"`
	Provider  string `json:"provider,omitempty"`
}
