package models

// ScanResponse is the body of POST /api/scan.
type ScanResponse struct {
	OK         *bool                  `json:"ok,omitempty"`
	ScanID     string                 `json:"scan_id,omitempty"`
	QuestionID string                 `json:"question_id,omitempty"`
	Raws       []string               `json:"raws,omitempty"`
	Raw        string                 `json:"raw,omitempty"`
	Results    []ScanResult           `json:"results,omitempty"`
	Property   *Property              `json:"property,omitempty"`
	Survey     map[string]interface{} `json:"survey,omitempty"`
	CreatedAt  string                 `json:"created_at,omitempty"`
	Model      string                 `json:"model,omitempty"`
	Provider   string                 `json:"provider,omitempty"`
	Detail     interface{}            `json:"detail,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// HistoryItem is one row of GET /api/scans.
type HistoryItem struct {
	ID           string `json:"id"`
	QuestionID   string `json:"question_id,omitempty"`
	Model        string `json:"model,omitempty"`
	Provider     string `json:"provider,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	PreviewImage string `json:"preview_image,omitempty"`
}

// ScanDetail is the scan object of GET /api/scans/{id}.
type ScanDetail struct {
	ID           string                 `json:"id"`
	QuestionID   string                 `json:"question_id,omitempty"`
	Model        string                 `json:"model,omitempty"`
	Provider     string                 `json:"provider,omitempty"`
	CreatedAt    string                 `json:"created_at,omitempty"`
	Results      []ScanResult           `json:"results,omitempty"`
	RawText      string                 `json:"raw_text,omitempty"`
	Structured   *StructuredResult      `json:"structured,omitempty"`
	Property     *Property              `json:"property,omitempty"`
	Survey       map[string]interface{} `json:"survey,omitempty"`
	PreviewImage string                 `json:"preview_image,omitempty"`
}
