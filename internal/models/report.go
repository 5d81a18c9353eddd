// internal/models/report.go
package models

// ReportData is the render-safe survey report. Every string field is
// populated and every list is non-nil once it has been through the sanitizer.
type ReportData struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Address      string    `json:"address"`
	ImageURL     string    `json:"imageUrl"`
	Property     *Property `json:"property,omitempty"`
	Verdict      Verdict   `json:"verdict"`
	Highlights   []string  `json:"highlights"`
	LikelyCauses []string  `json:"likelyCauses"`
	Level1       Level1    `json:"level1"`
	Level2       Level2    `json:"level2"`
	Level3       Level3    `json:"level3"`
	Costs        []Cost    `json:"costs"`
	Checklist    []string  `json:"checklist"`
	Allowance    string    `json:"allowance"`
}

// ClassicCase is the RICS-style dashboard case the model is prompted to
// return. It shares its shape with ReportData but is not yet sanitized.
type ClassicCase = ReportData

type Property struct {
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	Postcode string `json:"postcode,omitempty"`
}

// IsEmpty reports whether no sub-field carries a value.
func (p *Property) IsEmpty() bool {
	return p == nil || (p.Address == "" && p.City == "" && p.Postcode == "")
}

type Verdict struct {
	Condition string `json:"condition"`
	Risk      string `json:"risk"`
	Stance    string `json:"stance"`
}

// Rating is a condition rating for one building element, 1 (good) to 3 (urgent).
type Rating struct {
	Element string `json:"element"`
	Rating  int    `json:"rating"`
	Note    string `json:"note"`
}

type Cost struct {
	Item string  `json:"item"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

type Level1 struct {
	Ratings []Rating `json:"ratings"`
	Advice  string   `json:"advice"`
}

type Level2 struct {
	Investigations []string `json:"investigations"`
	Remediation    []string `json:"remediation"`
}

type Level3 struct {
	Intrusive  []string `json:"intrusive"`
	Risks      []string `json:"risks"`
	HeavyCosts []Cost   `json:"heavyCosts"`
}

const (
	MinConditionRating = 1
	MaxConditionRating = 3
)
