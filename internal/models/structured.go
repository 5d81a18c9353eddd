package models

// Risk levels understood by StructuredResult.RiskLevel.
const (
	RiskHigh     = "high"
	RiskModerate = "moderate"
	RiskLow      = "low"
)

// StructuredResult is the lightweight analysis summary derived from any
// model reply, whether it was JSON or prose.
type StructuredResult struct {
	Title              string   `json:"title"`
	Summary            string   `json:"summary"`
	Findings           []string `json:"findings"`
	RecommendedActions []string `json:"recommended_actions"`
	RiskLevel          string   `json:"risk_level"`
	Keywords           []string `json:"keywords"`
	ImageURL           string   `json:"imageUrl,omitempty"`
}

// Payload is what a raw model reply normalizes to. Either side may be nil.
type Payload struct {
	Structured *StructuredResult `json:"structured,omitempty"`
	Classic    *ClassicCase      `json:"classic,omitempty"`
}
