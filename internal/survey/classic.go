package survey

import (
	"fmt"
	"strings"

	"homesurvey/internal/models"
)

const classicRatingCount = 3

// classicKeys must all be present for an object to be read as a ClassicCase.
var classicKeys = []string{"verdict", "level1", "level2"}

// IsClassicShape reports whether obj carries the classic dashboard keys.
func IsClassicShape(obj map[string]interface{}) bool {
	if obj == nil {
		return false
	}
	for _, k := range classicKeys {
		if _, ok := obj[k]; !ok {
			return false
		}
	}
	return true
}

var (
	classicText    = CollapsedText("")
	classicStrings = Strings(CollapsedText(""))
	classicCosts   = ListOf(func(v interface{}, _ int) (models.Cost, bool) {
		entry := Object(v)
		c := models.Cost{
			Item: Field(entry, "item", classicText),
			Min:  Field(entry, "min", NonNegative()),
			Max:  Field(entry, "max", NonNegative()),
		}
		return c, c.Item != ""
	})
)

func elementLabel(index int) string {
	return fmt.Sprintf("Element %d", index+1)
}

// classicRatings returns exactly three ratings clamped to the condition
// rating range, padding with neutral entries.
func classicRatings(v interface{}) []models.Rating {
	entries, _ := v.([]interface{})
	if len(entries) > classicRatingCount {
		entries = entries[:classicRatingCount]
	}
	ratings := make([]models.Rating, 0, classicRatingCount)
	for i, e := range entries {
		entry := Object(e)
		ratings = append(ratings, models.Rating{
			Element: Field(entry, "element", CollapsedText(elementLabel(i))),
			Rating:  roundClamp(toNumber(entry["rating"]), models.MinConditionRating, models.MaxConditionRating),
			Note:    Field(entry, "note", classicText),
		})
	}
	for len(ratings) < classicRatingCount {
		ratings = append(ratings, models.Rating{
			Element: elementLabel(len(ratings)),
			Rating:  models.MinConditionRating,
		})
	}
	return ratings
}

func decodeProperty(v interface{}, text Decoder[string]) *models.Property {
	obj := Object(v)
	p := &models.Property{
		Address:  Field(obj, "address", text),
		City:     Field(obj, "city", text),
		Postcode: Field(obj, "postcode", text),
	}
	if p.IsEmpty() {
		return nil
	}
	return p
}

// ParseClassicCase reads obj as a ClassicCase. It returns nil unless obj has
// the verdict, level1 and level2 keys; their values may be anything.
func ParseClassicCase(obj map[string]interface{}) *models.ClassicCase {
	if !IsClassicShape(obj) {
		return nil
	}
	verdict := Object(obj["verdict"])
	level1 := Object(obj["level1"])
	level2 := Object(obj["level2"])
	level3 := Object(obj["level3"])

	return &models.ClassicCase{
		ID:       Field(obj, "id", CollapsedText("1")),
		Title:    Field(obj, "title", CollapsedText(defaultTitle)),
		Address:  Field(obj, "address", classicText),
		ImageURL: Field(obj, "imageUrl", classicText),
		Property: decodeProperty(obj["property"], classicText),
		Verdict: models.Verdict{
			Condition: Field(verdict, "condition", classicText),
			Risk:      Field(verdict, "risk", classicText),
			Stance:    Field(verdict, "stance", classicText),
		},
		Highlights:   Field(obj, "highlights", classicStrings),
		LikelyCauses: Field(obj, "likelyCauses", classicStrings),
		Level1: models.Level1{
			Ratings: classicRatings(level1["ratings"]),
			Advice:  Field(level1, "advice", classicText),
		},
		Level2: models.Level2{
			Investigations: Field(level2, "investigations", classicStrings),
			Remediation:    Field(level2, "remediation", classicStrings),
		},
		Level3: models.Level3{
			Intrusive:  Field(level3, "intrusive", classicStrings),
			Risks:      Field(level3, "risks", classicStrings),
			HeavyCosts: Field(level3, "heavyCosts", classicCosts),
		},
		Costs:     Field(obj, "costs", classicCosts),
		Checklist: Field(obj, "checklist", classicStrings),
		Allowance: Field(obj, "allowance", classicText),
	}
}

// InterpretRiskLevel maps free-text risk wording onto high, moderate or low.
func InterpretRiskLevel(value string) string {
	lower := strings.ToLower(value)
	switch {
	case strings.Contains(lower, "high"), strings.Contains(lower, "red"):
		return models.RiskHigh
	case strings.Contains(lower, "moderate"), strings.Contains(lower, "amber"):
		return models.RiskModerate
	case lower != "":
		return models.RiskLow
	}
	return ""
}

// ClassicToStructured projects a ClassicCase onto the summary shape.
func ClassicToStructured(c *models.ClassicCase) *models.StructuredResult {
	if c == nil {
		return nil
	}
	result := &models.StructuredResult{
		Title:              firstNonEmpty(c.Title, defaultTitle),
		Summary:            firstNonEmpty(c.Verdict.Condition, c.Verdict.Stance),
		Findings:           DedupeList(c.Highlights),
		RecommendedActions: DedupeList(c.Level2.Remediation),
		RiskLevel:          InterpretRiskLevel(c.Verdict.Risk),
		Keywords:           DedupeList(c.LikelyCauses),
		ImageURL:           c.ImageURL,
	}
	ensureFindings(result)
	return result
}
