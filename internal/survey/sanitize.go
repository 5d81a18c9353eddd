package survey

import (
	"encoding/json"
	"fmt"

	"homesurvey/internal/models"
)

// Defaults a sanitized report falls back to.
const (
	Placeholder   = "–"
	DefaultTitle  = "Inspection Report"
	UnknownValue  = "Unknown"
	DefaultStance = "Further investigation recommended"
)

var (
	plainText   = Text("")
	textList    = Strings(Text(""))
	reportCosts = ListOf(func(v interface{}, _ int) (models.Cost, bool) {
		entry := Object(v)
		c := models.Cost{
			Item: Field(entry, "item", plainText),
			Min:  Field(entry, "min", NonNegative()),
			Max:  Field(entry, "max", NonNegative()),
		}
		return c, c.Item != ""
	})
	reportRatings = ListOf(func(v interface{}, i int) (models.Rating, bool) {
		entry := Object(v)
		return models.Rating{
			Element: Field(entry, "element", Text(elementLabel(i))),
			Rating:  Field(entry, "rating", ClampedInt(models.MinConditionRating, models.MaxConditionRating)),
			Note:    Field(entry, "note", plainText),
		}, true
	})
)

// SanitizeReportData coerces any value into a fully populated ReportData.
// It never fails, never pads ratings, and is idempotent: sanitizing its own
// output (as a struct or as decoded JSON) returns an equal value.
func SanitizeReportData(input interface{}) models.ReportData {
	src := Object(toGeneric(input))
	verdict := Object(src["verdict"])
	level1 := Object(src["level1"])
	level2 := Object(src["level2"])
	level3 := Object(src["level3"])

	return models.ReportData{
		ID:       Field(src, "id", Text(Placeholder)),
		Title:    Field(src, "title", Text(DefaultTitle)),
		Address:  Field(src, "address", Text(Placeholder)),
		ImageURL: Field(src, "imageUrl", plainText),
		Property: decodeProperty(src["property"], plainText),
		Verdict: models.Verdict{
			Condition: Field(verdict, "condition", Text(UnknownValue)),
			Risk:      Field(verdict, "risk", Text(UnknownValue)),
			Stance:    Field(verdict, "stance", Text(DefaultStance)),
		},
		Highlights:   Field(src, "highlights", textList),
		LikelyCauses: Field(src, "likelyCauses", textList),
		Level1: models.Level1{
			Ratings: Field(level1, "ratings", reportRatings),
			Advice:  Field(level1, "advice", plainText),
		},
		Level2: models.Level2{
			Investigations: Field(level2, "investigations", textList),
			Remediation:    Field(level2, "remediation", textList),
		},
		Level3: models.Level3{
			Intrusive:  Field(level3, "intrusive", textList),
			Risks:      Field(level3, "risks", textList),
			HeavyCosts: Field(level3, "heavyCosts", reportCosts),
		},
		Costs:     Field(src, "costs", reportCosts),
		Checklist: Field(src, "checklist", textList),
		Allowance: Field(src, "allowance", plainText),
	}
}

// ParseReportJSON decodes pasted report JSON and sanitizes it. Unlike the
// rest of the pipeline it reports malformed JSON, since a person is waiting
// on the result.
func ParseReportJSON(data []byte) (models.ReportData, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.ReportData{}, fmt.Errorf("parse report json: %w", err)
	}
	return SanitizeReportData(raw), nil
}
