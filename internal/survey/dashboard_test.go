package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homesurvey/internal/models"
)

func completeCase() models.ReportData {
	return models.ReportData{
		ID:           "1",
		Title:        "Detached house",
		Address:      "4 Elm Close",
		ImageURL:     "https://cdn.test/elm.jpg",
		Verdict:      models.Verdict{Condition: "Good", Risk: "Green", Stance: "Proceed"},
		Highlights:   []string{"New roof"},
		LikelyCauses: []string{"Recent renovation"},
		Level1: models.Level1{
			Ratings: []models.Rating{{Element: "Roof", Rating: 1, Note: "New coverings"}},
			Advice:  "No urgent work",
		},
		Level2: models.Level2{Investigations: []string{}, Remediation: []string{}},
		Level3: models.Level3{
			Intrusive:  []string{},
			Risks:      []string{},
			HeavyCosts: []models.Cost{{Item: "Driveway", Min: 0, Max: 4000}},
		},
		Costs:     []models.Cost{},
		Checklist: []string{"Service boiler"},
		Allowance: "£2,000",
	}
}

func TestValidateCase(t *testing.T) {
	res, err := ValidateCase(completeCase())
	require.NoError(t, err)
	assert.True(t, res.Valid, res.GetErrorMessages())

	bad := completeCase()
	bad.Title = "   "
	bad.Level1.Ratings[0].Rating = 4
	bad.Costs = []models.Cost{{Item: "Roof", Min: -1, Max: 10}}
	res, err = ValidateCase(bad)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.True(t, res.HasErrors("title"))
	assert.NotEmpty(t, res.GetErrorsForField("level1.ratings.0"))
	assert.NotEmpty(t, res.GetErrorsForField("costs.0"))
}

func TestValidateCase_SanitizedDefaultsAreNotDashboardReady(t *testing.T) {
	res, err := ValidateCase(SanitizeReportData(nil))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.True(t, res.HasErrors("imageUrl"))
	assert.True(t, res.HasErrors("allowance"))
}

func TestValidateDashboard(t *testing.T) {
	res, err := ValidateDashboard(map[string]interface{}{"cases": []models.ReportData{completeCase()}})
	require.NoError(t, err)
	assert.True(t, res.Valid, res.GetErrorMessages())

	res, err = ValidateDashboard(map[string]interface{}{})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.True(t, res.HasErrors("cases"))
}
