package sanitizereport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "homesurvey/internal/common/errors"
	"homesurvey/internal/common/logger"
	"homesurvey/internal/models"
)

const dashboardReady = `{
  "id": "3",
  "title": "Bungalow",
  "address": "7 Park Row",
  "imageUrl": "https://cdn.test/b.jpg",
  "verdict": {"condition": "Good", "risk": "Green", "stance": "Proceed"},
  "highlights": ["Dry"],
  "likelyCauses": [],
  "level1": {"ratings": [{"element": "Roof", "rating": 1, "note": "Sound"}], "advice": "None"},
  "level2": {"investigations": [], "remediation": []},
  "level3": {"intrusive": [], "risks": [], "heavyCosts": []},
  "costs": [{"item": "Gutters", "min": 100, "max": 300}],
  "checklist": [],
  "allowance": "£500"
}`

func createTestHandler(t *testing.T, config *Config) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	return NewHandler(config, logger.NewTestLogger(t))
}

func TestHandler_Execute_ReportJSON(t *testing.T) {
	out, err := createTestHandler(t, nil).Execute(context.Background(), &Input{ReportJSON: dashboardReady})
	require.NoError(t, err)
	assert.True(t, out.Valid, out.ValidationErrors)
	assert.Empty(t, out.ValidationErrors)
	assert.Equal(t, "Bungalow", out.Report.Title)
	assert.Equal(t, []models.Cost{{Item: "Gutters", Min: 100, Max: 300}}, out.Report.Costs)
}

func TestHandler_Execute_ReportObjectIsRepaired(t *testing.T) {
	out, err := createTestHandler(t, nil).Execute(context.Background(), &Input{
		Report: map[string]interface{}{
			"title": "Flat",
			"level1": map[string]interface{}{
				"ratings": []interface{}{map[string]interface{}{"element": "Windows", "rating": 8}},
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Flat", out.Report.Title)
	assert.Equal(t, 3, out.Report.Level1.Ratings[0].Rating)
	assert.False(t, out.Valid)
	assert.NotEmpty(t, out.ValidationErrors)
}

func TestHandler_Execute_RejectInvalid(t *testing.T) {
	h := createTestHandler(t, &Config{RejectInvalid: true})
	_, err := h.Execute(context.Background(), &Input{Report: map[string]interface{}{}})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeReportInvalid))

	out, err := h.Execute(context.Background(), &Input{ReportJSON: dashboardReady})
	require.NoError(t, err)
	assert.True(t, out.Valid)
}

func TestHandler_Execute_Errors(t *testing.T) {
	h := createTestHandler(t, nil)

	_, err := h.Execute(context.Background(), &Input{ReportJSON: `{"title": `})
	require.True(t, apperrors.IsCode(err, apperrors.ErrCodeReportParseFailed))
	assert.Contains(t, apperrors.AsStandardError(err).Details, "parse report json")

	_, err = h.Execute(context.Background(), &Input{ReportJSON: "  "})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidInput))
}

func TestInputSchema(t *testing.T) {
	res, err := inputSchema.Validate(map[string]interface{}{"report": map[string]interface{}{}})
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = inputSchema.Validate(map[string]interface{}{"reportJson": 12})
	require.NoError(t, err)
	assert.False(t, res.Valid)

	res, err = inputSchema.Validate(map[string]interface{}{})
	require.NoError(t, err)
	assert.False(t, res.Valid)
}
