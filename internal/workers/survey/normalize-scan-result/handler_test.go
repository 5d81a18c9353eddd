package normalizescanresult

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "homesurvey/internal/common/errors"
	"homesurvey/internal/common/logger"
	"homesurvey/internal/imageref"
	"homesurvey/internal/models"
)

const classicReply = "Result:\n```json\n" + `{
  "title": "Semi-detached",
  "verdict": {"condition": "Poor", "risk": "Red", "stance": "Renegotiate"},
  "highlights": ["Roof spread"],
  "level1": {"ratings": [{"element": "Roof", "rating": 3}]},
  "level2": {"remediation": ["Structural engineer"]}
}` + "\n```"

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), imageref.New("https://api.test"), logger.NewTestLogger(t))
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		validate func(t *testing.T, out *Output)
	}{
		{
			name: "plain text reply",
			input: &Input{
				RawText:  "Observations: crack in wall. Recommend: call surveyor. Risk: high.",
				Results:  []models.ScanResult{{ImageURL: "/uploads/a.jpg"}},
				Property: &models.Property{Address: "1 High St", City: "Leeds"},
			},
			validate: func(t *testing.T, out *Output) {
				require.NotNil(t, out.Structured)
				assert.Nil(t, out.Classic)
				assert.Equal(t, models.RiskHigh, out.Structured.RiskLevel)
				assert.Equal(t, "preview", out.Report.ID)
				assert.Equal(t, "1 High St, Leeds", out.Report.Address)
				assert.Equal(t, "https://api.test/uploads/a.jpg", out.Report.ImageURL)
				assert.Equal(t, []string{"https://api.test/uploads/a.jpg"}, out.Images)
			},
		},
		{
			name: "classic reply in raws",
			input: &Input{
				Raws:         []string{"", classicReply},
				PreviewImage: "data:image/png;base64,AAAA",
			},
			validate: func(t *testing.T, out *Output) {
				require.NotNil(t, out.Classic)
				require.NotNil(t, out.Structured)
				assert.Equal(t, "Semi-detached", out.Report.Title)
				assert.Equal(t, models.RiskHigh, out.Structured.RiskLevel)
				assert.Equal(t, "data:image/png;base64,AAAA", out.Report.ImageURL)
				assert.Len(t, out.Report.Level1.Ratings, 3)
			},
		},
		{
			name: "rawText wins over raws",
			input: &Input{
				RawText: "Damp in cellar. Risk is low.",
				Raws:    []string{classicReply},
			},
			validate: func(t *testing.T, out *Output) {
				assert.Nil(t, out.Classic)
				assert.Equal(t, models.RiskLow, out.Report.Verdict.Risk)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := createTestHandler(t).Execute(context.Background(), tt.input)
			require.NoError(t, err)
			tt.validate(t, out)
		})
	}
}

func TestHandler_Execute_EmptyReply(t *testing.T) {
	h := createTestHandler(t)
	for _, input := range []*Input{{}, {Raws: []string{""}}, {RawText: " \n\t "}} {
		_, err := h.Execute(context.Background(), input)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeEmptyScanResult), "%+v", input)
	}
}

func TestInputSchema(t *testing.T) {
	res, err := inputSchema.Validate(map[string]interface{}{"rawText": "x", "property": nil, "results": nil})
	require.NoError(t, err)
	assert.True(t, res.Valid, res.GetErrorMessages())

	res, err = inputSchema.Validate(map[string]interface{}{"previewImage": "x"})
	require.NoError(t, err)
	assert.False(t, res.Valid)

	res, err = inputSchema.Validate(map[string]interface{}{"raws": []interface{}{1}})
	require.NoError(t, err)
	assert.False(t, res.Valid)
}
