package persistenvelope

import (
	"homesurvey/internal/common/validation"
	"homesurvey/internal/models"
)

type Input struct {
	Envelope     *models.Envelope `json:"envelope"`
	User         *models.User     `json:"user"`
	UserID       string           `json:"userId"`
	PendingImage string           `json:"pendingImage"`
}

type Output struct {
	UserID string            `json:"userId"`
	ScanID string            `json:"scanId"`
	Stored bool              `json:"stored"`
	Report models.ReportData `json:"report"`
}

var inputSchema = validation.MustCompile(map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"envelope"},
	"properties": map[string]interface{}{
		"envelope": map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"scan_id"},
			"properties": map[string]interface{}{
				"scan_id": map[string]interface{}{"type": "string", "pattern": `\S`},
			},
		},
		"user":         map[string]interface{}{"type": []interface{}{"object", "null"}},
		"userId":       map[string]interface{}{"type": "string"},
		"pendingImage": map[string]interface{}{"type": "string"},
	},
})
