package sanitizereport

import (
	"homesurvey/internal/common/validation"
	"homesurvey/internal/models"
)

// Input carries either a pasted report as text or an already decoded one.
// ReportJSON wins when both are set.
type Input struct {
	ReportJSON string      `json:"reportJson"`
	Report     interface{} `json:"report"`
}

type Output struct {
	Report           models.ReportData `json:"report"`
	Valid            bool              `json:"valid"`
	ValidationErrors []string          `json:"validationErrors"`
}

var inputSchema = validation.MustCompile(map[string]interface{}{
	"type": "object",
	"anyOf": []interface{}{
		map[string]interface{}{"required": []interface{}{"reportJson"}},
		map[string]interface{}{"required": []interface{}{"report"}},
	},
	"properties": map[string]interface{}{
		"reportJson": map[string]interface{}{"type": "string"},
	},
})
