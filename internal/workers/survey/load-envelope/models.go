package loadenvelope

import (
	"homesurvey/internal/common/validation"
	"homesurvey/internal/models"
)

type Input struct {
	User   *models.User `json:"user"`
	UserID string       `json:"userId"`
}

type Output struct {
	UserID    string             `json:"userId"`
	Found     bool               `json:"found"`
	Discarded bool               `json:"discarded"`
	Envelope  *models.Envelope   `json:"envelope,omitempty"`
	Report    *models.ReportData `json:"report,omitempty"`
	Images    []string           `json:"images,omitempty"`
}

var inputSchema = validation.MustCompile(map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"user":   map[string]interface{}{"type": []interface{}{"object", "null"}},
		"userId": map[string]interface{}{"type": "string"},
	},
})
