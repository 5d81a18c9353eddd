package normalizescanresult

import (
	"homesurvey/internal/common/validation"
	"homesurvey/internal/models"
)

type Input struct {
	RawText      string              `json:"rawText"`
	Raws         []string            `json:"raws"`
	Results      []models.ScanResult `json:"results"`
	Property     *models.Property    `json:"property"`
	PreviewImage string              `json:"previewImage"`
}

type Output struct {
	Structured *models.StructuredResult `json:"structured"`
	Classic    *models.ClassicCase      `json:"classic"`
	Report     models.ReportData        `json:"report"`
	Images     []string                 `json:"images"`
}

var inputSchema = validation.MustCompile(map[string]interface{}{
	"type": "object",
	"anyOf": []interface{}{
		map[string]interface{}{"required": []interface{}{"rawText"}},
		map[string]interface{}{"required": []interface{}{"raws"}},
	},
	"properties": map[string]interface{}{
		"rawText": map[string]interface{}{"type": "string"},
		"raws": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"results": map[string]interface{}{
			"type":  []interface{}{"array", "null"},
			"items": map[string]interface{}{"type": "object"},
		},
		"property":     map[string]interface{}{"type": []interface{}{"object", "null"}},
		"previewImage": map[string]interface{}{"type": "string"},
	},
})
