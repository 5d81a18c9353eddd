package survey

import (
	"homesurvey/internal/common/metrics"
	"homesurvey/internal/models"
)

// ExtractResultPayload normalizes a raw model reply. A classic dashboard
// object wins, then any other JSON object, then the prose heuristics.
func ExtractResultPayload(text string) models.Payload {
	if obj := ExtractJSONBlock(text); obj != nil {
		if classic := ParseClassicCase(obj); classic != nil {
			metrics.PayloadShapeTotal.WithLabelValues(metrics.ShapeClassic).Inc()
			return models.Payload{Structured: ClassicToStructured(classic), Classic: classic}
		}
		metrics.PayloadShapeTotal.WithLabelValues(metrics.ShapeJSON).Inc()
		return models.Payload{Structured: structuredFromObject(obj)}
	}

	structured := ConvertPlainTextToStructured(text)
	if structured == nil {
		metrics.PayloadShapeTotal.WithLabelValues(metrics.ShapeEmpty).Inc()
		return models.Payload{}
	}
	metrics.PayloadShapeTotal.WithLabelValues(metrics.ShapePlainText).Inc()
	return models.Payload{Structured: structured}
}
