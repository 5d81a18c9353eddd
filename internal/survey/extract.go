// Package survey turns free-form model output into structured survey results
// and render-safe reports.
package survey

import (
	"encoding/json"
	"regexp"
	"strings"

	"homesurvey/internal/common/metrics"
)

var fencedBlock = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)```")

// ExtractJSONBlock finds the first JSON object embedded in text. It tries
// the first fenced code block, then the span from the first '{' to the last
// '}'. It returns nil when neither parses to an object.
func ExtractJSONBlock(text string) map[string]interface{} {
	obj, _ := extractJSONBlock(text)
	return obj
}

func extractJSONBlock(text string) (map[string]interface{}, string) {
	if text == "" {
		return nil, metrics.StrategyNone
	}

	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		if obj, ok := parseObject(m[1]); ok {
			metrics.ExtractionTotal.WithLabelValues(metrics.StrategyFenced).Inc()
			return obj, metrics.StrategyFenced
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		if obj, ok := parseObject(text[start : end+1]); ok {
			metrics.ExtractionTotal.WithLabelValues(metrics.StrategyBraces).Inc()
			return obj, metrics.StrategyBraces
		}
	}

	metrics.ExtractionTotal.WithLabelValues(metrics.StrategyNone).Inc()
	return nil, metrics.StrategyNone
}

func parseObject(s string) (map[string]interface{}, bool) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}
