package survey

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"homesurvey/internal/models"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonAlnumRun   = regexp.MustCompile(`[^a-zA-Z0-9]+`)
)

const maxKeywords = 8

// NormalizeWhitespace collapses whitespace runs to one space and trims.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// sentenceFrom returns the first clause of s, up to and including the
// period of the first ". ".
func sentenceFrom(s string) string {
	cleaned := NormalizeWhitespace(s)
	if idx := strings.Index(cleaned, ". "); idx != -1 {
		return cleaned[:idx+1]
	}
	return cleaned
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// DedupeList normalizes whitespace, drops empties and removes
// case-insensitive duplicates. The first spelling seen wins and order is kept.
func DedupeList(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := NormalizeWhitespace(item)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

// detectRiskLevel scans lines mentioning "risk" and returns the first level
// named on one of them, or "".
func detectRiskLevel(lines []string) string {
	for _, line := range lines {
		lower := strings.ToLower(line)
		if !strings.Contains(lower, "risk") {
			continue
		}
		switch {
		case strings.Contains(lower, "high"):
			return models.RiskHigh
		case strings.Contains(lower, "moderate"), strings.Contains(lower, "medium"):
			return models.RiskModerate
		case strings.Contains(lower, "low"):
			return models.RiskLow
		}
	}
	return ""
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// extractKeywords tokenizes source, keeps non-numeric tokens longer than
// three characters, appends the fallback terms and caps the deduplicated
// result.
func extractKeywords(source string, fallback []string) []string {
	var combined []string
	for _, word := range nonAlnumRun.Split(NormalizeWhitespace(source), -1) {
		if len(word) > 3 && !isNumeric(word) {
			combined = append(combined, strings.ToLower(word))
		}
	}
	for _, f := range fallback {
		combined = append(combined, strings.ToLower(f))
	}
	keywords := DedupeList(combined)
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return keywords
}
