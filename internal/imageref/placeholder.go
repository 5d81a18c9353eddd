package imageref

import "strings"

var placeholderMarkers = []string{"placeholder", "url_to_image", "example.com"}

var placeholderValues = map[string]struct{}{
	"null": {},
	"-":    {},
	"n/a":  {},
}

// IsPlaceholder reports whether value is a stand-in rather than an image.
// Models often echo the prompt's example URL or write "n/a".
func IsPlaceholder(value string) bool {
	lower := strings.ToLower(strings.TrimSpace(value))
	if lower == "" {
		return false
	}
	if _, ok := placeholderValues[lower]; ok {
		return true
	}
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
