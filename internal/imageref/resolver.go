// Package imageref turns the image references the backend and the model
// produce (URLs, data URLs, bare base64, relative paths) into something a
// client can render.
package imageref

import (
	"regexp"
	"strings"
)

const (
	defaultMIME   = "image/jpeg"
	minBareBase64 = 64
)

var (
	dataURLPattern  = regexp.MustCompile(`(?is)^data:(image/[^;]+);base64,(.*)$`)
	base64Alphabet  = regexp.MustCompile(`^[A-Za-z0-9+/=_-]+$`)
	absolutePrefix  = regexp.MustCompile(`(?i)^(data:|https?:|blob:)`)
	leadingDotSlash = regexp.MustCompile(`^[./]+`)
	whitespace      = regexp.MustCompile(`\s+`)
)

// Resolver resolves references against the backend base URL.
type Resolver struct {
	baseURL string
}

// New returns a Resolver for baseURL. A trailing slash is ignored.
func New(baseURL string) *Resolver {
	return &Resolver{baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
}

// BaseURL returns the normalized base.
func (r *Resolver) BaseURL() string {
	if r == nil {
		return ""
	}
	return r.baseURL
}

func looksLikeBase64(s string) bool {
	return s != "" && base64Alphabet.MatchString(s)
}

// Normalize returns a renderable reference for value, or "" when value is
// empty.
func (r *Resolver) Normalize(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}

	if m := dataURLPattern.FindStringSubmatch(trimmed); m != nil {
		payload := whitespace.ReplaceAllString(m[2], "")
		if len(payload)%4 == 0 && looksLikeBase64(payload) {
			return "data:" + m[1] + ";base64," + payload
		}
		return r.buildAbsolute(m[2])
	}

	if absolutePrefix.MatchString(trimmed) || strings.HasPrefix(trimmed, "//") {
		return trimmed
	}

	compact := whitespace.ReplaceAllString(trimmed, "")
	if len(compact) > minBareBase64 && len(compact)%4 == 0 && looksLikeBase64(compact) {
		return "data:" + defaultMIME + ";base64," + compact
	}

	return r.buildAbsolute(trimmed)
}

// buildAbsolute joins a relative path onto the base URL.
func (r *Resolver) buildAbsolute(path string) string {
	candidate := strings.TrimSpace(path)
	if candidate == "" {
		return ""
	}
	if absolutePrefix.MatchString(candidate) || strings.HasPrefix(candidate, "//") {
		return candidate
	}
	base := r.BaseURL()

	switch {
	case strings.HasPrefix(candidate, "/"):
		return base + candidate
	case strings.HasPrefix(candidate, "./"), strings.HasPrefix(candidate, "../"):
		return base + "/" + leadingDotSlash.ReplaceAllString(candidate, "")
	case strings.HasPrefix(candidate, "assets/"):
		return base + "/" + candidate
	default:
		return base + "/" + strings.TrimLeft(candidate, "/")
	}
}

// Preview returns the first candidate that is a real image both before and
// after normalization, already normalized.
func (r *Resolver) Preview(candidates ...string) string {
	for _, c := range candidates {
		if strings.TrimSpace(c) == "" || IsPlaceholder(c) {
			continue
		}
		if n := r.Normalize(c); n != "" && !IsPlaceholder(n) {
			return n
		}
	}
	return ""
}

// NormalizeAll normalizes refs, dropping empties and placeholders.
func (r *Resolver) NormalizeAll(refs ...string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if n := r.Preview(ref); n != "" {
			out = append(out, n)
		}
	}
	return out
}
