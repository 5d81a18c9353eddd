package survey

import (
	"regexp"
	"strings"

	"homesurvey/internal/models"
)

const (
	defaultTitle   = "Survey Analysis"
	maxTitleLength = 140
)

var (
	lineBreak       = regexp.MustCompile(`\r?\n`)
	bulletPrefix    = regexp.MustCompile(`^[-*•]\s*`)
	findingsPattern = regexp.MustCompile(`(?i)issue|defect|damp|crack|leak|concern`)
	actionsPattern  = regexp.MustCompile(`(?i)repair|recommend|advise|monitor|investigate|specialist`)
)

type section int

const (
	sectionNone section = iota
	sectionFindings
	sectionActions
)

// headerSection classifies a line that opens a findings or actions section.
func headerSection(lower string) section {
	switch {
	case strings.HasPrefix(lower, "finding"), strings.HasPrefix(lower, "observ"), strings.HasPrefix(lower, "issue"):
		return sectionFindings
	case strings.HasPrefix(lower, "recommend"), strings.HasPrefix(lower, "action"), strings.Contains(lower, "advise"):
		return sectionActions
	}
	return sectionNone
}

func splitLines(text string) []string {
	var lines []string
	for _, l := range lineBreak.Split(text, -1) {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// ConvertPlainTextToStructured derives a StructuredResult from prose. It
// returns nil when text has no non-blank line.
func ConvertPlainTextToStructured(text string) *models.StructuredResult {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil
	}

	title := NormalizeWhitespace(truncateRunes(sentenceFrom(lines[0]), maxTitleLength))
	if title == "" {
		title = defaultTitle
	}
	head := lines
	if len(head) > 3 {
		head = head[:3]
	}
	summary := NormalizeWhitespace(strings.Join(head, " "))
	if summary == "" {
		summary = title
	}

	var findings, actions []string
	current := sectionNone
	for _, line := range lines {
		if s := headerSection(strings.ToLower(line)); s != sectionNone {
			current = s
			continue
		}

		if loc := bulletPrefix.FindStringIndex(line); loc != nil {
			item := line[loc[1]:]
			if current == sectionActions {
				actions = append(actions, item)
			} else {
				findings = append(findings, item)
			}
			continue
		}

		switch current {
		case sectionActions:
			actions = append(actions, line)
		case sectionFindings:
			findings = append(findings, line)
		}
	}

	if len(findings) == 0 {
		findings = filterLines(lines, findingsPattern)
	}
	if len(findings) == 0 {
		findings = []string{summary}
	}
	if len(actions) == 0 {
		actions = filterLines(lines, actionsPattern)
	}

	risk := detectRiskLevel(lines)
	if risk == "" {
		risk = models.RiskModerate
	}

	return &models.StructuredResult{
		Title:              title,
		Summary:            summary,
		Findings:           DedupeList(findings),
		RecommendedActions: DedupeList(actions),
		RiskLevel:          risk,
		Keywords:           extractKeywords(summary, findings),
	}
}

func filterLines(lines []string, pattern *regexp.Regexp) []string {
	var out []string
	for _, l := range lines {
		if pattern.MatchString(l) {
			out = append(out, l)
		}
	}
	return out
}

// structuredFromObject maps a loose JSON object with title/summary/findings
// style keys onto a StructuredResult.
func structuredFromObject(obj map[string]interface{}) *models.StructuredResult {
	text := CollapsedText("")
	list := Strings(CollapsedText(""))

	title := firstNonEmpty(Field(obj, "title", text), Field(obj, "heading", text), defaultTitle)
	summary := firstNonEmpty(Field(obj, "summary", text), Field(obj, "overview", text))

	actions := Field(obj, "recommended_actions", list)
	if _, ok := obj["recommended_actions"].([]interface{}); !ok {
		actions = Field(obj, "actions", list)
	}

	risk := firstNonEmpty(Field(obj, "risk_level", Text("")), Field(obj, "risk", Text("")))

	imageURL := ""
	if s, ok := obj["imageUrl"].(string); ok {
		imageURL = strings.TrimSpace(s)
	}

	result := &models.StructuredResult{
		Title:              NormalizeWhitespace(truncateRunes(title, maxTitleLength)),
		Summary:            summary,
		Findings:           DedupeList(Field(obj, "findings", list)),
		RecommendedActions: DedupeList(actions),
		RiskLevel:          strings.ToLower(risk),
		Keywords:           DedupeList(Field(obj, "keywords", list)),
		ImageURL:           imageURL,
	}
	ensureFindings(result)
	return result
}

// ensureFindings keeps findings non-empty whenever there is a summary to
// fall back on.
func ensureFindings(r *models.StructuredResult) {
	if len(r.Findings) == 0 && r.Summary != "" {
		r.Findings = []string{r.Summary}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ToStructuredResult normalizes any model reply to a StructuredResult.
func ToStructuredResult(text string) *models.StructuredResult {
	return ExtractResultPayload(text).Structured
}
