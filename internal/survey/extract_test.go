package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONBlock(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[string]interface{}
	}{
		{"fenced json", "```json\n{\"a\":1}\n```", map[string]interface{}{"a": float64(1)}},
		{"fenced untagged uppercase", "Here:\n```JSON\n{\"b\": \"x\"}```", map[string]interface{}{"b": "x"}},
		{"braces inside prose", "prefix {\"a\":1} suffix", map[string]interface{}{"a": float64(1)}},
		{"broken fence falls back to braces", "```json\n[oops\n``` then {\"c\": true}", map[string]interface{}{"c": true}},
		{"no json", "no json", nil},
		{"empty", "", nil},
		{"reversed braces", "} nothing {", nil},
		{"array is not an object", "```json\n[1,2]\n```", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSONBlock(tt.text))
		})
	}
}

func TestExtractJSONBlock_Strategy(t *testing.T) {
	_, strategy := extractJSONBlock("```{\"a\":1}```")
	assert.Equal(t, "fenced", strategy)
	_, strategy = extractJSONBlock("x {\"a\":1} y")
	assert.Equal(t, "braces", strategy)
	_, strategy = extractJSONBlock("plain words")
	assert.Equal(t, "none", strategy)
}

func TestDedupeList(t *testing.T) {
	assert.Equal(t, []string{"Damp"}, DedupeList([]string{"Damp", "damp ", " DAMP"}))
	assert.Equal(t, []string{"Leak"}, DedupeList([]string{"", "  ", "Leak", "leak"}))
	assert.Equal(t, []string{"crack in wall"}, DedupeList([]string{"crack \n in\twall"}))
	assert.NotNil(t, DedupeList(nil))
}

func TestExtractKeywords(t *testing.T) {
	got := extractKeywords("The 2024 roof has damp staining, damp near 1990 flashing", []string{"Roof Leak"})
	assert.Equal(t, []string{"roof", "damp", "staining", "near", "flashing", "roof leak"}, got)

	many := extractKeywords("alpha bravo charlie delta echoes foxtrot golfs hotel india juliet", nil)
	assert.Len(t, many, maxKeywords)
}

func TestSentenceFrom(t *testing.T) {
	assert.Equal(t, "Damp found.", sentenceFrom("Damp   found. Roof ok. "))
	assert.Equal(t, "No full stop here", sentenceFrom("No full stop here"))
}
