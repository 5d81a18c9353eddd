package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userInputSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"userId"},
	"properties": map[string]interface{}{
		"userId": map[string]interface{}{"type": "string", "minLength": 1},
		"results": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "object"},
		},
	},
}

func TestSchema_Validate(t *testing.T) {
	s := MustCompile(userInputSchema)

	ok, err := s.Validate(map[string]interface{}{"userId": "u1", "results": []interface{}{}})
	require.NoError(t, err)
	assert.True(t, ok.Valid)
	assert.Empty(t, ok.Errors)

	bad, err := s.Validate(map[string]interface{}{"results": []interface{}{"x"}})
	require.NoError(t, err)
	assert.False(t, bad.Valid)
	assert.True(t, bad.HasErrors("userId"))
	assert.NotEmpty(t, bad.GetErrorsForField("results.0"))
	assert.Len(t, bad.GetErrorMessages(), len(bad.Errors))
}

func TestValidateDocument(t *testing.T) {
	res, err := ValidateDocument(userInputSchema, map[string]interface{}{"userId": ""})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	if assert.Len(t, res.Errors, 1) {
		assert.Equal(t, "userId", res.Errors[0].Field)
		assert.Equal(t, "STRING_GTE", res.Errors[0].Code)
	}
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(map[string]interface{}{"type": 42})
	assert.Error(t, err)
}
