package survey

import (
	"homesurvey/internal/common/validation"
)

type schemaObj = map[string]interface{}

// nonEmpty matches strings with at least one non-space character.
var nonEmpty = schemaObj{"type": "string", "pattern": `\S`}

func requiredObject(props schemaObj) schemaObj {
	required := make([]interface{}, 0, len(props))
	for k := range props {
		required = append(required, k)
	}
	return schemaObj{"type": "object", "required": required, "properties": props}
}

func arrayOf(items schemaObj) schemaObj {
	return schemaObj{"type": "array", "items": items}
}

var (
	costSchema = requiredObject(schemaObj{
		"item": nonEmpty,
		"min":  schemaObj{"type": "number", "minimum": 0},
		"max":  schemaObj{"type": "number", "minimum": 0},
	})

	ratingSchema = requiredObject(schemaObj{
		"element": nonEmpty,
		"rating":  schemaObj{"type": "number", "minimum": 1, "maximum": 3},
		"note":    nonEmpty,
	})

	caseSchema = requiredObject(schemaObj{
		"id":       nonEmpty,
		"title":    nonEmpty,
		"address":  nonEmpty,
		"imageUrl": nonEmpty,
		"verdict": requiredObject(schemaObj{
			"condition": nonEmpty,
			"risk":      nonEmpty,
			"stance":    nonEmpty,
		}),
		"highlights":   arrayOf(nonEmpty),
		"likelyCauses": arrayOf(nonEmpty),
		"level1": requiredObject(schemaObj{
			"ratings": arrayOf(ratingSchema),
			"advice":  nonEmpty,
		}),
		"level2": requiredObject(schemaObj{
			"investigations": arrayOf(nonEmpty),
			"remediation":    arrayOf(nonEmpty),
		}),
		"level3": requiredObject(schemaObj{
			"intrusive":  arrayOf(nonEmpty),
			"risks":      arrayOf(nonEmpty),
			"heavyCosts": arrayOf(costSchema),
		}),
		"costs":     arrayOf(costSchema),
		"checklist": arrayOf(nonEmpty),
		"allowance": nonEmpty,
	})

	dashboardSchema = validation.MustCompile(requiredObject(schemaObj{
		"cases": arrayOf(caseSchema),
	}))

	singleCaseSchema = validation.MustCompile(caseSchema)
)

// ValidateDashboard checks a {"cases": [...]} document against the strict
// dashboard contract: every text field non-blank, ratings within 1-3 and
// non-negative costs. It is stricter than SanitizeReportData, which repairs
// rather than rejects.
func ValidateDashboard(doc interface{}) (*validation.ValidationResult, error) {
	return dashboardSchema.Validate(toGeneric(doc))
}

// ValidateCase applies the dashboard contract to a single case.
func ValidateCase(c interface{}) (*validation.ValidationResult, error) {
	return singleCaseSchema.Validate(toGeneric(c))
}
