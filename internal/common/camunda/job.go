package camunda

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "homesurvey/internal/common/errors"
	"homesurvey/internal/common/validation"
)

// ParseInput checks the job variables against schema and decodes them into
// into. Both failures are INVALID_INPUT.
func ParseInput(job entities.Job, schema *validation.Schema, into interface{}) error {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return apperrors.NewInvalidInputError(fmt.Sprintf("parse variables: %v", err))
	}

	if schema != nil {
		result, err := schema.Validate(variables)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		if !result.Valid {
			return apperrors.NewInvalidInputError(strings.Join(result.GetErrorMessages(), "; "))
		}
	}

	if err := json.Unmarshal([]byte(job.GetVariables()), into); err != nil {
		return apperrors.NewInvalidInputError(fmt.Sprintf("decode variables: %v", err))
	}
	return nil
}

// Complete sends output as the job's result variables.
func Complete(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.GetKey()).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("create complete job command: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("send complete job command: %w", err)
	}
	return nil
}
