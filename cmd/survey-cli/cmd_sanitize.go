package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"homesurvey/internal/models"
	"homesurvey/internal/survey"
)

type sanitizeOutput struct {
	Report           models.ReportData `json:"report"`
	Valid            bool              `json:"valid"`
	ValidationErrors []string          `json:"validationErrors,omitempty"`
}

func newSanitizeCmd(_ *rootFlags) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "sanitize [file]",
		Short: "Coerce report JSON into a complete dashboard case",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			report, err := survey.ParseReportJSON(raw)
			if err != nil {
				return err
			}

			res, err := survey.ValidateCase(report)
			if err != nil {
				return fmt.Errorf("validate report: %w", err)
			}
			out := sanitizeOutput{Report: report, Valid: res.Valid}
			for _, e := range res.Errors {
				out.ValidationErrors = append(out.ValidationErrors, e.Field+": "+e.Message)
			}
			if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if strict && !res.Valid {
				return fmt.Errorf("report is not dashboard ready: %d validation errors", len(res.Errors))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when the sanitized case fails validation")
	return cmd
}
