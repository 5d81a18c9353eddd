package main

import (
	"github.com/spf13/cobra"

	"homesurvey/internal/imageref"
	"homesurvey/internal/models"
	"homesurvey/internal/survey"
)

type normalizeOutput struct {
	Structured *models.StructuredResult `json:"structured"`
	Classic    *models.ClassicCase      `json:"classic"`
	Report     *models.ReportData       `json:"report"`
}

func newNormalizeCmd(root *rootFlags) *cobra.Command {
	var (
		preview  string
		images   []string
		postcode string
	)

	cmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "Convert a raw model reply into structured, classic and report views",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			p := survey.ExtractResultPayload(string(raw))
			out := normalizeOutput{Structured: p.Structured, Classic: p.Classic}

			resolver := imageref.New(root.baseURL)
			rc := survey.ReportContext{
				Resolver: resolver,
				Images:   resolver.NormalizeAll(images...),
				Preview:  preview,
			}
			if postcode != "" {
				rc.Property = &models.Property{Postcode: postcode}
			}
			if report, ok := survey.BuildReport(p, rc); ok {
				out.Report = &report
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	f := cmd.Flags()
	f.StringVar(&preview, "preview", "", "Local preview image used when the reply has none")
	f.StringSliceVar(&images, "image", nil, "Scan image reference (repeatable)")
	f.StringVar(&postcode, "postcode", "", "Property postcode for the address line")
	return cmd
}
