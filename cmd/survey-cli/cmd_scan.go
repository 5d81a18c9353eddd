package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"homesurvey/internal/envelope"
	"homesurvey/internal/models"
	"homesurvey/internal/scanapi"
)

type scanFlags struct {
	files       []string
	questionID  string
	provider    string
	model       string
	surveyLevel int
	address     string
	city        string
	postcode    string
}

func (f *scanFlags) property() *models.Property {
	p := &models.Property{Address: f.address, City: f.city, Postcode: f.postcode}
	if p.IsEmpty() {
		return nil
	}
	return p
}

func newScanCmd(root *rootFlags) *cobra.Command {
	flags := &scanFlags{}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Submit images for analysis and store the result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			uploads := make([]scanapi.Upload, 0, len(flags.files))
			for _, path := range flags.files {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				uploads = append(uploads, scanapi.Upload{Filename: filepath.Base(path), Data: data})
			}

			b, err := root.connect(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			sess, userID := b.session(ctx)
			defer sess.Close()

			preview := ""
			if len(uploads) > 0 {
				t := sess.BeginPreview()
				preview = dataURL(uploads[0].Data, "")
				sess.CompletePreview(t, preview)
			}

			ticket := sess.BeginScan()
			resp, err := b.api.Scan(ctx, scanapi.ScanRequest{
				Files:       uploads,
				QuestionID:  flags.questionID,
				Provider:    flags.provider,
				Model:       flags.model,
				Property:    flags.property(),
				SurveyLevel: flags.surveyLevel,
			})
			if err != nil {
				return err
			}

			env := b.store.FromScanResponse(resp, envelope.ScanContext{
				QuestionID:   flags.questionID,
				Property:     flags.property(),
				SurveyLevel:  flags.surveyLevel,
				PendingImage: preview,
			})
			analysis, ok := sess.CompleteScan(ctx, ticket, env)
			if !ok {
				return fmt.Errorf("scan result was superseded")
			}
			if env.PreviewImage != "" {
				b.store.CachePreview(ctx, env.ScanID, env.PreviewImage, userID)
			}
			return writeJSON(cmd.OutOrStdout(), analysis)
		},
	}

	f := cmd.Flags()
	f.StringSliceVarP(&flags.files, "file", "f", nil, "Image to upload (repeatable)")
	f.StringVar(&flags.questionID, "question", "", "Question id")
	f.StringVar(&flags.provider, "provider", "", "Model provider")
	f.StringVar(&flags.model, "model", "", "Model name")
	f.IntVar(&flags.surveyLevel, "level", 0, "Survey level (1-3)")
	f.StringVar(&flags.address, "address", "", "Property address")
	f.StringVar(&flags.city, "city", "", "Property city")
	f.StringVar(&flags.postcode, "postcode", "", "Property postcode")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
