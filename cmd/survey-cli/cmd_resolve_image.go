package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"homesurvey/internal/imageref"
)

func newResolveImageCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve-image <ref>...",
		Short: "Print the displayable form of image references",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver := imageref.New(root.baseURL)
			out := cmd.OutOrStdout()
			for _, ref := range args {
				fmt.Fprintln(out, resolver.Normalize(ref))
			}
			return nil
		},
	}
}
