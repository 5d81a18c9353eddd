package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"homesurvey/internal/envelope"
)

func newHistoryCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List the signed-in user's scans",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			b, err := root.connect(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			items, err := b.api.ListScans(ctx)
			if err != nil {
				return err
			}
			userID := b.store.CurrentUserID(ctx)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tMODEL\tPREVIEW")
			for _, it := range items {
				preview := "-"
				if it.PreviewImage != "" {
					preview = "remote"
				} else if _, ok := b.store.CachedPreview(ctx, it.ID, userID); ok {
					preview = "cached"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", it.ID, it.CreatedAt, it.Model, preview)
			}
			return w.Flush()
		},
	}
}

func newOpenCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "open <scan-id>",
		Short: "Make a scan from history the current one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := root.connect(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			detail, err := b.api.GetScan(ctx, args[0])
			if err != nil {
				return err
			}

			sess, userID := b.session(ctx)
			defer sess.Close()

			env := b.store.Hydrate(detail)
			if env != nil && env.PreviewImage == "" {
				if cached, ok := b.store.CachedPreview(ctx, env.ScanID, userID); ok {
					env.PreviewImage = cached
				}
			}
			opened, err := b.store.Open(ctx, env, userID)
			if err != nil {
				return err
			}
			analysis, ok := sess.ApplyEnvelope(ctx, opened)
			if !ok {
				return fmt.Errorf("scan %s belongs to another account", args[0])
			}
			return writeJSON(cmd.OutOrStdout(), analysis)
		},
	}
}

func newShowCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored analysis of the last scan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			b, err := root.connect(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			env, status := b.store.Lookup(ctx, b.store.CurrentUserID(ctx))
			if status != envelope.LoadFound {
				return fmt.Errorf("no stored scan (%s)", status)
			}
			return writeJSON(cmd.OutOrStdout(), envelope.Analyze(b.store.Resolver(), env, ""))
		},
	}
}
