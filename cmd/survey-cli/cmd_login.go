package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"homesurvey/internal/storage"
)

func newLoginCmd(root *rootFlags) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a bearer token and the account it belongs to",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			b, err := root.connect(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			token = strings.TrimSpace(token)
			if token == "" {
				token = b.cfg.API.Token
			}
			if token == "" {
				return fmt.Errorf("a token is required (--token or api.token)")
			}
			b.api.SetToken(token)

			user, err := b.api.Me(ctx)
			if err != nil {
				return err
			}
			b.store.SaveLogin(ctx, token, user)
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (scope %q)\n", user.Email, storage.DeriveUserID(user))
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Bearer token issued by the backend")
	return cmd
}
