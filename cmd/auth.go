package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize send-gmail and store the OAuth token",
		Long: `Obtain a valid OAuth token without sending anything.

A stored token that is still valid is left alone, an expired one is
refreshed, and otherwise the consent flow runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.close(context.WithoutCancel(ctx))

			auth, where, err := a.authorizer(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			cred, err := auth.Credential(ctx)
			if err != nil {
				return err
			}

			successColor.Fprintf(cmd.OutOrStdout(), "Authorized; token stored in %s (%s)\n", where, expiryText(cred))
			return nil
		},
	}
}
