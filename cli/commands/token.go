package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func (a *App) newTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Fetch and print an access token",
		Long: `Exchange the configured credentials for an access token and print it.
With --json the expiry time is included.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient()
			if err != nil {
				return exitWithCode(ExitFailure, a.logError("cannot create client", err))
			}

			tok, err := client.Token(cmd.Context())
			if err != nil {
				return exitWithCode(ExitFailure, a.logError("authentication failed", err))
			}

			if a.jsonOutput {
				out := map[string]any{"access_token": tok.AccessToken}
				if !tok.Expiry.IsZero() {
					out["expires_at"] = tok.Expiry.UTC().Format(time.RFC3339)
				}
				return writeJSON(a.stdout, out, false)
			}

			fmt.Fprintln(a.stdout, tok.AccessToken)
			return nil
		},
	}
}
