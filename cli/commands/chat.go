package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/petal-labs/giga/core"
)

// Demonstration prompt pair sent when no flags are given.
const (
	DefaultSystemPrompt = "Ты мастер рассказывать анекдоты"
	DefaultUserPrompt   = "Придумай короткий анекдот про программиста"
)

// Failure policies for the chat command.
const (
	// OnErrorExit logs the failure and exits with ExitFailure.
	OnErrorExit = "exit"
	// OnErrorLog logs the failure and exits successfully without output.
	OnErrorLog = "log"
)

func (a *App) newChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Send one chat completion request",
		Long: `Obtain an access token, send one system/user prompt pair and print the
raw JSON response.

Examples:
  giga chat
  giga chat --system "You are terse" --prompt "Hello"
  giga chat --transport curl --json
  giga chat --on-error log`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChat(cmd)
		},
	}

	cmd.Flags().StringVar(&a.chatSystem, "system", DefaultSystemPrompt, "System message")
	cmd.Flags().StringVar(&a.chatPrompt, "prompt", DefaultUserPrompt, "User message")
	cmd.Flags().StringVar(&a.chatOnError, "on-error", OnErrorExit, "Failure policy: exit (exit code 1) or log (log and exit 0)")

	return cmd
}

func (a *App) runChat(cmd *cobra.Command) error {
	if a.chatOnError != OnErrorExit && a.chatOnError != OnErrorLog {
		return exitWithCode(ExitFailure, a.logError("invalid flag",
			fmt.Errorf("--on-error must be %q or %q, got %q", OnErrorExit, OnErrorLog, a.chatOnError)))
	}

	// Missing credentials stop the process regardless of the failure policy.
	client, err := a.newClient()
	if err != nil {
		return exitWithCode(ExitFailure, a.logError("cannot create client", err))
	}

	result, err := client.Chat().
		System(a.chatSystem).
		User(a.chatPrompt).
		GetResponse(cmd.Context())
	if err != nil {
		return a.handleChatError(err)
	}

	return writeJSON(a.stdout, result, !a.jsonOutput)
}

// handleChatError applies the failure policy to a flow error.
func (a *App) handleChatError(err error) error {
	msg := "chat request failed"
	switch {
	case core.IsAuthenticationError(err):
		msg = "authentication failed"
	case core.IsAPIError(err):
		msg = "GigaChat API request failed"
	}
	a.logError(msg, err)

	if a.chatOnError == OnErrorLog {
		return nil
	}
	return exitWithCode(ExitFailure, err)
}

// writeJSON encodes v to w, indented unless compact output is requested.
func writeJSON(w io.Writer, v any, indent bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
