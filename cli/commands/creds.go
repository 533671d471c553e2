package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/petal-labs/giga/cli/credstore"
)

func (a *App) newCredsCommand() *cobra.Command {
	credsCmd := &cobra.Command{
		Use:   "creds",
		Short: "Manage stored GigaChat credentials",
		Long: fmt.Sprintf(`Manage credentials in the encrypted vault (~/.giga/credentials.enc).

The vault is consulted when GIGACHAT_CLIENT_ID or GIGACHAT_CLIENT_SECRET are
not configured. Store them under the names %q and %q.
Set %s to choose the vault master key.`, credstore.KeyClientID, credstore.KeyClientSecret, credstore.MasterKeyEnv),
	}

	credsCmd.AddCommand(&cobra.Command{
		Use:   "set <name>",
		Short: "Store a credential value",
		Long:  `Store a credential value. The value is prompted without echo when reading from a terminal.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCredsSet(args[0])
		},
	})

	credsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored credential names",
		Long:  `List stored credential names. Values are never shown.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCredsList()
		},
	})

	credsCmd.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCredsDelete(args[0])
		},
	})

	return credsCmd
}

func (a *App) runCredsSet(name string) error {
	fmt.Fprintf(a.stdout, "Enter value for %s: ", name)

	value, err := a.readSecret()
	if err != nil {
		return fmt.Errorf("failed to read value: %w", err)
	}
	if value == "" {
		return fmt.Errorf("value cannot be empty")
	}

	store, err := a.openStore()
	if err != nil {
		return fmt.Errorf("failed to open credential vault: %w", err)
	}

	if err := store.Set(name, value); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}

	fmt.Fprintf(a.stdout, "Credential %s stored successfully.\n", name)
	return nil
}

// readSecret reads one value from stdin, without echo on a terminal.
func (a *App) readSecret() (string, error) {
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		fmt.Fprintln(a.stdout) // Newline after hidden input
		return strings.TrimSpace(string(b)), nil
	}

	// Fallback for non-terminal (e.g., piped input)
	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a *App) runCredsList() error {
	store, err := a.openStore()
	if err != nil {
		return fmt.Errorf("failed to open credential vault: %w", err)
	}

	names, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list credentials: %w", err)
	}

	if a.jsonOutput {
		return writeJSON(a.stdout, names, false)
	}

	if len(names) == 0 {
		fmt.Fprintln(a.stdout, "No credentials stored.")
		return nil
	}

	fmt.Fprintln(a.stdout, "Stored credentials:")
	for _, name := range names {
		fmt.Fprintf(a.stdout, "  - %s\n", name)
	}

	return nil
}

func (a *App) runCredsDelete(name string) error {
	store, err := a.openStore()
	if err != nil {
		return fmt.Errorf("failed to open credential vault: %w", err)
	}

	if err := store.Delete(name); err != nil {
		if credstore.IsNotFound(err) {
			return fmt.Errorf("no credential stored for %s", name)
		}
		return fmt.Errorf("failed to delete credential: %w", err)
	}

	fmt.Fprintf(a.stdout, "Credential %s deleted.\n", name)
	return nil
}
