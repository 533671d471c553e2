package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petal-labs/giga/cli/config"
	"github.com/petal-labs/giga/cli/credstore"
	"github.com/petal-labs/giga/core"
	"github.com/petal-labs/giga/internal/logger"
	"github.com/petal-labs/giga/transports"
)

// ConfigLoader loads CLI config from a yaml path and a dotenv path.
type ConfigLoader func(path, envFile string) (config.Config, error)

// TransportFactory creates a transport by name.
type TransportFactory func(name string, cfg transports.Config) (core.Transport, error)

// StoreFactory opens the credential vault.
type StoreFactory func() (credstore.Store, error)

// AppOption customizes App dependencies.
type AppOption func(*App)

// App holds CLI state and runtime dependencies.
type App struct {
	root *cobra.Command

	loadConfig      ConfigLoader
	createTransport TransportFactory
	openStore       StoreFactory
	stdin           io.Reader
	stdout          io.Writer
	stderr          io.Writer
	cfgFile         string
	envFile         string
	transport       string
	model           string
	jsonOutput      bool
	verbose         bool
	cfg             config.Config
	logger          *slog.Logger
	chatPrompt      string
	chatSystem      string
	chatOnError     string
}

// WithConfigLoader injects a config loader dependency.
func WithConfigLoader(loader ConfigLoader) AppOption {
	return func(a *App) {
		if loader != nil {
			a.loadConfig = loader
		}
	}
}

// WithTransportFactory injects a transport factory dependency.
func WithTransportFactory(factory TransportFactory) AppOption {
	return func(a *App) {
		if factory != nil {
			a.createTransport = factory
		}
	}
}

// WithStoreFactory injects a credential vault factory dependency.
func WithStoreFactory(factory StoreFactory) AppOption {
	return func(a *App) {
		if factory != nil {
			a.openStore = factory
		}
	}
}

// WithIO injects process I/O streams.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) AppOption {
	return func(a *App) {
		if stdin != nil {
			a.stdin = stdin
		}
		if stdout != nil {
			a.stdout = stdout
		}
		if stderr != nil {
			a.stderr = stderr
		}
	}
}

// NewApp creates a new CLI app with default dependencies.
func NewApp(opts ...AppOption) *App {
	a := &App{
		loadConfig:      config.LoadConfig,
		createTransport: defaultTransportFactory(),
		openStore:       openDefaultStore,
		stdin:           os.Stdin,
		stdout:          os.Stdout,
		stderr:          os.Stderr,
	}

	for _, opt := range opts {
		opt(a)
	}

	a.logger = slog.New(slog.NewTextHandler(a.stderr, nil))
	a.root = a.newRootCommand()
	return a
}

func openDefaultStore() (credstore.Store, error) {
	return credstore.Open()
}

func (a *App) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "giga",
		Short: "giga - GigaChat API client",
		Long: `giga obtains an OAuth access token for the GigaChat API and sends a
single system/user prompt pair to the chat-completions endpoint.

Credentials are read from GIGACHAT_CLIENT_ID and GIGACHAT_CLIENT_SECRET
(process environment or .env), the config file, or the encrypted vault
managed with 'giga creds'.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags available to all commands.
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ~/.giga/config.yaml)")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", config.DefaultEnvFile, "dotenv file with GIGACHAT_* variables")
	root.PersistentFlags().StringVar(&a.transport, "transport", "", "transport ID (http, curl)")
	root.PersistentFlags().StringVar(&a.model, "model", "", "model ID (default GigaChat)")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "emit compact JSON output")
	root.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "enable debug logging")

	root.AddCommand(a.newChatCommand())
	root.AddCommand(a.newTokenCommand())
	root.AddCommand(a.newCredsCommand())
	root.AddCommand(a.newInitCommand())
	root.AddCommand(a.newVersionCommand())

	return root
}

// Execute runs the root command with os.Args.
func (a *App) Execute() error {
	return a.ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with os.Args and ctx.
func (a *App) ExecuteContext(ctx context.Context) error {
	return a.report(a.root.ExecuteContext(ctx))
}

// Run executes the root command with explicit arguments.
func (a *App) Run(ctx context.Context, args ...string) error {
	a.root.SetArgs(args)
	return a.report(a.root.ExecuteContext(ctx))
}

// report prints errors that were not already logged by a command.
func (a *App) report(err error) error {
	var ee *exitError
	if err != nil && !errors.As(err, &ee) {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
	}
	return err
}

func (a *App) initConfig() error {
	path := a.cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg, err := a.loadConfig(path, a.envFile)
	if err != nil {
		return exitWithCode(ExitFailure, a.logError("failed to load configuration", err))
	}

	// Flags override every other source.
	if a.transport != "" {
		cfg.Transport = a.transport
	}
	if a.model != "" {
		cfg.Model = a.model
	}
	a.cfg = cfg

	level := cfg.LogLevel
	if a.verbose {
		level = "DEBUG"
	}
	l, err := logger.NewLogger(strings.ToUpper(level), a.stderr)
	if err != nil {
		return exitWithCode(ExitFailure, a.logError("invalid LOG_LEVEL", err))
	}
	a.logger = l

	a.logger.Debug("configuration loaded", "config", cfg.String())
	return nil
}

// logError logs err and returns it unchanged.
func (a *App) logError(msg string, err error) error {
	a.logger.Error(msg, "error", err)
	return err
}

// credentials returns configured credentials, filling gaps from the vault.
func (a *App) credentials() core.Credentials {
	cfg := a.cfg
	if cfg.HasCredentials() {
		return cfg.Credentials()
	}

	store, err := a.openStore()
	if err != nil {
		a.logger.Debug("credential vault unavailable", "error", err)
		return cfg.Credentials()
	}

	fill := func(dst *string, name string) {
		if *dst != "" {
			return
		}
		v, err := store.Get(name)
		switch {
		case err == nil:
			*dst = v
		case !credstore.IsNotFound(err):
			a.logger.Debug("credential vault read failed", "name", name, "error", err)
		}
	}
	fill(&cfg.ClientID, credstore.KeyClientID)
	fill(&cfg.ClientSecret, credstore.KeyClientSecret)

	return cfg.Credentials()
}

// newClient builds the flow client for the configured transport.
func (a *App) newClient() (*core.Client, error) {
	creds := a.credentials()
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	t, err := a.createTransport(a.cfg.Transport, a.cfg.TransportConfig(a.logger))
	if err != nil {
		return nil, err
	}

	return core.NewClient(t, creds, core.WithTelemetry(logger.NewTelemetryHook(a.logger))), nil
}
