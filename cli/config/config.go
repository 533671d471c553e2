// Package config handles CLI configuration loading and management.
//
// Settings are layered, later sources winning: built-in defaults, the yaml
// config file, the .env file, then the process environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/petal-labs/giga/core"
	"github.com/petal-labs/giga/transports"
)

// DefaultTransport is the transport used when none is configured.
const DefaultTransport = "http"

// DefaultEnvFile is the dotenv file read from the working directory.
const DefaultEnvFile = ".env"

// Config represents the CLI configuration.
type Config struct {
	ClientID           string        `yaml:"client_id" env:"GIGACHAT_CLIENT_ID"`
	ClientSecret       string        `yaml:"client_secret" env:"GIGACHAT_CLIENT_SECRET"`
	Scope              string        `yaml:"scope" env:"GIGACHAT_SCOPE"`
	OAuthURL           string        `yaml:"oauth_url" env:"GIGACHAT_OAUTH_URL"`
	CompletionsURL     string        `yaml:"chat_completions_url" env:"GIGACHAT_CHAT_COMPLETIONS_URL"`
	Model              string        `yaml:"model" env:"GIGACHAT_MODEL"`
	Transport          string        `yaml:"transport" env:"GIGACHAT_TRANSPORT"`
	AuthTimeout        time.Duration `yaml:"auth_timeout" env:"GIGACHAT_AUTH_TIMEOUT"`
	ChatTimeout        time.Duration `yaml:"chat_timeout" env:"GIGACHAT_CHAT_TIMEOUT"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify" env:"GIGACHAT_INSECURE_SKIP_VERIFY"`
	LogLevel           string        `yaml:"log_level" env:"LOG_LEVEL"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Scope:          core.DefaultScope,
		OAuthURL:       core.DefaultOAuthURL,
		CompletionsURL: core.DefaultCompletionsURL,
		Model:          string(core.DefaultModel),
		Transport:      DefaultTransport,
		AuthTimeout:    core.DefaultAuthTimeout,
		ChatTimeout:    core.DefaultChatTimeout,
		LogLevel:       "INFO",
	}
}

// DefaultConfigPath returns the default configuration file path for the current platform.
// - macOS/Linux: ~/.giga/config.yaml
// - Windows: %USERPROFILE%\.giga\config.yaml
func DefaultConfigPath() string {
	var homeDir string

	if runtime.GOOS == "windows" {
		homeDir = os.Getenv("USERPROFILE")
	} else {
		homeDir = os.Getenv("HOME")
	}

	if homeDir == "" {
		// Fallback to current directory
		return "config.yaml"
	}

	return filepath.Join(homeDir, ".giga", "config.yaml")
}

// LoadConfig loads configuration from the yaml file at path, the dotenv file
// at envFile and the process environment. Missing files are not an error.
// The process environment is never modified.
func LoadConfig(path, envFile string) (Config, error) {
	return load(path, envFile, os.Environ())
}

func load(path, envFile string, environ []string) (Config, error) {
	cfg := Default()

	if err := readYAML(path, &cfg); err != nil {
		return Config{}, err
	}

	dotenv, err := readDotenv(envFile)
	if err != nil {
		return Config{}, err
	}

	if err := env.ParseWithOptions(&cfg, env.Options{
		Environment: mergeMaps(upperKeys(dotenv), upperKeys(toMap(environ))),
	}); err != nil {
		return Config{}, errors.WithStack(err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readYAML(path string, cfg *Config) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Missing config file is not an error
			return nil
		}
		return errors.WithStack(err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(err, "parse %s", path)
	}
	return nil
}

func readDotenv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	m, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return m, nil
}

// Validate reports settings that cannot produce a working client.
// Empty credentials are not checked here; the vault may still supply them.
func (c Config) Validate() error {
	if c.Transport == "" {
		return errors.New("transport must not be empty")
	}
	if c.AuthTimeout <= 0 || c.ChatTimeout <= 0 {
		return errors.Errorf("timeouts must be positive (auth=%s, chat=%s)", c.AuthTimeout, c.ChatTimeout)
	}
	return nil
}

// HasCredentials reports whether both client id and secret are set.
func (c Config) HasCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Credentials returns the configured credentials.
func (c Config) Credentials() core.Credentials {
	return core.NewCredentials(c.ClientID, c.ClientSecret, c.Scope)
}

// TransportConfig returns the transport settings with l as the debug logger.
func (c Config) TransportConfig(l *slog.Logger) transports.Config {
	return transports.NewConfig(
		transports.WithOAuthURL(c.OAuthURL),
		transports.WithCompletionsURL(c.CompletionsURL),
		transports.WithModel(core.ModelID(c.Model)),
		transports.WithTimeouts(c.AuthTimeout, c.ChatTimeout),
		transports.WithInsecureSkipVerify(c.InsecureSkipVerify),
		transports.WithLogger(l),
	)
}

// String renders the configuration with the client secret masked.
func (c Config) String() string {
	secret := ""
	if c.ClientSecret != "" {
		secret = core.NewSecret(c.ClientSecret).String()
	}
	return fmt.Sprintf("client_id=%q client_secret=%s scope=%s oauth_url=%s chat_completions_url=%s model=%s transport=%s auth_timeout=%s chat_timeout=%s insecure_skip_verify=%t log_level=%s",
		c.ClientID, secret, c.Scope, c.OAuthURL, c.CompletionsURL, c.Model, c.Transport,
		c.AuthTimeout, c.ChatTimeout, c.InsecureSkipVerify, c.LogLevel)
}

// toMap converts environment entries such as "KEY=VALUE" to a map.
func toMap(environ []string) map[string]string {
	r := map[string]string{}
	for _, e := range environ {
		p := strings.SplitN(e, "=", 2)
		if len(p) == 2 {
			r[p[0]] = p[1]
		}
	}
	return r
}

// mergeMaps merges multiple maps into one.
// If there are duplicate keys, the value from the last map will be used.
func mergeMaps(maps ...map[string]string) map[string]string {
	r := map[string]string{}
	for _, m := range maps {
		for k, v := range m {
			r[k] = v
		}
	}
	return r
}

// upperKeys upper-cases every key so lookups are case-insensitive.
// For keys differing only in case, an exact upper-case key wins.
func upperKeys(m map[string]string) map[string]string {
	r := make(map[string]string, len(m))
	for k, v := range m {
		up := strings.ToUpper(k)
		if _, exact := m[up]; exact && up != k {
			continue
		}
		r[up] = v
	}
	return r
}
