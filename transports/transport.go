// Package transports contains the ways giga talks to the GigaChat API.
//
// Each transport lives in its own subpackage and implements core.Transport:
//
//	type Transport interface {
//	    ID() string
//	    Model() ModelID
//	    FetchToken(ctx context.Context, creds Credentials) (*oauth2.Token, error)
//	    Complete(ctx context.Context, token *oauth2.Token, prompt PromptPair) (ChatResult, error)
//	}
//
// Available transports:
//   - httpapi ("http"): direct calls with net/http
//   - curl ("curl"): shells out to the curl binary with the same headers and body
//
// Both share one request-construction contract: the token call is a form POST
// carrying the scope, with RqUID set to the client id and the Authorization
// header set to "Basic <secret>" verbatim; the completion call is a JSON POST
// with a bearer token. Neither transport retries or caches tokens.
//
// # Selection
//
// Transports register themselves by name in init(), so importing a transport
// package for side effects makes it available through Create:
//
//	import _ "github.com/petal-labs/giga/transports/httpapi"
//
//	t, err := transports.Create("http", transports.NewConfig(
//	    transports.WithModel("GigaChat-Pro"),
//	))
package transports

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/petal-labs/giga/core"
)

// Config holds the settings shared by every transport.
type Config struct {
	// OAuthURL is the token endpoint. Defaults to core.DefaultOAuthURL.
	OAuthURL string

	// CompletionsURL is the chat-completions endpoint. Defaults to core.DefaultCompletionsURL.
	CompletionsURL string

	// Model is sent with every completion request. Defaults to core.DefaultModel.
	Model core.ModelID

	// AuthTimeout bounds the token request. Defaults to core.DefaultAuthTimeout.
	AuthTimeout time.Duration

	// ChatTimeout bounds the completion request. Defaults to core.DefaultChatTimeout.
	ChatTimeout time.Duration

	// InsecureSkipVerify disables TLS certificate verification. The GigaChat
	// endpoints are signed by a national CA that is often missing from system
	// trust stores.
	InsecureSkipVerify bool

	// HTTPClient is used by the http transport. Defaults to a client built from
	// InsecureSkipVerify.
	HTTPClient *http.Client

	// Headers contains optional extra headers added to both requests.
	Headers http.Header

	// Logger receives debug output. Defaults to a discarding logger.
	Logger *slog.Logger
}

// Option configures a transport Config.
type Option func(*Config)

// NewConfig returns a Config with defaults applied and options run in order.
func NewConfig(opts ...Option) Config {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg.WithDefaults()
}

// WithDefaults returns a copy of c with every zero field set to its default.
func (c Config) WithDefaults() Config {
	if c.OAuthURL == "" {
		c.OAuthURL = core.DefaultOAuthURL
	}
	if c.CompletionsURL == "" {
		c.CompletionsURL = core.DefaultCompletionsURL
	}
	if c.Model == "" {
		c.Model = core.DefaultModel
	}
	if c.AuthTimeout <= 0 {
		c.AuthTimeout = core.DefaultAuthTimeout
	}
	if c.ChatTimeout <= 0 {
		c.ChatTimeout = core.DefaultChatTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// WithOAuthURL sets the token endpoint.
func WithOAuthURL(url string) Option {
	return func(c *Config) {
		c.OAuthURL = url
	}
}

// WithCompletionsURL sets the chat-completions endpoint.
func WithCompletionsURL(url string) Option {
	return func(c *Config) {
		c.CompletionsURL = url
	}
}

// WithModel overrides the model identifier.
func WithModel(model core.ModelID) Option {
	return func(c *Config) {
		c.Model = model
	}
}

// WithTimeouts sets the token and completion request timeouts.
func WithTimeouts(auth, chat time.Duration) Option {
	return func(c *Config) {
		c.AuthTimeout = auth
		c.ChatTimeout = chat
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify(skip bool) Option {
	return func(c *Config) {
		c.InsecureSkipVerify = skip
	}
}

// WithHTTPClient sets a custom HTTP client for the http transport.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithHeader adds an extra header to both requests.
func WithHeader(key, value string) Option {
	return func(c *Config) {
		if c.Headers == nil {
			c.Headers = make(http.Header)
		}
		c.Headers.Add(key, value)
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}
