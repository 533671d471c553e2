package core

import (
	"context"
	"time"

	"golang.org/x/oauth2"
)

// TokenProvider exchanges client credentials for a short-lived bearer token.
// Each call performs exactly one round trip; tokens are never cached.
type TokenProvider interface {
	// FetchToken returns the token or an *AuthenticationError.
	FetchToken(ctx context.Context, creds Credentials) (*oauth2.Token, error)
}

// ChatClient sends one system/user prompt pair to the chat-completions endpoint.
type ChatClient interface {
	// Complete returns the decoded response body or an *APIError.
	Complete(ctx context.Context, token *oauth2.Token, prompt PromptPair) (ChatResult, error)
}

// Transport is one way of performing the token and completion exchanges
// (direct HTTP, external curl process).
type Transport interface {
	TokenProvider
	ChatClient

	// ID returns the transport identifier (e.g., "http", "curl").
	ID() string

	// Model returns the model identifier sent with completion requests.
	Model() ModelID
}

// Client runs the token-then-completion flow over a Transport.
// Client holds no mutable state after construction.
type Client struct {
	transport Transport
	creds     Credentials
	telemetry TelemetryHook
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new Client for the given transport and credentials.
func NewClient(t Transport, creds Credentials, opts ...ClientOption) *Client {
	c := &Client{
		transport: t,
		creds:     creds,
		telemetry: NoopTelemetryHook{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTelemetry sets the telemetry hook for the client.
func WithTelemetry(h TelemetryHook) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.telemetry = h
		}
	}
}

// Transport returns the underlying transport.
func (c *Client) Transport() Transport {
	return c.transport
}

// Token validates the credentials and fetches a fresh access token.
func (c *Client) Token(ctx context.Context) (*oauth2.Token, error) {
	if err := c.creds.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	c.telemetry.OnRequestStart(RequestStartEvent{
		Operation: OperationToken,
		Transport: c.transport.ID(),
		Start:     start,
	})

	tok, err := c.transport.FetchToken(ctx, c.creds)

	c.telemetry.OnRequestEnd(RequestEndEvent{
		Operation: OperationToken,
		Transport: c.transport.ID(),
		Start:     start,
		End:       time.Now(),
		Err:       err,
	})
	return tok, err
}

// CompleteWithToken sends the prompt pair using an already acquired token.
func (c *Client) CompleteWithToken(ctx context.Context, tok *oauth2.Token, p PromptPair) (ChatResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	model := c.transport.Model()
	c.telemetry.OnRequestStart(RequestStartEvent{
		Operation: OperationComplete,
		Transport: c.transport.ID(),
		Model:     model,
		Start:     start,
	})

	result, err := c.transport.Complete(ctx, tok, p)

	var usage TokenUsage
	if result != nil {
		usage = result.Usage()
	}
	c.telemetry.OnRequestEnd(RequestEndEvent{
		Operation: OperationComplete,
		Transport: c.transport.ID(),
		Model:     model,
		Start:     start,
		End:       time.Now(),
		Usage:     usage,
		Err:       err,
	})
	return result, err
}

// Complete fetches a token and then sends the prompt pair: at most two
// sequential round trips. The first failure aborts the flow.
func (c *Client) Complete(ctx context.Context, p PromptPair) (ChatResult, error) {
	if err := c.creds.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	tok, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}
	return c.CompleteWithToken(ctx, tok, p)
}

// Chat returns a ChatBuilder for assembling a prompt pair.
func (c *Client) Chat() *ChatBuilder {
	return &ChatBuilder{client: c}
}

// ChatBuilder provides a fluent API for building a single completion request.
// ChatBuilder is NOT thread-safe.
type ChatBuilder struct {
	client *Client
	prompt PromptPair
}

// System sets the system prompt.
func (b *ChatBuilder) System(s string) *ChatBuilder {
	b.prompt.System = s
	return b
}

// User sets the user prompt.
func (b *ChatBuilder) User(s string) *ChatBuilder {
	b.prompt.User = s
	return b
}

// Prompt returns the assembled prompt pair.
func (b *ChatBuilder) Prompt() PromptPair {
	return b.prompt
}

// GetResponse runs the full token-then-completion flow.
func (b *ChatBuilder) GetResponse(ctx context.Context) (ChatResult, error) {
	return b.client.Complete(ctx, b.prompt)
}
