// Package core provides the giga client, transport contracts and types.
package core

import "time"

// Default endpoint configuration for the GigaChat API.
const (
	DefaultScope          = "GIGACHAT_API_PERS"
	DefaultOAuthURL       = "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"
	DefaultCompletionsURL = "https://gigachat.devices.sberbank.ru/api/v1/chat/completions"

	// DefaultModel is the model identifier sent with every completion request
	// unless overridden by configuration.
	DefaultModel ModelID = "GigaChat"

	DefaultAuthTimeout = 30 * time.Second
	DefaultChatTimeout = 60 * time.Second
)

// ModelID is a string identifier for a model.
type ModelID string

// Role represents a message participant role.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Credentials are the long-lived client credentials exchanged for a bearer token.
// Credentials are immutable once built and are never persisted by the client.
type Credentials struct {
	ClientID     string
	ClientSecret Secret
	Scope        string
}

// NewCredentials builds Credentials, falling back to DefaultScope when scope is empty.
func NewCredentials(clientID, clientSecret, scope string) Credentials {
	if scope == "" {
		scope = DefaultScope
	}
	return Credentials{
		ClientID:     clientID,
		ClientSecret: NewSecret(clientSecret),
		Scope:        scope,
	}
}

// Validate reports ErrCredentialsRequired when either the client id or the
// client secret is empty.
func (c Credentials) Validate() error {
	if c.ClientID == "" || c.ClientSecret.IsEmpty() {
		return ErrCredentialsRequired
	}
	return nil
}

// PromptPair is the system and user text that frame a single completion request.
type PromptPair struct {
	System string
	User   string
}

// Validate reports ErrPromptRequired when the user prompt is empty.
// An empty system prompt is allowed and is still sent as a system message.
func (p PromptPair) Validate() error {
	if p.User == "" {
		return ErrPromptRequired
	}
	return nil
}

// Message represents a single message in a completion request.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the JSON body posted to the chat-completions endpoint.
type ChatRequest struct {
	Model    ModelID   `json:"model"`
	Messages []Message `json:"messages"`
}

// NewChatRequest builds the request body for a prompt pair. The messages are
// always the system message followed by the user message.
func NewChatRequest(model ModelID, p PromptPair) *ChatRequest {
	if model == "" {
		model = DefaultModel
	}
	return &ChatRequest{
		Model: model,
		Messages: []Message{
			{Role: RoleSystem, Content: p.System},
			{Role: RoleUser, Content: p.User},
		},
	}
}
