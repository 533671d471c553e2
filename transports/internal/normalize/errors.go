// Package normalize builds the shared error values returned by transports.
package normalize

import (
	"encoding/json"
	"net/http"

	"github.com/petal-labs/giga/core"
)

// Stage identifies which exchange failed.
type Stage int

const (
	// StageAuth is the OAuth token request; failures become *core.AuthenticationError.
	StageAuth Stage = iota
	// StageAPI is the chat-completions request; failures become *core.APIError.
	StageAPI
)

// errorEnvelope covers the error bodies seen from the OAuth and API gateways:
//
//	{"status":401,"message":"Authorization error: header is incorrect"}
//	{"error":"invalid_client","error_description":"..."}
//	{"error":{"message":"...","type":"...","code":"..."}}
type errorEnvelope struct {
	Message          string          `json:"message"`
	Error            json.RawMessage `json:"error"`
	ErrorDescription string          `json:"error_description"`
}

// Message extracts a human-readable message from an error body.
// It returns "" when the body has none of the known shapes.
func Message(body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	if env.ErrorDescription != "" {
		return env.ErrorDescription
	}
	if env.Message != "" {
		return env.Message
	}
	if len(env.Error) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(env.Error, &s); err == nil {
		return s
	}
	var nested struct {
		Message string `json:"message"`
		Code    string `json:"code"`
		Type    string `json:"type"`
	}
	if err := json.Unmarshal(env.Error, &nested); err == nil {
		switch {
		case nested.Message != "":
			return nested.Message
		case nested.Code != "":
			return nested.Code
		default:
			return nested.Type
		}
	}
	return ""
}

// Status converts a non-200 response into the stage's error type.
// The raw body is always kept so the message shows exactly what the server said.
func Status(stage Stage, transport string, status int, body []byte, requestID string) error {
	message := Message(body)
	if message == "" {
		message = http.StatusText(status)
	}
	return Build(stage, transport, status, string(body), requestID, message, SentinelForStatus(status))
}

// Network wraps transport failures (connection refused, timeouts, process errors).
func Network(stage Stage, transport string, err error) error {
	return Build(stage, transport, 0, "", "", err.Error(), core.ErrNetwork)
}

// Decode wraps JSON parsing failures of an otherwise successful response.
func Decode(stage Stage, transport string, err error, body []byte) error {
	return Build(stage, transport, http.StatusOK, string(body), "", "invalid JSON response: "+err.Error(), core.ErrDecode)
}

// Build constructs the stage's error value.
// If sentinel is nil, the status-based mapping is applied.
func Build(stage Stage, transport string, status int, body, requestID, message string, sentinel error) error {
	if sentinel == nil {
		sentinel = SentinelForStatus(status)
	}
	if stage == StageAuth {
		return &core.AuthenticationError{
			Transport: transport,
			Status:    status,
			RequestID: requestID,
			Body:      body,
			Message:   message,
			Err:       sentinel,
		}
	}
	return &core.APIError{
		Transport: transport,
		Status:    status,
		RequestID: requestID,
		Body:      body,
		Message:   message,
		Err:       sentinel,
	}
}

// SentinelForStatus maps an HTTP status code to a core sentinel error.
func SentinelForStatus(status int) error {
	switch {
	case status == http.StatusBadRequest:
		return core.ErrBadRequest
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return core.ErrUnauthorized
	case status == http.StatusNotFound:
		return core.ErrNotFound
	case status == http.StatusTooManyRequests:
		return core.ErrRateLimited
	default:
		return core.ErrServer
	}
}
