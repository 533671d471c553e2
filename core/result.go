package core

import "encoding/json"

// ChatResult is the decoded chat-completions response body.
// It is returned exactly as the server sent it; no schema is enforced.
type ChatResult map[string]any

// TokenUsage is the token accounting reported by the server, when present.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Content returns the content of the first choice's message, or "" if the
// response does not have that shape.
func (r ChatResult) Content() string {
	choices, ok := r["choices"].([]any)
	if !ok || len(choices) == 0 {
		return ""
	}
	choice, ok := choices[0].(map[string]any)
	if !ok {
		return ""
	}
	msg, ok := choice["message"].(map[string]any)
	if !ok {
		return ""
	}
	content, _ := msg["content"].(string)
	return content
}

// Model returns the model reported by the server, or "".
func (r ChatResult) Model() ModelID {
	m, _ := r["model"].(string)
	return ModelID(m)
}

// Usage returns the token usage reported by the server.
// Missing fields are reported as zero.
func (r ChatResult) Usage() TokenUsage {
	u, ok := r["usage"].(map[string]any)
	if !ok {
		return TokenUsage{}
	}
	return TokenUsage{
		PromptTokens:     intField(u, "prompt_tokens"),
		CompletionTokens: intField(u, "completion_tokens"),
		TotalTokens:      intField(u, "total_tokens"),
	}
}

// HasErrorField reports whether the body carries a top-level "error" key.
func (r ChatResult) HasErrorField() bool {
	_, ok := r["error"]
	return ok
}

// Transports decode numbers as json.Number; float64 covers maps built by hand.
func intField(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
