package curl

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/petal-labs/giga/core"
	"github.com/petal-labs/giga/transports"
)

// chatBody is pretty-printed on purpose: newlines, digits and a status-like
// suffix inside the content must not confuse the status framing.
const chatBody = `{
  "choices": [
    {
      "message": {
        "role": "assistant",
        "content": "a\nb 200"
      }
    }
  ],
  "id": 12345678901234567891,
  "usage": {
    "total_tokens": 7
  }
}
`

type seenRequest struct {
	rqUID         string
	authorization string
	contentType   string
	scope         string
	body          []byte
}

// gigaServer fakes both endpoints and records what curl sent.
type gigaServer struct {
	*httptest.Server

	mu    sync.Mutex
	token seenRequest
	chat  seenRequest
}

func newGigaServer(t *testing.T, chatStatus int, chatReply string) *gigaServer {
	t.Helper()
	s := &gigaServer{}

	mux := http.NewServeMux()
	// The token call follows redirects.
	mux.HandleFunc("/api/v2/oauth", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/v2/oauth/final", http.StatusTemporaryRedirect)
	})
	mux.HandleFunc("/api/v2/oauth/final", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error = %v", err)
		}
		s.mu.Lock()
		s.token = seenRequest{
			rqUID:         r.Header.Get("RqUID"),
			authorization: r.Header.Get("Authorization"),
			contentType:   r.Header.Get("Content-Type"),
			scope:         r.PostForm.Get("scope"),
		}
		s.mu.Unlock()
		w.Write([]byte(`{"access_token":"tok123","expires_at":1706026848841}`))
	})
	mux.HandleFunc("/api/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		s.mu.Lock()
		s.chat = seenRequest{
			authorization: r.Header.Get("Authorization"),
			contentType:   r.Header.Get("Content-Type"),
			body:          body,
		}
		s.mu.Unlock()
		w.WriteHeader(chatStatus)
		w.Write([]byte(chatReply))
	})

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// seen returns copies of the recorded requests.
func (s *gigaServer) seen() (token, chat seenRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.chat
}

func newExecTransport(t *testing.T, s *gigaServer) *Transport {
	t.Helper()
	if _, err := exec.LookPath(DefaultBinary); err != nil {
		t.Skip("curl not available")
	}
	cfg := transports.NewConfig(
		transports.WithOAuthURL(s.URL+"/api/v2/oauth"),
		transports.WithCompletionsURL(s.URL+"/api/v1/chat/completions"),
	)
	return New(cfg, WithRunner(ExecRunner))
}

func TestExecFlow(t *testing.T) {
	s := newGigaServer(t, http.StatusOK, chatBody)
	tr := newExecTransport(t, s)

	creds := core.NewCredentials("6f0b1291-c7f3-43c6-bb2e-9f3efb2dc98e", "MjU5NGE3ZGY=", "")
	tok, err := tr.FetchToken(context.Background(), creds)
	require.NoError(t, err)
	assert.Equal(t, "tok123", tok.AccessToken)

	seenToken, _ := s.seen()
	assert.Equal(t, "6f0b1291-c7f3-43c6-bb2e-9f3efb2dc98e", seenToken.rqUID)
	assert.Equal(t, "Basic MjU5NGE3ZGY=", seenToken.authorization)
	assert.Equal(t, "application/x-www-form-urlencoded", seenToken.contentType)
	assert.Equal(t, core.DefaultScope, seenToken.scope)

	prompt := core.PromptPair{System: "Ты мастер рассказывать анекдоты", User: "строка 1\nстрока \"2\""}
	result, err := tr.Complete(context.Background(), tok, prompt)
	require.NoError(t, err)

	assert.Equal(t, "a\nb 200", result.Content())
	assert.Equal(t, 7, result.Usage().TotalTokens)
	assert.Equal(t, json.Number("12345678901234567891"), result["id"])

	_, seenChat := s.seen()
	assert.Equal(t, "Bearer tok123", seenChat.authorization)
	assert.Equal(t, "application/json", seenChat.contentType)

	var sent core.ChatRequest
	require.NoError(t, json.Unmarshal(seenChat.body, &sent))
	assert.Equal(t, core.DefaultModel, sent.Model)
	assert.Equal(t, []core.Message{
		{Role: core.RoleSystem, Content: prompt.System},
		{Role: core.RoleUser, Content: prompt.User},
	}, sent.Messages)
}

func TestExecCompleteFailures(t *testing.T) {
	tok := &oauth2.Token{AccessToken: "tok123"}
	prompt := core.PromptPair{User: "hi"}

	t.Run("non-200 status", func(t *testing.T) {
		s := newGigaServer(t, http.StatusServiceUnavailable, "upstream down")
		tr := newExecTransport(t, s)

		_, err := tr.Complete(context.Background(), tok, prompt)

		var apiErr *core.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
		assert.Contains(t, apiErr.Body, "upstream down")
	})

	t.Run("error field on 200", func(t *testing.T) {
		s := newGigaServer(t, http.StatusOK, `{"error":{"message":"quota exceeded"}}`)
		tr := newExecTransport(t, s)

		_, err := tr.Complete(context.Background(), tok, prompt)

		require.ErrorIs(t, err, core.ErrErrorField)
		assert.Contains(t, err.Error(), "quota exceeded")
	})

	t.Run("connection refused", func(t *testing.T) {
		s := newGigaServer(t, http.StatusOK, chatBody)
		tr := newExecTransport(t, s)
		s.Close()

		_, err := tr.Complete(context.Background(), tok, prompt)

		assert.True(t, core.IsAPIError(err))
		assert.ErrorIs(t, err, core.ErrNetwork)
	})
}
