package wire

import (
	"encoding/json"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/petal-labs/giga/core"
)

func TestTokenHeaders(t *testing.T) {
	creds := core.NewCredentials("6f0b1291-c7f3-43c6-bb2e-9f3efb2dc98e", "MjU5NGE3ZGY=", "")

	h := TokenHeaders(creds)

	assert.Equal(t, "application/x-www-form-urlencoded", h.Get("Content-Type"))
	assert.Equal(t, "application/json", h.Get("Accept"))
	assert.Equal(t, "6f0b1291-c7f3-43c6-bb2e-9f3efb2dc98e", h.Get("RqUID"))
	assert.Equal(t, "Basic MjU5NGE3ZGY=", h.Get("Authorization"), "secret must be passed verbatim")
}

func TestTokenForm(t *testing.T) {
	form, err := url.ParseQuery(TokenForm(core.NewCredentials("id", "s", "GIGACHAT_API_CORP")))
	require.NoError(t, err)
	assert.Equal(t, "GIGACHAT_API_CORP", form.Get("scope"))
	assert.Len(t, form, 1)
}

func TestDecodeToken(t *testing.T) {
	t.Run("expires_at millis", func(t *testing.T) {
		tok, err := DecodeToken([]byte(`{"access_token":"tok123","expires_at":1706026848841}`))
		require.NoError(t, err)
		assert.Equal(t, "tok123", tok.AccessToken)
		assert.Equal(t, "Bearer", tok.TokenType)
		assert.Equal(t, time.UnixMilli(1706026848841), tok.Expiry)
	})

	t.Run("expires_in seconds", func(t *testing.T) {
		tok, err := DecodeToken([]byte(`{"access_token":"tok123","expires_in":1800}`))
		require.NoError(t, err)
		assert.EqualValues(t, 1800, tok.ExpiresIn)
		assert.WithinDuration(t, time.Now().Add(30*time.Minute), tok.Expiry, time.Minute)
	})

	t.Run("no expiry", func(t *testing.T) {
		tok, err := DecodeToken([]byte(`{"access_token":"tok123"}`))
		require.NoError(t, err)
		assert.True(t, tok.Expiry.IsZero())
	})

	t.Run("missing access_token", func(t *testing.T) {
		_, err := DecodeToken([]byte(`{"expires_at":1}`))
		assert.ErrorIs(t, err, core.ErrMissingToken)
	})

	t.Run("empty access_token", func(t *testing.T) {
		_, err := DecodeToken([]byte(`{"access_token":""}`))
		assert.ErrorIs(t, err, core.ErrMissingToken)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := DecodeToken([]byte(`not json`))
		require.Error(t, err)
		assert.False(t, errors.Is(err, core.ErrMissingToken))
	})
}

func TestChatHeaders(t *testing.T) {
	h := ChatHeaders(&oauth2.Token{AccessToken: "tok123", TokenType: "Bearer"})

	assert.Equal(t, "Bearer tok123", h.Get("Authorization"))
	assert.Equal(t, "application/json", h.Get("Content-Type"))
	_, err := uuid.Parse(h.Get("X-Request-ID"))
	assert.NoError(t, err)

	other := ChatHeaders(&oauth2.Token{AccessToken: "tok123"})
	assert.NotEqual(t, h.Get("X-Request-ID"), other.Get("X-Request-ID"))
	assert.Equal(t, "Bearer tok123", other.Get("Authorization"))
}

func TestEncodeChatRequest(t *testing.T) {
	body, err := EncodeChatRequest("", core.PromptPair{System: "sys", User: "usr"})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "GigaChat", got["model"])
	assert.Equal(t, []any{
		map[string]any{"role": "system", "content": "sys"},
		map[string]any{"role": "user", "content": "usr"},
	}, got["messages"])
}

func TestDecodeResult(t *testing.T) {
	body := []byte(`{"choices":[{"message":{"content":"joke"}}]}`)

	result, err := DecodeResult(body)
	require.NoError(t, err)
	assert.Equal(t, core.ChatResult{
		"choices": []any{map[string]any{"message": map[string]any{"content": "joke"}}},
	}, result)

	_, err = DecodeResult([]byte(`null`))
	assert.Error(t, err)

	_, err = DecodeResult([]byte(`[1,2]`))
	assert.Error(t, err)

	_, err = DecodeResult([]byte(`{"a":1} {"b":2}`))
	assert.Error(t, err)
}

func TestDecodeResultKeepsLargeIntegers(t *testing.T) {
	body := `{"created":1706026848,"id":12345678901234567891,"usage":{"total_tokens":50}}`

	result, err := DecodeResult([]byte(body))
	require.NoError(t, err)

	out, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Equal(t, body, string(out), "keys are already sorted, so the bytes must match")
	assert.Equal(t, json.Number("12345678901234567891"), result["id"])
	assert.Equal(t, 50, result.Usage().TotalTokens)
}

func TestValidToken(t *testing.T) {
	assert.False(t, ValidToken(nil))
	assert.False(t, ValidToken(&oauth2.Token{}))
	assert.True(t, ValidToken(&oauth2.Token{AccessToken: "x", Expiry: time.Unix(1, 0)}), "expiry is not checked")
}
