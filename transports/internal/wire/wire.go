// Package wire holds the request and response shapes shared by all transports,
// so the two exchanges are constructed in exactly one place.
package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/petal-labs/giga/core"
)

// Header names used by the GigaChat API.
const (
	HeaderRqUID     = "RqUID"
	HeaderRequestID = "X-Request-ID"
)

// errEmptyResult is returned when a 200 body decodes to JSON null.
var errEmptyResult = errors.New("empty response body")

// errTrailingData is returned when a body holds more than one JSON value.
var errTrailingData = errors.New("unexpected data after JSON value")

// tokenResponse is the OAuth endpoint's success body. GigaChat reports
// expires_at in unix milliseconds; standard servers send expires_in seconds.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// TokenHeaders returns the headers of the OAuth request. The client secret is
// placed after "Basic " verbatim; the target server expects the pre-encoded
// authorization key, not a base64 of id:secret.
func TokenHeaders(creds core.Credentials) http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/x-www-form-urlencoded")
	h.Set("Accept", "application/json")
	h.Set(HeaderRqUID, creds.ClientID)
	h.Set("Authorization", "Basic "+creds.ClientSecret.Expose())
	return h
}

// TokenForm returns the url-encoded OAuth request body.
func TokenForm(creds core.Credentials) string {
	return url.Values{"scope": {creds.Scope}}.Encode()
}

// DecodeToken parses a 200 OAuth body. It returns core.ErrMissingToken when
// the body is valid JSON without a non-empty access_token.
func DecodeToken(body []byte) (*oauth2.Token, error) {
	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, core.ErrMissingToken
	}

	tok := &oauth2.Token{
		AccessToken: resp.AccessToken,
		TokenType:   "Bearer",
	}
	switch {
	case resp.ExpiresAt > 0:
		tok.Expiry = time.UnixMilli(resp.ExpiresAt)
	case resp.ExpiresIn > 0:
		tok.ExpiresIn = resp.ExpiresIn
		tok.Expiry = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return tok, nil
}

// ChatHeaders returns the headers of the completion request, including a
// fresh X-Request-ID and the bearer Authorization header.
func ChatHeaders(tok *oauth2.Token) http.Header {
	// SetAuthHeader only needs a request to write into.
	req := &http.Request{Header: make(http.Header)}
	tok.SetAuthHeader(req)

	h := req.Header
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	h.Set(HeaderRequestID, uuid.NewString())
	return h
}

// EncodeChatRequest returns the JSON completion body for a prompt pair.
func EncodeChatRequest(model core.ModelID, p core.PromptPair) ([]byte, error) {
	return json.Marshal(core.NewChatRequest(model, p))
}

// DecodeResult parses a completion body verbatim into a ChatResult.
// Numbers are kept as json.Number so integers beyond float64 precision
// survive re-encoding.
func DecodeResult(body []byte) (core.ChatResult, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var result core.ChatResult
	if err := dec.Decode(&result); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	if result == nil {
		return nil, errEmptyResult
	}
	return result, nil
}

// ValidToken reports whether tok carries a usable access token value.
// Expiry is intentionally not consulted.
func ValidToken(tok *oauth2.Token) bool {
	return tok != nil && tok.AccessToken != ""
}
