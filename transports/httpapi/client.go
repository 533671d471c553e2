package httpapi

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/petal-labs/giga/core"
	"github.com/petal-labs/giga/transports/internal/normalize"
	"github.com/petal-labs/giga/transports/internal/wire"
)

// FetchToken performs the OAuth request. Every failure is an *core.AuthenticationError.
func (t *Transport) FetchToken(ctx context.Context, creds core.Credentials) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, t.config.AuthTimeout)
	defer cancel()

	headers := wire.TokenHeaders(creds)
	t.config.Logger.DebugContext(ctx, "requesting access token",
		"url", t.config.OAuthURL, "rq_uid", creds.ClientID, "scope", creds.Scope)

	status, body, _, err := t.post(ctx, t.config.OAuthURL, headers, strings.NewReader(wire.TokenForm(creds)))
	if err != nil {
		return nil, normalize.Network(normalize.StageAuth, ID, err)
	}
	if status != http.StatusOK {
		return nil, normalize.Status(normalize.StageAuth, ID, status, body, "")
	}

	tok, err := wire.DecodeToken(body)
	if errors.Is(err, core.ErrMissingToken) {
		return nil, normalize.Build(normalize.StageAuth, ID, status, string(body), "",
			"access_token not found in response", core.ErrMissingToken)
	}
	if err != nil {
		return nil, normalize.Decode(normalize.StageAuth, ID, err, body)
	}

	t.config.Logger.DebugContext(ctx, "access token obtained", "expiry", tok.Expiry)
	return tok, nil
}

// Complete performs the chat-completions request. Every failure is an *core.APIError.
func (t *Transport) Complete(ctx context.Context, tok *oauth2.Token, p core.PromptPair) (core.ChatResult, error) {
	if !wire.ValidToken(tok) {
		return nil, normalize.Build(normalize.StageAPI, ID, 0, "", "", "access token is empty", core.ErrMissingToken)
	}

	payload, err := wire.EncodeChatRequest(t.config.Model, p)
	if err != nil {
		return nil, normalize.Build(normalize.StageAPI, ID, 0, "", "", err.Error(), core.ErrDecode)
	}

	ctx, cancel := context.WithTimeout(ctx, t.config.ChatTimeout)
	defer cancel()

	headers := wire.ChatHeaders(tok)
	t.config.Logger.DebugContext(ctx, "sending chat completion",
		"url", t.config.CompletionsURL, "model", t.config.Model, "request_id", headers.Get(wire.HeaderRequestID))

	status, body, respHeader, err := t.post(ctx, t.config.CompletionsURL, headers, bytes.NewReader(payload))
	if err != nil {
		return nil, normalize.Network(normalize.StageAPI, ID, err)
	}

	requestID := respHeader.Get("x-request-id")
	if status != http.StatusOK {
		return nil, normalize.Status(normalize.StageAPI, ID, status, body, requestID)
	}

	result, err := wire.DecodeResult(body)
	if err != nil {
		return nil, normalize.Decode(normalize.StageAPI, ID, err, body)
	}
	return result, nil
}

// post sends one POST and reads the whole response body.
// The response body is always closed before post returns.
func (t *Transport) post(ctx context.Context, url string, headers http.Header, body io.Reader) (int, []byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return 0, nil, nil, err
	}
	req.Header = headers
	t.applyExtraHeaders(req.Header)

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, err
	}
	return resp.StatusCode, respBody, resp.Header, nil
}
