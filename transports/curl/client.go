package curl

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/petal-labs/giga/core"
	"github.com/petal-labs/giga/transports/internal/normalize"
	"github.com/petal-labs/giga/transports/internal/wire"
)

// FetchToken performs the OAuth request through curl.
// Every failure is an *core.AuthenticationError.
func (t *Transport) FetchToken(ctx context.Context, creds core.Credentials) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, t.config.AuthTimeout)
	defer cancel()

	req := request{
		url:      t.config.OAuthURL,
		headers:  t.withExtraHeaders(wire.TokenHeaders(creds)),
		timeout:  t.config.AuthTimeout,
		insecure: t.config.InsecureSkipVerify,
		follow:   true,
		dataArgs: []string{"--data-urlencode", "scope=" + creds.Scope},
	}
	t.config.Logger.DebugContext(ctx, "requesting access token",
		"binary", t.binary, "url", req.url, "rq_uid", creds.ClientID, "scope", creds.Scope)

	status, body, err := t.do(ctx, req)
	if err != nil {
		return nil, t.failure(normalize.StageAuth, err, "")
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
	return tok, nil
}

// Complete performs the chat-completions request through curl.
// A 200 body with a top-level "error" key is also a failure.
// Every failure is an *core.APIError.
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

	headers := t.withExtraHeaders(wire.ChatHeaders(tok))
	requestID := headers.Get(wire.HeaderRequestID)
	req := request{
		url:      t.config.CompletionsURL,
		headers:  headers,
		timeout:  t.config.ChatTimeout,
		insecure: t.config.InsecureSkipVerify,
		dataArgs: []string{"--data-raw", string(payload)},
	}
	t.config.Logger.DebugContext(ctx, "sending chat completion",
		"binary", t.binary, "url", req.url, "model", t.config.Model, "request_id", requestID)

	status, body, err := t.do(ctx, req)
	if err != nil {
		return nil, t.failure(normalize.StageAPI, err, requestID)
	}
	if status != http.StatusOK {
		return nil, normalize.Status(normalize.StageAPI, ID, status, body, requestID)
	}

	result, err := wire.DecodeResult(body)
	if err != nil {
		return nil, normalize.Decode(normalize.StageAPI, ID, err, body)
	}
	if result.HasErrorField() {
		message := normalize.Message(body)
		if message == "" {
			message = "response contains an error field"
		}
		return nil, normalize.Build(normalize.StageAPI, ID, status, string(body), requestID, message, core.ErrErrorField)
	}
	return result, nil
}

// processError is a failed curl run.
type processError struct {
	err    error
	stderr string
}

func (e *processError) Error() string {
	if e.stderr == "" {
		return fmt.Sprintf("curl: %v", e.err)
	}
	return fmt.Sprintf("curl: %v: %s", e.err, e.stderr)
}

func (e *processError) Unwrap() error { return e.err }

// do runs curl and splits its output into status and body.
func (t *Transport) do(ctx context.Context, req request) (int, []byte, error) {
	stdout, stderr, err := t.run(ctx, t.binary, req.args()...)
	if err != nil {
		return 0, nil, &processError{err: err, stderr: strings.TrimSpace(string(stderr))}
	}
	return splitStatus(stdout)
}

// failure maps a do error onto the stage's error type.
func (t *Transport) failure(stage normalize.Stage, err error, requestID string) error {
	var procErr *processError
	if errors.As(err, &procErr) {
		return normalize.Network(stage, ID, err)
	}
	return normalize.Build(stage, ID, 0, "", requestID, err.Error(), core.ErrDecode)
}

// withExtraHeaders adds configured extra headers onto h.
func (t *Transport) withExtraHeaders(h http.Header) http.Header {
	for key, values := range t.config.Headers {
		for _, v := range values {
			h.Add(key, v)
		}
	}
	return h
}
