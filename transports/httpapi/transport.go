// Package httpapi implements the giga transport over net/http.
package httpapi

import (
	"crypto/tls"
	"net/http"

	"github.com/petal-labs/giga/core"
	"github.com/petal-labs/giga/transports"
)

// ID is the registry name of this transport.
const ID = "http"

// Transport performs the token and completion calls with net/http.
// Transport is safe for concurrent use.
type Transport struct {
	config transports.Config
	client *http.Client
}

// New creates a new http transport. Zero config fields take their defaults.
//
//	t := httpapi.New(transports.NewConfig(transports.WithInsecureSkipVerify(true)))
func New(cfg transports.Config) *Transport {
	cfg = cfg.WithDefaults()

	client := cfg.HTTPClient
	if client == nil {
		client = newHTTPClient(cfg.InsecureSkipVerify)
	}

	return &Transport{config: cfg, client: client}
}

func newHTTPClient(insecure bool) *http.Client {
	if !insecure {
		return http.DefaultClient
	}
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via config
	return &http.Client{Transport: base}
}

// ID returns the transport identifier.
func (t *Transport) ID() string {
	return ID
}

// Model returns the model sent with completion requests.
func (t *Transport) Model() core.ModelID {
	return t.config.Model
}

// Config returns a copy of the transport configuration.
func (t *Transport) Config() transports.Config {
	return t.config
}

// applyExtraHeaders copies configured extra headers onto h.
func (t *Transport) applyExtraHeaders(h http.Header) {
	for key, values := range t.config.Headers {
		for _, v := range values {
			h.Add(key, v)
		}
	}
}

var _ core.Transport = (*Transport)(nil)
