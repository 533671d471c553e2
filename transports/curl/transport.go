// Package curl implements the giga transport by running the curl binary.
//
// Requests carry the same headers and bodies as the http transport. The HTTP
// status is appended to stdout by --write-out behind a fixed marker, and the
// response body is everything before the last marker occurrence.
package curl

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/petal-labs/giga/core"
	"github.com/petal-labs/giga/transports"
)

// ID is the registry name of this transport.
const ID = "curl"

// DefaultBinary is the executable looked up on PATH.
const DefaultBinary = "curl"

// Runner executes a command and returns its captured output.
type Runner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// ExecRunner runs the command with os/exec. The process is killed when ctx is done.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Transport performs the token and completion calls through curl.
type Transport struct {
	config transports.Config
	binary string
	run    Runner
}

// Option configures a curl Transport.
type Option func(*Transport)

// WithRunner replaces the command runner. Used by tests.
func WithRunner(r Runner) Option {
	return func(t *Transport) {
		if r != nil {
			t.run = r
		}
	}
}

// WithBinary sets the curl executable name or path.
func WithBinary(path string) Option {
	return func(t *Transport) {
		if path != "" {
			t.binary = path
		}
	}
}

// New creates a new curl transport. Zero config fields take their defaults.
func New(cfg transports.Config, opts ...Option) *Transport {
	t := &Transport{
		config: cfg.WithDefaults(),
		binary: DefaultBinary,
		run:    ExecRunner,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
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

var _ core.Transport = (*Transport)(nil)
