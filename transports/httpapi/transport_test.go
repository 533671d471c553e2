package httpapi

import (
	"net/http"
	"testing"

	"github.com/petal-labs/giga/core"
	"github.com/petal-labs/giga/transports"
)

func TestNewDefaults(t *testing.T) {
	tr := New(transports.Config{})

	if tr.ID() != "http" {
		t.Errorf("ID() = %q, want http", tr.ID())
	}
	if tr.Model() != core.DefaultModel {
		t.Errorf("Model() = %q, want %q", tr.Model(), core.DefaultModel)
	}
	cfg := tr.Config()
	if cfg.OAuthURL != core.DefaultOAuthURL || cfg.CompletionsURL != core.DefaultCompletionsURL {
		t.Errorf("URLs = %q, %q", cfg.OAuthURL, cfg.CompletionsURL)
	}
	if tr.client != http.DefaultClient {
		t.Error("expected http.DefaultClient when TLS verification is on")
	}
}

func TestNewCustomHTTPClient(t *testing.T) {
	custom := &http.Client{}
	tr := New(transports.NewConfig(transports.WithHTTPClient(custom), transports.WithInsecureSkipVerify(true)))
	if tr.client != custom {
		t.Error("custom HTTP client should take precedence")
	}
}

func TestRegistered(t *testing.T) {
	if !transports.IsRegistered("http") {
		t.Fatal("http transport should self-register")
	}
	tr, err := transports.Create("http", transports.Config{Model: "GigaChat-Max"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if tr.ID() != "http" || tr.Model() != "GigaChat-Max" {
		t.Errorf("ID/Model = %q/%q", tr.ID(), tr.Model())
	}
}
