package browsersession

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.ConnectTimeout != 15*time.Second {
		t.Errorf("ConnectTimeout default = %v, want 15s", cfg.ConnectTimeout)
	}
	if cfg.StartRetries != 3 {
		t.Errorf("StartRetries default = %d, want 3", cfg.StartRetries)
	}
	if cfg.MemoryCeilingMB != 1536 {
		t.Errorf("MemoryCeilingMB default = %d, want 1536", cfg.MemoryCeilingMB)
	}
}

func TestConfig_DefaultsDoNotOverrideSetValues(t *testing.T) {
	cfg := Config{ConnectTimeout: 5 * time.Second, StartRetries: 1, MemoryCeilingMB: 256}.withDefaults()
	if cfg.ConnectTimeout != 5*time.Second || cfg.StartRetries != 1 || cfg.MemoryCeilingMB != 256 {
		t.Errorf("withDefaults overrode explicit values: %+v", cfg)
	}
}

func TestProvider_RequestStart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/start" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(startResponse{DevToolsURL: "ws://127.0.0.1:9222/devtools/browser/abc"})
	}))
	defer srv.Close()

	p := New(Config{ProfileServiceURL: srv.URL})
	url, err := p.requestStart(t.Context(), "profile-1")
	if err != nil {
		t.Fatalf("requestStart: %v", err)
	}
	if url != "ws://127.0.0.1:9222/devtools/browser/abc" {
		t.Errorf("requestStart url = %q", url)
	}
}

func TestProvider_RequestStart_EmptyURLIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(startResponse{})
	}))
	defer srv.Close()

	p := New(Config{ProfileServiceURL: srv.URL})
	if _, err := p.requestStart(t.Context(), "profile-1"); err == nil {
		t.Fatal("expected error for empty devtools url")
	}
}
