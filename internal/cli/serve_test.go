package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEffectiveAddrPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("http_addr: \":7070\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// flag untouched: the file value wins over the flag's env-derived default
	if got := effectiveAddr(cfg, ":8080", false); got != ":7070" {
		t.Fatalf("addr = %q, want file value :7070", got)
	}
	// flag explicitly set: it wins over the file
	if got := effectiveAddr(cfg, ":9999", true); got != ":9999" {
		t.Fatalf("addr = %q, want flag value :9999", got)
	}
}

func TestEffectiveAddrDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := effectiveAddr(cfg, cfg.HTTPAddr, false); got != cfg.HTTPAddr {
		t.Fatalf("addr = %q, want %q", got, cfg.HTTPAddr)
	}
}

func TestBaseURL(t *testing.T) {
	if got := baseURL(":8080"); got != "http://127.0.0.1:8080" {
		t.Fatalf("baseURL = %q", got)
	}
	if got := baseURL("example.com:80"); got != "http://example.com:80" {
		t.Fatalf("baseURL = %q", got)
	}
}
