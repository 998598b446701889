package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quizdesk/quizdesk/internal/config"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := config.FromEnv()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("addr = %q", cfg.HTTPAddr)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("driver = %q", cfg.DBDriver)
	}
	if cfg.SyncRetryFailed {
		t.Fatalf("failed-retry should default off")
	}
	if cfg.AttemptMaxViolations != 3 {
		t.Fatalf("max violations = %d", cfg.AttemptMaxViolations)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("SYNC_RETRY_FAILED", "true")
	t.Setenv("SYNC_PROBE_INTERVAL", "3s")
	t.Setenv("ATTEMPT_MAX_VIOLATIONS", "5")

	cfg := config.FromEnv()
	if cfg.HTTPAddr != ":9090" || !cfg.SyncRetryFailed {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.SyncProbeInterval != 3*time.Second {
		t.Fatalf("probe interval = %v", cfg.SyncProbeInterval)
	}
	if cfg.AttemptMaxViolations != 5 {
		t.Fatalf("max violations = %d", cfg.AttemptMaxViolations)
	}
}

func TestApplyFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte("http_addr: \":7070\"\ndb_driver: postgres\nsync_probe_interval: 2s\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := config.FromEnv()
	if err := cfg.ApplyFile(path); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.HTTPAddr != ":7070" || cfg.DBDriver != "postgres" {
		t.Fatalf("file not applied: %+v", cfg)
	}
	if cfg.SyncProbeInterval != 2*time.Second {
		t.Fatalf("probe interval = %v", cfg.SyncProbeInterval)
	}
	// file silence leaves env defaults alone
	if cfg.AuthHMACSecret == "" || cfg.ExportDir != "./exports" {
		t.Fatalf("defaults clobbered: %+v", cfg)
	}
}
