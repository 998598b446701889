package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr string `yaml:"http_addr"`

	DBDriver string `yaml:"db_driver"` // sqlite|postgres
	DBDSN    string `yaml:"db_dsn"`

	AuthHMACSecret string   `yaml:"auth_hmac_secret"`
	CORSOrigins    []string `yaml:"cors_origins"`

	// Sync coordinator
	SyncRetryFailed   bool          `yaml:"sync_retry_failed"`
	SyncProbeInterval time.Duration `yaml:"-"`

	AttemptMaxViolations int `yaml:"attempt_max_violations"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	ExportDir string `yaml:"export_dir"`
	SeedFile  string `yaml:"seed_file"`
}

func FromEnv() Config {
	return Config{
		HTTPAddr:             envOr("HTTP_ADDR", ":8080"),
		DBDriver:             envOr("DB_DRIVER", "sqlite"),
		DBDSN:                envOr("DB_DSN", ""),
		AuthHMACSecret:       envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		CORSOrigins:          csvOr("CORS_ORIGINS", "http://localhost:3000"),
		SyncRetryFailed:      envBool("SYNC_RETRY_FAILED", false),
		SyncProbeInterval:    envDuration("SYNC_PROBE_INTERVAL", 15*time.Second),
		AttemptMaxViolations: envInt("ATTEMPT_MAX_VIOLATIONS", 3),
		LogLevel:             envOr("LOG_LEVEL", "info"),
		LogFile:              os.Getenv("LOG_FILE"),
		ExportDir:            envOr("EXPORT_DIR", "./exports"),
		SeedFile:             os.Getenv("SEED_FILE"),
	}
}

// fileConfig mirrors Config for the YAML overlay; durations are strings in
// the file ("15s") and parsed here.
type fileConfig struct {
	Config            `yaml:",inline"`
	SyncProbeInterval string `yaml:"sync_probe_interval"`
}

// ApplyFile overlays values from a YAML file onto c. Zero values in the file
// leave the existing value alone.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	file := raw.Config
	if raw.SyncProbeInterval != "" {
		if d, err := time.ParseDuration(raw.SyncProbeInterval); err == nil {
			c.SyncProbeInterval = d
		}
	}
	if file.HTTPAddr != "" {
		c.HTTPAddr = file.HTTPAddr
	}
	if file.DBDriver != "" {
		c.DBDriver = file.DBDriver
	}
	if file.DBDSN != "" {
		c.DBDSN = file.DBDSN
	}
	if file.AuthHMACSecret != "" {
		c.AuthHMACSecret = file.AuthHMACSecret
	}
	if len(file.CORSOrigins) > 0 {
		c.CORSOrigins = file.CORSOrigins
	}
	if file.SyncRetryFailed {
		c.SyncRetryFailed = true
	}
	if file.AttemptMaxViolations > 0 {
		c.AttemptMaxViolations = file.AttemptMaxViolations
	}
	if file.LogLevel != "" {
		c.LogLevel = file.LogLevel
	}
	if file.LogFile != "" {
		c.LogFile = file.LogFile
	}
	if file.ExportDir != "" {
		c.ExportDir = file.ExportDir
	}
	if file.SeedFile != "" {
		c.SeedFile = file.SeedFile
	}
	return nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
