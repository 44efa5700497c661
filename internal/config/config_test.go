package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Sternrassler/og-negotiator/pkg/logging"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := Config{
		Server:    ServerConfig{Port: 8080, ShutdownTimeout: 15 * time.Second},
		Log:       LogConfig{Level: logging.LevelInfo},
		Store:     StoreConfig{Backend: BackendRedis, RedisAddr: "localhost:6379", LevelDBPath: "./data/og"},
		Artifact:  ArtifactConfig{TTL: 24 * time.Hour, RenderTimeout: 30 * time.Second, PrefetchConcurrency: 4},
		Negotiate: NegotiateConfig{ImageExtension: true},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if cfg.Server.Address() != ":8080" {
		t.Errorf("Address() = %q, want :8080", cfg.Server.Address())
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("OG_STORE_BACKEND", "LevelDB")
	t.Setenv("OG_ARTIFACT_TTL", "1h")
	t.Setenv("OG_NEGOTIATE_IMAGE_EXTENSION", "false")
	t.Setenv("OG_RENDER_REMOTE_URL", "http://renderer:3000/render")

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Store.Backend != BackendLevelDB {
		t.Errorf("Backend = %q, want leveldb", cfg.Store.Backend)
	}
	if cfg.Artifact.TTL != time.Hour {
		t.Errorf("TTL = %v, want 1h", cfg.Artifact.TTL)
	}
	if cfg.Negotiate.ImageExtension {
		t.Error("ImageExtension should be disabled by the environment")
	}
	if cfg.Render.RemoteURL != "http://renderer:3000/render" {
		t.Errorf("RemoteURL = %q", cfg.Render.RemoteURL)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "og.yaml")
	data := []byte(`server:
  port: 9090
log:
  level: debug
artifact:
  render_timeout: 5s
  prefetch_concurrency: 8
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(New(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Log.Level != logging.LevelDebug {
		t.Errorf("Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Artifact.RenderTimeout != 5*time.Second {
		t.Errorf("RenderTimeout = %v, want 5s", cfg.Artifact.RenderTimeout)
	}
	if cfg.Artifact.PrefetchConcurrency != 8 {
		t.Errorf("PrefetchConcurrency = %d, want 8", cfg.Artifact.PrefetchConcurrency)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for a missing config file")
	}
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("OG_SERVER_PORT", "7000")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse([]string{"--port", "7001", "--store", "leveldb", "--ttl", "2h"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	v := New()
	if err := BindFlags(v, fs); err != nil {
		t.Fatalf("BindFlags failed: %v", err)
	}

	cfg, err := Load(v, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 7001 {
		t.Errorf("Port = %d, want 7001", cfg.Server.Port)
	}
	if cfg.Store.Backend != BackendLevelDB {
		t.Errorf("Backend = %q, want leveldb", cfg.Store.Backend)
	}
	if cfg.Artifact.TTL != 2*time.Hour {
		t.Errorf("TTL = %v, want 2h", cfg.Artifact.TTL)
	}
	// Unset flags fall through to defaults.
	if cfg.Store.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q, want default", cfg.Store.RedisAddr)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg, err := Load(New(), "")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = 0 }},
		{"log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"unknown backend", func(c *Config) { c.Store.Backend = "memcached" }},
		{"redis without address", func(c *Config) { c.Store.RedisAddr = "" }},
		{"leveldb without path", func(c *Config) { c.Store.Backend = BackendLevelDB; c.Store.LevelDBPath = "" }},
		{"zero ttl", func(c *Config) { c.Artifact.TTL = 0 }},
		{"negative render timeout", func(c *Config) { c.Artifact.RenderTimeout = -time.Second }},
		{"zero concurrency", func(c *Config) { c.Artifact.PrefetchConcurrency = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}

	t.Run("render timeout disabled", func(t *testing.T) {
		cfg := valid()
		cfg.Artifact.RenderTimeout = 0
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})
}
