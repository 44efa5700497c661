// Package config loads server configuration from defaults, an optional YAML
// file, OG_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sternrassler/og-negotiator/pkg/artifact"
	"github.com/Sternrassler/og-negotiator/pkg/logging"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. OG_STORE_BACKEND.
const EnvPrefix = "OG"

// Store backends.
const (
	BackendRedis   = "redis"
	BackendLevelDB = "leveldb"
)

// ErrInvalidConfig is wrapped by every validation error.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete server configuration.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Store     StoreConfig
	Artifact  ArtifactConfig
	Render    RenderConfig
	Negotiate NegotiateConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

// LogConfig configures zerolog.
type LogConfig struct {
	Level  logging.LogLevel
	Pretty bool
}

// StoreConfig selects and configures the artifact store.
type StoreConfig struct {
	Backend     string
	RedisAddr   string
	LevelDBPath string
}

// ArtifactConfig configures the artifact cache and prefetcher.
type ArtifactConfig struct {
	TTL                 time.Duration
	RenderTimeout       time.Duration
	PrefetchConcurrency int
}

// RenderConfig configures the image renderer. An empty RemoteURL selects the
// built-in rasterizer.
type RenderConfig struct {
	RemoteURL string
}

// NegotiateConfig configures format resolution.
type NegotiateConfig struct {
	// ImageExtension makes /<id>.png resolve to the image representation.
	ImageExtension bool
}

// Address returns the listen address for the configured port.
func (c ServerConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// defaults maps every key to its default value. Keys without a default are
// invisible to AutomaticEnv, so every key must appear here.
var defaults = map[string]any{
	"server.port":                   8080,
	"server.shutdown_timeout":       15 * time.Second,
	"log.level":                     string(logging.LevelInfo),
	"log.pretty":                    false,
	"store.backend":                 BackendRedis,
	"store.redis_addr":              "localhost:6379",
	"store.leveldb_path":            "./data/og",
	"artifact.ttl":                  artifact.DefaultTTL,
	"artifact.render_timeout":       30 * time.Second,
	"artifact.prefetch_concurrency": artifact.DefaultPrefetchConcurrency,
	"render.remote_url":             "",
	"negotiate.image_extension":     true,
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"port":                 "server.port",
	"log-level":            "log.level",
	"log-pretty":           "log.pretty",
	"store":                "store.backend",
	"redis-addr":           "store.redis_addr",
	"leveldb-path":         "store.leveldb_path",
	"ttl":                  "artifact.ttl",
	"render-timeout":       "artifact.render_timeout",
	"prefetch-concurrency": "artifact.prefetch_concurrency",
	"render-url":           "render.remote_url",
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// RegisterFlags adds the server flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Int("port", 8080, "HTTP listen port")
	fs.String("log-level", string(logging.LevelInfo), "log level (debug, info, warn, error)")
	fs.Bool("log-pretty", false, "human-readable console logs")
	fs.String("store", BackendRedis, "artifact store backend (redis, leveldb)")
	fs.String("redis-addr", "localhost:6379", "Redis address")
	fs.String("leveldb-path", "./data/og", "LevelDB directory")
	fs.Duration("ttl", artifact.DefaultTTL, "lifetime of stored preview images")
	fs.Duration("render-timeout", 30*time.Second, "timeout of a single image render (0 disables)")
	fs.Int("prefetch-concurrency", artifact.DefaultPrefetchConcurrency, "maximum concurrent background renders")
	fs.String("render-url", "", "remote render service URL (empty uses the built-in rasterizer)")
}

// BindFlags binds every registered flag in fs to its configuration key.
// Flags absent from fs are skipped.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads file (when non-empty) into v and returns the validated
// configuration.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	cfg := Config{
		Server: ServerConfig{
			Port:            v.GetInt("server.port"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Log: LogConfig{
			Level:  logging.LogLevel(v.GetString("log.level")),
			Pretty: v.GetBool("log.pretty"),
		},
		Store: StoreConfig{
			Backend:     strings.ToLower(v.GetString("store.backend")),
			RedisAddr:   v.GetString("store.redis_addr"),
			LevelDBPath: v.GetString("store.leveldb_path"),
		},
		Artifact: ArtifactConfig{
			TTL:                 v.GetDuration("artifact.ttl"),
			RenderTimeout:       v.GetDuration("artifact.render_timeout"),
			PrefetchConcurrency: v.GetInt("artifact.prefetch_concurrency"),
		},
		Render: RenderConfig{
			RemoteURL: v.GetString("render.remote_url"),
		},
		Negotiate: NegotiateConfig{
			ImageExtension: v.GetBool("negotiate.image_extension"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: server.shutdown_timeout must be positive", ErrInvalidConfig)
	}
	if err := logging.ValidateLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
	}

	switch c.Store.Backend {
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("%w: store.redis_addr is required for the redis backend", ErrInvalidConfig)
		}
	case BackendLevelDB:
		if c.Store.LevelDBPath == "" {
			return fmt.Errorf("%w: store.leveldb_path is required for the leveldb backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store.backend %q", ErrInvalidConfig, c.Store.Backend)
	}

	if c.Artifact.TTL <= 0 {
		return fmt.Errorf("%w: artifact.ttl must be positive", ErrInvalidConfig)
	}
	if c.Artifact.RenderTimeout < 0 {
		return fmt.Errorf("%w: artifact.render_timeout cannot be negative", ErrInvalidConfig)
	}
	if c.Artifact.PrefetchConcurrency <= 0 {
		return fmt.Errorf("%w: artifact.prefetch_concurrency must be positive", ErrInvalidConfig)
	}
	return nil
}
