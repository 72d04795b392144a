// Package config loads axnarrate settings from a TOML file and the
// environment.
//
// Values are resolved in three layers, later layers winning:
//
//  1. [Default]
//  2. the config file ($XDG_CONFIG_HOME/axnarrate/config.toml unless a path
//     is given)
//  3. AXNARRATE_* environment variables
//
// A minimal file:
//
//	[render]
//	format = "ansi"
//	max_depth = 256
//
//	[cache]
//	backend = "redis"
//	redis_addr = "redis://localhost:6379/0"
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	apperrors "github.com/matzehuels/axnarrate/pkg/errors"
	"github.com/matzehuels/axnarrate/pkg/pipeline"
)

const appName = "axnarrate"

// Backend names shared by [CacheConfig] and [SessionConfig].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Color modes for terminal output.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the complete application configuration.
type Config struct {
	Render  RenderConfig  `toml:"render"`
	Cache   CacheConfig   `toml:"cache"`
	Session SessionConfig `toml:"session"`
	Server  ServerConfig  `toml:"server"`
}

// RenderConfig holds narration defaults for the CLI.
type RenderConfig struct {
	Format   string `toml:"format"`
	MaxDepth int    `toml:"max_depth"`
	Color    string `toml:"color"`
}

// CacheConfig selects the artifact cache.
type CacheConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir,omitempty"` // empty means $XDG_CACHE_HOME/axnarrate
	TTL       Duration `toml:"ttl"`
	RedisAddr string   `toml:"redis_addr,omitempty"`
	Namespace string   `toml:"namespace"`
}

// SessionConfig selects where loaded trees are remembered.
type SessionConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir,omitempty"` // empty means ~/.config/axnarrate/sessions
	TTL       Duration `toml:"ttl"`
	RedisAddr string   `toml:"redis_addr,omitempty"`
	Namespace string   `toml:"namespace"`
}

// ServerConfig configures `axnarrate serve`.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	CORSOrigins  []string `toml:"cors_origins"`
	MaxBodyBytes int64    `toml:"max_body_bytes"`
	ReadTimeout  Duration `toml:"read_timeout"`
}

// Duration is a time.Duration that reads and writes strings such as "168h".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Format:   pipeline.DefaultFormat,
			MaxDepth: pipeline.DefaultMaxDepth,
			Color:    ColorAuto,
		},
		Cache: CacheConfig{
			Backend:   BackendFile,
			TTL:       Duration{7 * 24 * time.Hour},
			Namespace: appName + ":",
		},
		Session: SessionConfig{
			Backend:   BackendFile,
			TTL:       Duration{30 * 24 * time.Hour},
			Namespace: appName + ":",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			CORSOrigins:  []string{"*"},
			MaxBodyBytes: 10 << 20,
			ReadTimeout:  Duration{15 * time.Second},
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/axnarrate/config.toml, falling back
// to ~/.config/axnarrate/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the configuration. An empty path reads [DefaultPath], which may
// be absent; an explicit path must exist. Unknown keys are rejected so typos
// do not pass silently.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	switch {
	case err == nil:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return nil, apperrors.New(apperrors.ErrCodeInvalidConfig,
				"%s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	case os.IsNotExist(err):
		if explicit {
			return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "config file %s", path)
		}
	default:
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays AXNARRATE_* variables read through lookup.
func (c *Config) applyEnv(lookup func(string) string) error {
	getEnv := func(key, defaultValue string) string {
		if value := lookup("AXNARRATE_" + key); value != "" {
			return value
		}
		return defaultValue
	}

	c.Render.Format = getEnv("FORMAT", c.Render.Format)
	c.Render.Color = getEnv("COLOR", c.Render.Color)
	if v := getEnv("MAX_DEPTH", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "AXNARRATE_MAX_DEPTH")
		}
		c.Render.MaxDepth = n
	}

	c.Cache.Backend = getEnv("CACHE", c.Cache.Backend)
	c.Cache.Dir = getEnv("CACHE_DIR", c.Cache.Dir)
	c.Session.Backend = getEnv("SESSION", c.Session.Backend)
	c.Session.Dir = getEnv("SESSION_DIR", c.Session.Dir)
	if addr := getEnv("REDIS_URL", ""); addr != "" {
		c.Cache.RedisAddr = addr
		c.Session.RedisAddr = addr
	}

	c.Server.Addr = getEnv("ADDR", c.Server.Addr)
	if origins := getEnv("CORS_ORIGINS", ""); origins != "" {
		c.Server.CORSOrigins = splitList(origins)
	}
	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	formats := make([]any, 0, len(pipeline.Formats()))
	for _, f := range pipeline.Formats() {
		formats = append(formats, f)
	}
	backends := []any{BackendFile, BackendRedis, BackendNone}
	nonNegative := validation.By(func(v any) error {
		if d, ok := v.(Duration); ok && d.Duration < 0 {
			return validation.NewError("validation_negative_duration", "must not be negative")
		}
		return nil
	})
	needsRedis := func(backend string) validation.Rule {
		return validation.When(backend == BackendRedis, validation.Required.Error("is required for the redis backend"))
	}

	checks := []struct {
		section string
		err     error
	}{
		{"render", validation.ValidateStruct(&c.Render,
			validation.Field(&c.Render.Format, validation.Required, validation.In(formats...)),
			validation.Field(&c.Render.MaxDepth, validation.Min(0)),
			validation.Field(&c.Render.Color, validation.Required, validation.In(ColorAuto, ColorAlways, ColorNever)),
		)},
		{"cache", validation.ValidateStruct(&c.Cache,
			validation.Field(&c.Cache.Backend, validation.Required, validation.In(backends...)),
			validation.Field(&c.Cache.TTL, nonNegative),
			validation.Field(&c.Cache.RedisAddr, needsRedis(c.Cache.Backend)),
		)},
		{"session", validation.ValidateStruct(&c.Session,
			validation.Field(&c.Session.Backend, validation.Required, validation.In(backends...)),
			validation.Field(&c.Session.TTL, nonNegative),
			validation.Field(&c.Session.RedisAddr, needsRedis(c.Session.Backend)),
		)},
		{"server", validation.ValidateStruct(&c.Server,
			validation.Field(&c.Server.Addr, validation.Required),
			validation.Field(&c.Server.MaxBodyBytes, validation.Min(int64(1))),
			validation.Field(&c.Server.ReadTimeout, nonNegative),
		)},
	}
	for _, ch := range checks {
		if ch.err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, ch.err, "[%s]", ch.section)
		}
	}
	return nil
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
