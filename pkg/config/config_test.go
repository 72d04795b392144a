package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	apperrors "github.com/matzehuels/axnarrate/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() error: %v", err)
	}
}

func TestLoadMissingDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadExplicitMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !apperrors.Is(err, apperrors.ErrCodeFileNotFound) {
		t.Errorf("Load() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	got, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg", "axnarrate", "config.toml"); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[render]
format = "html"
max_depth = 64

[cache]
backend = "redis"
redis_addr = "redis://localhost:6379/1"
ttl = "1h"

[server]
addr = "127.0.0.1:9000"
cors_origins = ["https://example.com"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	want := Default()
	want.Render.Format = "html"
	want.Render.MaxDepth = 64
	want.Cache.Backend = BackendRedis
	want.Cache.RedisAddr = "redis://localhost:6379/1"
	want.Cache.TTL = Duration{time.Hour}
	want.Server.Addr = "127.0.0.1:9000"
	want.Server.CORSOrigins = []string{"https://example.com"}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "[render]\nfromat = \"text\"\n", "render.fromat"},
		{"bad format", "[render]\nformat = \"pdf\"\n", "[render]"},
		{"negative depth", "[render]\nmax_depth = -1\n", "[render]"},
		{"bad color", "[render]\ncolor = \"sometimes\"\n", "[render]"},
		{"bad backend", "[cache]\nbackend = \"mongo\"\n", "[cache]"},
		{"redis without addr", "[session]\nbackend = \"redis\"\n", "[session]"},
		{"bad duration", "[cache]\nttl = \"soon\"\n", "parse"},
		{"zero body limit", "[server]\nmax_body_bytes = 0\n", "[server]"},
		{"syntax", "[render\n", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !apperrors.Is(err, apperrors.ErrCodeInvalidConfig) {
				t.Fatalf("Load() error = %v, want INVALID_CONFIG", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"AXNARRATE_FORMAT":       "json",
		"AXNARRATE_MAX_DEPTH":    "12",
		"AXNARRATE_CACHE":        "none",
		"AXNARRATE_REDIS_URL":    "localhost:6379",
		"AXNARRATE_CORS_ORIGINS": "https://a.test, https://b.test,",
	}
	cfg := Default()
	if err := cfg.applyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("applyEnv() error: %v", err)
	}

	if cfg.Render.Format != "json" || cfg.Render.MaxDepth != 12 || cfg.Cache.Backend != BackendNone {
		t.Errorf("render/cache = %+v %+v", cfg.Render, cfg.Cache)
	}
	if cfg.Cache.RedisAddr != "localhost:6379" || cfg.Session.RedisAddr != "localhost:6379" {
		t.Errorf("redis addr not applied to both stores: %q %q", cfg.Cache.RedisAddr, cfg.Session.RedisAddr)
	}
	if diff := cmp.Diff([]string{"https://a.test", "https://b.test"}, cfg.Server.CORSOrigins); diff != "" {
		t.Errorf("CORSOrigins mismatch (-want +got):\n%s", diff)
	}

	bad := Default()
	err := bad.applyEnv(func(k string) string {
		if k == "AXNARRATE_MAX_DEPTH" {
			return "deep"
		}
		return ""
	})
	if !apperrors.Is(err, apperrors.ErrCodeInvalidConfig) {
		t.Errorf("applyEnv() error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadAppliesEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("AXNARRATE_ADDR", ":9999")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Server.Addr = %q, want :9999", cfg.Server.Addr)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Default().Encode(&buf); err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"[render]", "max_depth = 1024", `ttl = "168h0m0s"`, "[server]"} {
		if !strings.Contains(out, want) {
			t.Errorf("Encode() missing %q:\n%s", want, out)
		}
	}

	path := writeConfig(t, out)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(encoded) error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
