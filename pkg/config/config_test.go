package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	relerrors "github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/layout"
)

func TestLoadDefaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.toml")} {
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%q): %v", path, err)
		}
		if cfg.Server.Addr != ":8080" || cfg.Cache.Backend != CacheFile || cfg.Layout.Direction != layout.TopToBottom {
			t.Errorf("Load(%q) = %+v", path, cfg)
		}
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[input]
encoding = "windows-1252"

[layout]
direction = "left-to-right"
passes = 8

[cache]
backend = "redis"
redis_addr = "localhost:6379"
prefix = "staging"

[server]
addr = ":9090"
session_ttl = "30m"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Input.Encoding != "windows-1252" || cfg.Input.MaxSize != Default().Input.MaxSize {
		t.Errorf("input = %+v", cfg.Input)
	}
	if cfg.Layout.Direction != layout.LeftToRight || cfg.Layout.Passes != 8 || cfg.Layout.NodeWidth != layout.DefaultNodeWidth {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.Prefix != "staging" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.SessionTTL.Std() != 30*time.Minute || cfg.Server.Store != StoreMemory {
		t.Errorf("server = %+v", cfg.Server)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		toml string
		want string
	}{
		{"syntax", `[input`, "parse config"},
		{"unknown key", "[cache]\nttl = \"1h\"", "cache.ttl"},
		{"bad direction", "[layout]\ndirection = \"diagonal\"", "direction"},
		{"bad duration", "[server]\nsession_ttl = \"soon\"", "parse config"},
		{"bad backend", "[cache]\nbackend = \"memcached\"", "cache backend"},
		{"redis without addr", "[cache]\nbackend = \"redis\"", "redis_addr"},
		{"mongo without uri", "[server]\nstore = \"mongo\"", "mongo_uri"},
		{"bad store", "[server]\nstore = \"sqlite\"", "session store"},
		{"bad encoding", "[input]\nencoding = \"klingon\"", "klingon"},
		{"negative gap", "[layout]\nrank_gap = -1", "gaps"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml), Default())
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
	_, err := Parse([]byte("[cache]\nbackend = \"x\""), Default())
	if !relerrors.Is(err, relerrors.ErrCodeInvalidOption) {
		t.Errorf("code = %s", relerrors.GetCode(err))
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Server.SessionTTL = Duration(90 * time.Second)
	data, err := cfg.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `session_ttl = "1m30s"`) {
		t.Errorf("encoded:\n%s", data)
	}
	got, err := Parse(data, Config{})
	if err != nil {
		t.Fatal(err)
	}
	if got.Server != cfg.Server || got.Cache != cfg.Cache || got.Input != cfg.Input {
		t.Errorf("round trip = %+v", got)
	}
}

func TestPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_CACHE_HOME", "/xdg-cache")

	if p, _ := DefaultPath(); p != filepath.Join("/cfg", "relgraph", "config.toml") {
		t.Errorf("DefaultPath() = %q", p)
	}
	cfg := Default()
	if d, _ := cfg.CacheDir(); d != filepath.Join("/xdg-cache", "relgraph") {
		t.Errorf("CacheDir() = %q", d)
	}
	if d, _ := cfg.SessionDir(); d != filepath.Join("/xdg-cache", "relgraph", "sessions") {
		t.Errorf("SessionDir() = %q", d)
	}
	cfg.Cache.Dir = "/tmp/c"
	cfg.Server.SessionDir = "/tmp/s"
	if d, _ := cfg.CacheDir(); d != "/tmp/c" {
		t.Errorf("CacheDir() = %q", d)
	}
	if d, _ := cfg.SessionDir(); d != "/tmp/s" {
		t.Errorf("SessionDir() = %q", d)
	}
}
