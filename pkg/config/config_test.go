package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/turnoutpaths/pkg/errors"
)

func TestParse(t *testing.T) {
	data := []byte(`
[paths]
angle_tolerance = 3.5
max_groups = 50
prefer_saved = true

[cache]
backend = "redis"
redis_url = "redis://cache:6379/1"
ttl = "12h"
`)
	cfg, err := Parse(data, Default())
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	want := Default()
	want.Paths.AngleTolerance = 3.5
	want.Paths.MaxGroups = 50
	want.Paths.PreferSaved = true
	want.Cache.Backend = BackendRedis
	want.Cache.RedisURL = "redis://cache:6379/1"
	want.Cache.TTL = Duration{12 * time.Hour}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code errors.Code
	}{
		{"syntax", "[paths\n", errors.ErrCodeInvalidConfig},
		{"unknown key", "[paths]\nspeed = 3\n", errors.ErrCodeInvalidConfig},
		{"bad tolerance", "[paths]\nangle_tolerance = 0\n", errors.ErrCodeInvalidConfig},
		{"bad distance", "[paths]\nconnect_distance = -1.0\n", errors.ErrCodeInvalidConfig},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n", errors.ErrCodeInvalidConfig},
		{"redis without url", "[cache]\nbackend = \"redis\"\n", errors.ErrCodeInvalidConfig},
		{"mongo wrong scheme", "[cache]\nbackend = \"mongo\"\nmongo_uri = \"http://x\"\n", errors.ErrCodeInvalidConfig},
		{"bad ttl", "[cache]\nttl = \"soon\"\n", errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), Default())
			if !errors.Is(err, tt.code) {
				t.Errorf("Parse() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "missing.toml"), false)
	if err != nil {
		t.Fatalf("Load(missing, optional) error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load(missing) mismatch (-want +got):\n%s", diff)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml"), true); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing, required) error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}

	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[paths]\nenabled = false\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(path, true)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Paths.Enabled {
		t.Error("Paths.Enabled = true, want false")
	}
	if !cfg.Settings(nil).DisableGeneration {
		t.Error("Settings().DisableGeneration = false, want true")
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	p, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath() error: %v", err)
	}
	if want := filepath.Join("/tmp/xdg", AppName, "config.toml"); p != want {
		t.Errorf("DefaultPath() = %q, want %q", p, want)
	}
}

func TestOptions(t *testing.T) {
	cfg := Default()
	cfg.Paths.EndpointConflicts = true
	opts := cfg.Options(nil)
	if opts.AngleTolerance != 5 || opts.ConnectDistance != 0.1 || opts.MaxGroups != 1000 || !opts.EndpointConflicts {
		t.Errorf("Options() = %+v", opts)
	}
}
