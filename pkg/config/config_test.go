package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	def := Default()
	if cfg != def {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, def)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults should validate: %v", err)
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
storage:
  backend: file
  path: /tmp/tally.json
gesture:
  threshold: 8
random_style: true
theme: dark
`
	os.WriteFile(path, []byte(content), 0644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Backend != "file" || cfg.Storage.Path != "/tmp/tally.json" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Storage.Key != "counters" {
		t.Errorf("Unset key should keep default, got %q", cfg.Storage.Key)
	}
	if cfg.Gesture.Threshold != 8 || !cfg.RandomStyle || cfg.Theme != ThemeDark {
		t.Errorf("Unexpected config: %+v", cfg)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("storage: [unterminated"), 0644)

	if _, err := Load(path); err == nil {
		t.Error("Expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"TALLY_STORAGE":           "memory",
		"TALLY_KEY":               "gym",
		"TALLY_GESTURE_THRESHOLD": "12",
		"TALLY_RANDOM_STYLE":      "true",
		"TALLY_LOG":               "/tmp/tally.log",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Backend != "memory" || cfg.Storage.Key != "gym" || cfg.Gesture.Threshold != 12 || !cfg.RandomStyle || cfg.LogFile != "/tmp/tally.log" {
		t.Errorf("ApplyEnv result: %+v", cfg)
	}

	env["TALLY_GESTURE_THRESHOLD"] = "lots"
	if err := cfg.ApplyEnv(lookup); err == nil || !strings.Contains(err.Error(), "TALLY_GESTURE_THRESHOLD") {
		t.Errorf("Expected threshold error, got %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	os.WriteFile(path, []byte("TALLY_TEST_DOTENV=from-file\n"), 0644)
	t.Cleanup(func() { os.Unsetenv("TALLY_TEST_DOTENV") })

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("TALLY_TEST_DOTENV"); got != "from-file" {
		t.Errorf("TALLY_TEST_DOTENV = %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"memory needs no path", func(c *Config) { c.Storage.Backend = "memory"; c.Storage.Path = "" }, false},
		{"backend case-insensitive", func(c *Config) { c.Storage.Backend = " FILE " }, false},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "redis" }, true},
		{"sqlite without path uses default", func(c *Config) { c.Storage.Path = "" }, false},
		{"zero threshold", func(c *Config) { c.Gesture.Threshold = 0 }, true},
		{"bad theme", func(c *Config) { c.Theme = "neon" }, true},
		{"empty key defaults", func(c *Config) { c.Storage.Key = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && cfg.Storage.Key == "" {
				t.Error("Validate should fill in the default key")
			}
		})
	}
}

func TestValidate_DefaultPathPerBackend(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	sqlite := Default()
	if err := sqlite.Validate(); err != nil {
		t.Fatal(err)
	}
	file := Default()
	file.Storage.Backend = "file"
	if err := file.Validate(); err != nil {
		t.Fatal(err)
	}

	if filepath.Base(sqlite.Storage.Path) != "tally.db" {
		t.Errorf("sqlite path = %q", sqlite.Storage.Path)
	}
	if filepath.Base(file.Storage.Path) != "counters.json" {
		t.Errorf("file path = %q", file.Storage.Path)
	}
	if file.Storage.Path == sqlite.Storage.Path {
		t.Errorf("file and sqlite backends share %q", file.Storage.Path)
	}

	// An explicit path is kept.
	explicit := Default()
	explicit.Storage.Backend = "file"
	explicit.Storage.Path = "/data/mine.json"
	if err := explicit.Validate(); err != nil {
		t.Fatal(err)
	}
	if explicit.Storage.Path != "/data/mine.json" {
		t.Errorf("explicit path replaced with %q", explicit.Storage.Path)
	}

	memory := Default()
	memory.Storage.Backend = "memory"
	if err := memory.Validate(); err != nil {
		t.Fatal(err)
	}
	if memory.Storage.Path != "" {
		t.Errorf("memory path = %q, want empty", memory.Storage.Path)
	}
}

func TestWatch_ReportsChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("gesture:\n  threshold: 10\n"), 0644)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Config, 4)
	done := make(chan error, 1)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	go func() {
		done <- Watch(ctx, path, logger, func(c Config) { changes <- c })
	}()

	// Give the watcher time to register
	time.Sleep(100 * time.Millisecond)
	os.WriteFile(path, []byte("gesture:\n  threshold: 20\n"), 0644)

	// A write may arrive as truncate + write; wait for the final content.
	timeout := time.After(3 * time.Second)
	for got := 0; got != 20; {
		select {
		case c := <-changes:
			got = c.Gesture.Threshold
		case <-timeout:
			t.Fatal("Timed out waiting for config change")
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v", err)
	}
}
