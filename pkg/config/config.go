// Package config loads tally settings.
//
// Precedence, lowest first: built-in defaults, the yaml config file, a .env
// file, TALLY_* environment variables, command-line flags (applied by the
// caller after Load).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/smantzavinos/tally/pkg/gesture"
	"github.com/smantzavinos/tally/pkg/storage"
)

// Theme modes.
const (
	ThemeAdaptive = "adaptive"
	ThemeDark     = "dark"
	ThemeLight    = "light"
)

// StorageConfig selects where counters are persisted.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	Key     string `yaml:"key"`
}

// GestureConfig tunes swipe recognition.
type GestureConfig struct {
	Threshold int `yaml:"threshold"`
}

// Config is the full set of settings.
type Config struct {
	Storage     StorageConfig `yaml:"storage"`
	Gesture     GestureConfig `yaml:"gesture"`
	RandomStyle bool          `yaml:"random_style"`
	LogFile     string        `yaml:"log_file"`
	Theme       string        `yaml:"theme"`
}

// Dir returns the directory holding tally's config and default data files.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "tally")
}

// DefaultPath is the default location of the yaml config file.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultStoragePath is where a backend keeps its data when no path is
// configured. Each backend gets its own file so switching backends never
// points one at the other's data.
func DefaultStoragePath(backend storage.Backend) string {
	switch backend {
	case storage.BackendSQLite:
		return filepath.Join(Dir(), "tally.db")
	case storage.BackendFile:
		return filepath.Join(Dir(), "counters.json")
	}
	return ""
}

// Default returns the built-in settings. The storage path is left empty and
// resolved per backend by Validate.
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Backend: string(storage.BackendSQLite),
			Key:     storage.DefaultKey,
		},
		Gesture: GestureConfig{Threshold: gesture.DefaultThreshold},
		Theme:   ThemeAdaptive,
	}
}

// Load reads the yaml file at path over the defaults. A missing file is not
// an error. The result is not yet validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overlays TALLY_* variables using lookup (os.LookupEnv in production).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("TALLY_STORAGE"); ok && v != "" {
		c.Storage.Backend = v
	}
	if v, ok := lookup("TALLY_PATH"); ok && v != "" {
		c.Storage.Path = v
	}
	if v, ok := lookup("TALLY_KEY"); ok && v != "" {
		c.Storage.Key = v
	}
	if v, ok := lookup("TALLY_LOG"); ok {
		c.LogFile = v
	}
	if v, ok := lookup("TALLY_THEME"); ok && v != "" {
		c.Theme = v
	}
	if v, ok := lookup("TALLY_GESTURE_THRESHOLD"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("invalid TALLY_GESTURE_THRESHOLD env variable")
		}
		c.Gesture.Threshold = n
	}
	if v, ok := lookup("TALLY_RANDOM_STYLE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New("invalid TALLY_RANDOM_STYLE env variable")
		}
		c.RandomStyle = b
	}
	return nil
}

// Validate normalizes and checks the settings.
func (c *Config) Validate() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch storage.Backend(c.Storage.Backend) {
	case storage.BackendSQLite, storage.BackendFile:
		if c.Storage.Path == "" {
			c.Storage.Path = DefaultStoragePath(storage.Backend(c.Storage.Backend))
		}
	case storage.BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.Storage.Key == "" {
		c.Storage.Key = storage.DefaultKey
	}
	if c.Gesture.Threshold <= 0 {
		return fmt.Errorf("gesture threshold must be positive, got %d", c.Gesture.Threshold)
	}

	switch c.Theme {
	case "":
		c.Theme = ThemeAdaptive
	case ThemeAdaptive, ThemeDark, ThemeLight:
	default:
		return fmt.Errorf("unknown theme %q", c.Theme)
	}
	return nil
}
