package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/pyro-notes/pyro/internal/storage"
)

//go:embed schema.cue
var schemaSource string

// Environment variables read by Load.
const (
	EnvConfig   = "PYRO_CONFIG"
	EnvPassword = "PYRO_PASSWORD"
)

// Config is the parsed configuration file.
type Config struct {
	Store StoreConfig `yaml:"store" json:"store"`
	Log   LogConfig   `yaml:"log" json:"log"`
}

// StoreConfig selects the document store artifact.
type StoreConfig struct {
	Path    string `yaml:"path" json:"path"`
	Backend string `yaml:"backend" json:"backend"`
}

// LogConfig controls the slog handler installed by the CLI.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the configuration at path. An empty path falls back to
// $PYRO_CONFIG, and when that is unset too the defaults are returned.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		cfg := Default()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Store.Path = expandHome(cfg.Store.Path)
	if !filepath.IsAbs(cfg.Store.Path) {
		cfg.Store.Path = filepath.Join(filepath.Dir(path), cfg.Store.Path)
	}
	return cfg, nil
}

// Parse decodes YAML, applies defaults and validates the result.
// Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Store.Backend == "" {
		c.Store.Backend = string(storage.KindSQLite)
	}
	if c.Store.Path == "" {
		c.Store.Path = DefaultPath(storage.Kind(c.Store.Backend))
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// SetBackend switches the store backend. A path still at the previous
// backend's default moves to the new backend's default; an explicit path is
// kept.
func (c *Config) SetBackend(kind storage.Kind) {
	if c.Store.Path == DefaultPath(storage.Kind(c.Store.Backend)) {
		c.Store.Path = DefaultPath(kind)
	}
	c.Store.Backend = string(kind)
}

// Validate checks c against the embedded CUE schema.
func (c *Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Config"))
	value := def.Unify(ctx.Encode(c))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Kind returns the configured backend kind.
func (c *Config) Kind() (storage.Kind, error) {
	return storage.ParseKind(c.Store.Backend)
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// DefaultPath returns the artifact path used when none is configured:
// a file under the user config directory named after the backend.
func DefaultPath(kind storage.Kind) string {
	name := "documents" + extension(kind)
	dir, err := os.UserConfigDir()
	if err != nil {
		return name
	}
	return filepath.Join(dir, "pyro", name)
}

func extension(kind storage.Kind) string {
	switch kind {
	case storage.KindJSON:
		return ".json"
	case storage.KindArchive:
		return ".zip"
	default:
		return ".db"
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
