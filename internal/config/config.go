// Package config provides configuration loading for the stringed tools.
//
// Configuration is read from a TOML or YAML file; the format is chosen by the
// file extension. Missing values fall back to defaults, so an empty file (or
// no file at all) yields a working configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "STRINGED_CONFIG"

// Config is the root configuration structure.
type Config struct {
	Eval    EvalConfig    `toml:"eval" yaml:"eval"`
	Parser  ParserConfig  `toml:"parser" yaml:"parser"`
	Log     LogConfig     `toml:"log" yaml:"log"`
	Repl    ReplConfig    `toml:"repl" yaml:"repl"`
	History HistoryConfig `toml:"history" yaml:"history"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
}

// EvalConfig configures the evaluator.
type EvalConfig struct {
	MaxDepth  int      `toml:"max_depth" yaml:"max_depth"`
	Timeout   Duration `toml:"timeout" yaml:"timeout"`
	Caching   bool     `toml:"caching" yaml:"caching"`
	CacheSize int      `toml:"cache_size" yaml:"cache_size"`
}

// ParserConfig configures the parser.
type ParserConfig struct {
	MaxDepth int `toml:"max_depth" yaml:"max_depth"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`   // debug, info, warn, error
	Format string `toml:"format" yaml:"format"` // text or json
}

// ReplConfig configures the interactive shell.
type ReplConfig struct {
	Prompt     string `toml:"prompt" yaml:"prompt"`
	RecallSize int    `toml:"recall_size" yaml:"recall_size"`
	Color      bool   `toml:"color" yaml:"color"`
	TUI        bool   `toml:"tui" yaml:"tui"`
}

// HistoryConfig configures the persisted evaluation history.
type HistoryConfig struct {
	Enabled       bool     `toml:"enabled" yaml:"enabled"`
	Path          string   `toml:"path" yaml:"path"`
	Retention     Duration `toml:"retention" yaml:"retention"`
	PruneInterval Duration `toml:"prune_interval" yaml:"prune_interval"`
}

// ServerConfig configures the HTTP evaluation service.
type ServerConfig struct {
	Addr         string   `toml:"addr" yaml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout" yaml:"write_timeout"`
	MaxBodySize  int      `toml:"max_body_size" yaml:"max_body_size"`
}

// Duration wraps time.Duration for text unmarshalling ("30s", "24h").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// Format is a configuration file format.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	default:
		return "toml"
	}
}

// DetectFormat picks the format from the file extension. Anything that is not
// .yaml or .yml is read as TOML.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg, _ := Parse(nil, FormatTOML)
	return cfg
}

// Load loads configuration from a TOML or YAML file.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(content, DetectFormat(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes configuration content in the given format.
// Booleans that default to true stay true unless the content sets them.
func Parse(content []byte, format Format) (*Config, error) {
	cfg := &Config{
		Repl:    ReplConfig{Color: true},
		History: HistoryConfig{Enabled: true},
	}

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, err
		}
	default:
		if _, err := toml.Decode(string(content), cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()
	return cfg, nil
}

// LoadFromEnv loads configuration from the STRINGED_CONFIG environment
// variable, or from the first default location that exists. Without any file
// it returns Default().
func LoadFromEnv() (*Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		for _, p := range DefaultPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// DefaultPaths lists the locations searched by LoadFromEnv, in order.
func DefaultPaths() []string {
	paths := []string{
		"./stringed.toml",
		"./stringed.yaml",
	}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths,
			filepath.Join(dir, "stringed", "config.toml"),
			filepath.Join(dir, "stringed", "config.yaml"),
		)
	}
	return paths
}

func (c *Config) applyDefaults() {
	// Eval defaults
	if c.Eval.MaxDepth == 0 {
		c.Eval.MaxDepth = 10000
	}
	if c.Eval.Timeout.Duration == 0 {
		c.Eval.Timeout.Duration = 30 * time.Second
	}
	if c.Eval.CacheSize == 0 {
		c.Eval.CacheSize = 256
	}

	// Parser defaults
	if c.Parser.MaxDepth == 0 {
		c.Parser.MaxDepth = 10000
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	// Repl defaults
	if c.Repl.Prompt == "" {
		c.Repl.Prompt = "> "
	}
	if c.Repl.RecallSize == 0 {
		c.Repl.RecallSize = 100
	}

	// History defaults
	if c.History.Path == "" {
		c.History.Path = defaultHistoryPath()
	}
	if c.History.Retention.Duration == 0 {
		c.History.Retention.Duration = 30 * 24 * time.Hour
	}
	if c.History.PruneInterval.Duration == 0 {
		c.History.PruneInterval.Duration = time.Hour
	}

	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 10 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 30 * time.Second
	}
	if c.Server.MaxBodySize == 0 {
		c.Server.MaxBodySize = 1 << 20
	}
}

func (c *Config) expandEnvVars() {
	c.History.Path = os.ExpandEnv(c.History.Path)
}

func defaultHistoryPath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "stringed", "history.db")
	}
	return "./stringed-history.db"
}
