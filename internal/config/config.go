// Package config loads goboard settings from <home>/config.yaml with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/basket/go-board/internal/migrate"
	"github.com/basket/go-board/internal/otel"
)

const (
	// HomeDirName is the data directory created under the working directory.
	HomeDirName = ".goboard"
	// FileName is the config file inside the home directory.
	FileName   = "config.yaml"
	dbFileName = "board.db"
)

// ErrUnknownKey is returned by SetValue for keys config.yaml does not define.
var ErrUnknownKey = errors.New("unknown config key")

// ThemeConfig holds lipgloss colors for the board view.
type ThemeConfig struct {
	Accent   string `yaml:"accent"`
	Muted    string `yaml:"muted"`
	Selected string `yaml:"selected"`
}

type Config struct {
	HomeDir string `yaml:"-"`

	DBPath        string `yaml:"db_path"`
	MigrationsDir string `yaml:"migrations_dir"`
	LogLevel      string `yaml:"log_level"`

	Theme ThemeConfig `yaml:"theme"`
	OTel  otel.Config `yaml:"otel"`

	// FromFile reports whether config.yaml existed when loaded.
	FromFile bool `yaml:"-"`
}

// ConfigPath returns the path to config.yaml within the given home directory.
func ConfigPath(homeDir string) string {
	return filepath.Join(homeDir, FileName)
}

func defaultConfig() Config {
	return Config{
		LogLevel: "info",
		Theme: ThemeConfig{
			Accent:   "62",
			Muted:    "240",
			Selected: "86",
		},
		OTel: otel.Config{
			Exporter:    "file",
			ServiceName: "goboard",
			SampleRate:  1.0,
		},
	}
}

// HomeDir returns GOBOARD_HOME, or .goboard in the working directory.
func HomeDir() string {
	if override := os.Getenv("GOBOARD_HOME"); override != "" {
		return override
	}
	return HomeDirName
}

// Load reads config from HomeDir().
func Load() (Config, error) {
	return LoadFrom(HomeDir())
}

// LoadFrom reads <homeDir>/config.yaml if present, applies environment
// overrides and fills defaults. A missing file is not an error.
func LoadFrom(homeDir string) (Config, error) {
	cfg := defaultConfig()
	cfg.HomeDir = homeDir

	data, err := os.ReadFile(ConfigPath(homeDir))
	switch {
	case err == nil:
		cfg.FromFile = true
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config.yaml: %w", err)
			}
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("read config.yaml: %w", err)
	}

	applyEnvOverrides(&cfg)
	normalize(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if raw := os.Getenv("GOBOARD_DB_PATH"); raw != "" {
		cfg.DBPath = raw
	}
	if raw := os.Getenv("GOBOARD_MIGRATIONS_DIR"); raw != "" {
		cfg.MigrationsDir = raw
	}
	if raw := os.Getenv("GOBOARD_LOG_LEVEL"); raw != "" {
		cfg.LogLevel = raw
	}
	if raw := os.Getenv("GOBOARD_OTEL_ENABLED"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			cfg.OTel.Enabled = v
		}
	}
	if raw := os.Getenv("GOBOARD_OTEL_ENDPOINT"); raw != "" {
		cfg.OTel.Endpoint = raw
	}
}

func normalize(cfg *Config) {
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join(cfg.HomeDir, dbFileName)
	}
	if strings.TrimSpace(cfg.MigrationsDir) == "" {
		if dir, err := migrate.DefaultDir(); err == nil {
			cfg.MigrationsDir = dir
		} else {
			cfg.MigrationsDir = migrate.DirName
		}
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	def := defaultConfig()
	if cfg.Theme.Accent == "" {
		cfg.Theme.Accent = def.Theme.Accent
	}
	if cfg.Theme.Muted == "" {
		cfg.Theme.Muted = def.Theme.Muted
	}
	if cfg.Theme.Selected == "" {
		cfg.Theme.Selected = def.Theme.Selected
	}

	if cfg.OTel.Exporter == "" {
		cfg.OTel.Exporter = def.OTel.Exporter
	}
	if cfg.OTel.ServiceName == "" {
		cfg.OTel.ServiceName = def.OTel.ServiceName
	}
	if cfg.OTel.SampleRate <= 0 || cfg.OTel.SampleRate > 1 {
		cfg.OTel.SampleRate = def.OTel.SampleRate
	}
	if cfg.OTel.Exporter == "file" && cfg.OTel.FilePath == "" {
		cfg.OTel.FilePath = filepath.Join(cfg.HomeDir, "logs", "traces.jsonl")
	}
}

// loadRawConfig reads config.yaml into a generic map, returning an empty map if the file doesn't exist.
func loadRawConfig(path string) (map[string]any, error) {
	raw := make(map[string]any)
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config.yaml: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse config.yaml: %w", err)
		}
	}
	return raw, nil
}

// saveRawConfig marshals and writes a generic map back to config.yaml.
func saveRawConfig(path string, raw map[string]any) error {
	out, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshal config.yaml: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, out, 0o644)
}

// Save writes cfg to <cfg.HomeDir>/config.yaml, replacing any existing file.
func Save(cfg Config) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config.yaml: %w", err)
	}
	if err := os.MkdirAll(cfg.HomeDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(ConfigPath(cfg.HomeDir), out, 0o644)
}

// settable maps dotted keys to a parser for their value.
var settable = map[string]func(string) (any, error){
	"db_path":           asString,
	"migrations_dir":    asString,
	"log_level":         asLogLevel,
	"theme.accent":      asString,
	"theme.muted":       asString,
	"theme.selected":    asString,
	"otel.enabled":      asBool,
	"otel.exporter":     asExporter,
	"otel.endpoint":     asString,
	"otel.file_path":    asString,
	"otel.service_name": asString,
	"otel.sample_rate":  asRate,
}

// Keys lists the keys SetValue accepts.
func Keys() []string {
	keys := make([]string, 0, len(settable))
	for k := range settable {
		keys = append(keys, k)
	}
	return keys
}

// SetValue updates one dotted key in config.yaml, preserving other settings.
func SetValue(homeDir, key, value string) error {
	parse, ok := settable[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	v, err := parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	path := ConfigPath(homeDir)
	raw, err := loadRawConfig(path)
	if err != nil {
		return err
	}
	section, leaf, nested := strings.Cut(key, ".")
	if !nested {
		raw[key] = v
		return saveRawConfig(path, raw)
	}
	sub, _ := raw[section].(map[string]any)
	if sub == nil {
		sub = make(map[string]any)
	}
	sub[leaf] = v
	raw[section] = sub
	return saveRawConfig(path, raw)
}

func asString(s string) (any, error) { return s, nil }

func asBool(s string) (any, error) {
	return strconv.ParseBool(s)
}

func asRate(s string) (any, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if v <= 0 || v > 1 {
		return nil, fmt.Errorf("sample rate %v out of range (0, 1]", v)
	}
	return v, nil
}

func asLogLevel(s string) (any, error) {
	switch lvl := strings.ToLower(strings.TrimSpace(s)); lvl {
	case "debug", "info", "warn", "warning", "error":
		return lvl, nil
	default:
		return nil, fmt.Errorf("unknown log level %q", s)
	}
}

func asExporter(s string) (any, error) {
	switch s {
	case "file", "stdout", "otlp-http", "none":
		return s, nil
	default:
		return nil, fmt.Errorf("unknown exporter %q", s)
	}
}
