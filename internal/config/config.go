package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// HomeEnv overrides the config directory.
const HomeEnv = "PROMPTCRAFT_HOME"

const (
	ThemeLight = "light"
	ThemeDark  = "dark"

	LangVI = "vi"
	LangEN = "en"

	OutputText = "text"
	OutputJSON = "json"
)

type Config struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key,omitempty"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`

	// RepairJSON lets generation fix malformed JSON from the model before
	// giving up on a response.
	RepairJSON bool `yaml:"repair_json,omitempty"`

	Settings Settings `yaml:"settings"`

	// file holds the on-disk values of fields replaced by the environment.
	file     overrides
	fromEnv  overrides
	loadedOK bool
}

// Settings are the user preferences edited in the settings view.
type Settings struct {
	Theme         string   `yaml:"theme"`
	Language      string   `yaml:"language"`
	DefaultOutput string   `yaml:"default_output"`
	HighlightAI   bool     `yaml:"highlight_ai"`
	Favorites     []string `yaml:"favorites,omitempty"`
}

// overrides are the fields that can come from the environment.
type overrides struct {
	Provider string `env:"PROMPTCRAFT_PROVIDER"`
	Model    string `env:"PROMPTCRAFT_MODEL"`
	APIKey   string `env:"PROMPTCRAFT_API_KEY"`
	BaseURL  string `env:"PROMPTCRAFT_BASE_URL"`
	LogLevel string `env:"PROMPTCRAFT_LOG_LEVEL"`
}

func DefaultSettings() Settings {
	return Settings{
		Theme:         ThemeLight,
		Language:      LangVI,
		DefaultOutput: OutputText,
		HighlightAI:   true,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Provider: "gemini",
		Model:    "gemini-2.5-flash",
		LogLevel: "warn",
		Settings: DefaultSettings(),
	}
}

// ConfigDir is $PROMPTCRAFT_HOME, or ~/.config/promptcraft.
func ConfigDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "promptcraft"), nil
}

func ConfigPath() (string, error) {
	return inConfigDir("config.yaml")
}

// LogPath is where the application log is written.
func LogPath() (string, error) {
	return inConfigDir("promptcraft.log")
}

// HistoryPath is the SQLite database holding generation history.
func HistoryPath() (string, error) {
	return inConfigDir("history.db")
}

// TemplatesDir holds user-defined template YAML files.
func TemplatesDir() (string, error) {
	return inConfigDir("templates")
}

func inConfigDir(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// Store loads and persists configuration.
type Store interface {
	Load() (*Config, error)
	Save(*Config) error
}

// FileStore keeps the configuration in a YAML file.
type FileStore struct {
	Path string
}

// NewFileStore returns a store for config.yaml in the config directory.
func NewFileStore() (*FileStore, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return &FileStore{Path: path}, nil
}

// Exists reports whether a config file has been saved.
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}

// Load reads the file over the defaults and applies environment overrides.
// A missing file yields the defaults.
func (s *FileStore) Load() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(s.Path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", s.Path, err)
		}
		cfg.loadedOK = true
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	cfg.Settings.normalize()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes c to disk with owner-only permissions. Values that came from
// the environment are not persisted unless they were changed since Load.
func (s *FileStore) Save(c *Config) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return err
	}

	out := *c
	out.restoreFileValues()
	data, err := yaml.Marshal(&out)
	if err != nil {
		return err
	}

	return os.WriteFile(s.Path, data, 0600)
}

func (c *Config) applyEnv() error {
	var o overrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}

	c.fromEnv = o
	apply := func(dst, file *string, val string) {
		if val == "" {
			return
		}
		*file = *dst
		*dst = val
	}
	apply(&c.Provider, &c.file.Provider, o.Provider)
	apply(&c.Model, &c.file.Model, o.Model)
	apply(&c.APIKey, &c.file.APIKey, o.APIKey)
	apply(&c.BaseURL, &c.file.BaseURL, o.BaseURL)
	apply(&c.LogLevel, &c.file.LogLevel, o.LogLevel)
	return nil
}

func (c *Config) restoreFileValues() {
	restore := func(dst *string, file, env string) {
		if env != "" && *dst == env {
			*dst = file
		}
	}
	restore(&c.Provider, c.file.Provider, c.fromEnv.Provider)
	restore(&c.Model, c.file.Model, c.fromEnv.Model)
	restore(&c.APIKey, c.file.APIKey, c.fromEnv.APIKey)
	restore(&c.BaseURL, c.file.BaseURL, c.fromEnv.BaseURL)
	restore(&c.LogLevel, c.file.LogLevel, c.fromEnv.LogLevel)
}

// normalize resets unknown enumerated values to their defaults.
func (s *Settings) normalize() {
	d := DefaultSettings()
	if s.Theme != ThemeLight && s.Theme != ThemeDark {
		s.Theme = d.Theme
	}
	if s.Language != LangVI && s.Language != LangEN {
		s.Language = d.Language
	}
	if s.DefaultOutput != OutputText && s.DefaultOutput != OutputJSON {
		s.DefaultOutput = d.DefaultOutput
	}
}

// IsFavorite reports whether the template id is starred.
func (c *Config) IsFavorite(id string) bool {
	return slices.Contains(c.Settings.Favorites, id)
}

// ToggleFavorite stars or unstars a template and reports the new state.
func (c *Config) ToggleFavorite(id string) bool {
	if i := slices.Index(c.Settings.Favorites, id); i >= 0 {
		c.Settings.Favorites = slices.Delete(c.Settings.Favorites, i, i+1)
		return false
	}
	c.Settings.Favorites = append(c.Settings.Favorites, id)
	return true
}

func (c *Config) SetAPIKey(key string) {
	c.APIKey = key
}

func (c *Config) ClearAPIKey() {
	c.APIKey = ""
}

// HasAPIKey reports whether a key is configured.
func (c *Config) HasAPIKey() bool {
	return c.APIKey != ""
}

// MaskedAPIKey shows the first and last four characters of the key.
func (c *Config) MaskedAPIKey() string {
	k := c.APIKey
	switch {
	case k == "":
		return ""
	case len(k) <= 8:
		return "********"
	}
	return k[:4] + "…" + k[len(k)-4:]
}

// NeedsSetup reports whether the selected provider still lacks a key.
func (c *Config) NeedsSetup() bool {
	p := GetProvider(c.Provider)
	if p == nil {
		return true
	}
	return p.NeedsAPIKey && c.APIKey == ""
}

// FromEnv reports whether any setting is currently overridden by the
// environment.
func (c *Config) FromEnv() bool {
	return c.fromEnv != overrides{}
}

// Loaded reports whether the values came from a saved file.
func (c *Config) Loaded() bool {
	return c.loadedOK
}
