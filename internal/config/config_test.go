package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	t.Setenv(HomeEnv, t.TempDir())
	for _, k := range []string{"PROMPTCRAFT_PROVIDER", "PROMPTCRAFT_MODEL", "PROMPTCRAFT_API_KEY", "PROMPTCRAFT_BASE_URL", "PROMPTCRAFT_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	s, err := NewFileStore()
	require.NoError(t, err)
	return s
}

func TestConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)

	got, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	path, err := HistoryPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "history.db"), path)
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	s := newStore(t)

	cfg, err := s.Load()
	require.NoError(t, err)
	assert.False(t, s.Exists())
	assert.False(t, cfg.Loaded())
	assert.Equal(t, DefaultConfig().Provider, cfg.Provider)
	assert.Equal(t, DefaultSettings(), cfg.Settings)
	assert.True(t, cfg.NeedsSetup())
}

func TestSaveAndLoad(t *testing.T) {
	s := newStore(t)

	cfg := DefaultConfig()
	cfg.SetAPIKey("AIza-test-key-123456")
	cfg.Settings.Language = LangEN
	cfg.Settings.Theme = ThemeDark
	cfg.ToggleFavorite("upscale-image")
	require.NoError(t, s.Save(cfg))

	info, err := os.Stat(s.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := s.Load()
	require.NoError(t, err)
	assert.True(t, got.Loaded())
	assert.Equal(t, "AIza-test-key-123456", got.APIKey)
	assert.Equal(t, LangEN, got.Settings.Language)
	assert.Equal(t, ThemeDark, got.Settings.Theme)
	assert.True(t, got.IsFavorite("upscale-image"))
	assert.False(t, got.NeedsSetup())
}

func TestLoadMergesOverDefaults(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path), 0755))
	require.NoError(t, os.WriteFile(s.Path, []byte("provider: openai\nsettings:\n  language: en\n  theme: neon\n"), 0600))

	cfg, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, LangEN, cfg.Settings.Language)
	assert.Equal(t, ThemeLight, cfg.Settings.Theme, "unknown theme falls back")
	assert.Equal(t, OutputText, cfg.Settings.DefaultOutput)
	assert.True(t, cfg.Settings.HighlightAI)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path), 0755))
	require.NoError(t, os.WriteFile(s.Path, []byte("provider: [\n"), 0600))

	_, err := s.Load()
	assert.Error(t, err)
}

func TestEnvOverridesAreNotSaved(t *testing.T) {
	s := newStore(t)

	cfg := DefaultConfig()
	cfg.SetAPIKey("file-key-0000000000")
	require.NoError(t, s.Save(cfg))

	t.Setenv("PROMPTCRAFT_API_KEY", "env-key-1111111111")
	t.Setenv("PROMPTCRAFT_MODEL", "gemini-2.5-pro")

	got, err := s.Load()
	require.NoError(t, err)
	assert.True(t, got.FromEnv())
	assert.Equal(t, "env-key-1111111111", got.APIKey)
	assert.Equal(t, "gemini-2.5-pro", got.Model)

	got.Settings.Language = LangEN
	got.Model = "gemini-2.0-flash"
	require.NoError(t, s.Save(got))

	data, err := os.ReadFile(s.Path)
	require.NoError(t, err)
	var onDisk Config
	require.NoError(t, yaml.Unmarshal(data, &onDisk))
	assert.Equal(t, "file-key-0000000000", onDisk.APIKey)
	assert.Equal(t, "gemini-2.0-flash", onDisk.Model, "edited value is kept")
	assert.Equal(t, LangEN, onDisk.Settings.Language)
}

func TestToggleFavorite(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.ToggleFavorite("a"))
	assert.True(t, cfg.ToggleFavorite("b"))
	assert.False(t, cfg.ToggleFavorite("a"))
	assert.Equal(t, []string{"b"}, cfg.Settings.Favorites)
	assert.False(t, cfg.IsFavorite("a"))
	assert.True(t, cfg.IsFavorite("b"))
}

func TestMaskedAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", ""},
		{"short", "********"},
		{"AIzaSyD-abcdefgh-XYZ9", "AIza…XYZ9"},
	}
	for _, tt := range tests {
		cfg := &Config{APIKey: tt.key}
		assert.Equal(t, tt.want, cfg.MaskedAPIKey())
	}

	cfg := &Config{APIKey: "something"}
	cfg.ClearAPIKey()
	assert.False(t, cfg.HasAPIKey())
}

func TestProviders(t *testing.T) {
	p := GetProvider("gemini")
	require.NotNil(t, p)
	assert.True(t, p.NeedsAPIKey)
	assert.Contains(t, p.Models, p.DefaultModel)

	assert.Nil(t, GetProvider("nope"))
	assert.Equal(t, 0, ProviderIndex("nope"))
	assert.Equal(t, "ollama", Providers[ProviderIndex("ollama")].ID)

	cfg := &Config{Provider: "ollama"}
	assert.False(t, cfg.NeedsSetup())
}
