package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSave_AndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := DefaultConfig()
	cfg.Cuts = 12
	cfg.Runs = 8
	cfg.TempReduction = 0.99
	cfg.LogLevel = "debug"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"runs": 3}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Runs)
	assert.Equal(t, DefaultConfig().K, cfg.K)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := DefaultConfig()
	cfg.Runs = 3
	cfg.K = 5
	require.NoError(t, Save(path, cfg))

	t.Setenv("SLICEFLOOR_RUNS", "7")
	t.Setenv("SLICEFLOOR_TEMP_REDUCTION", "0.5")
	t.Setenv("SLICEFLOOR_LOG_LEVEL", "warn")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Runs)
	assert.Equal(t, 0.5, loaded.TempReduction)
	assert.Equal(t, 5, loaded.K, "unset variables keep the file value")

	level, err := loaded.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	_, err := Load(bad)
	assert.Error(t, err)

	t.Setenv("SLICEFLOOR_RUNS", "many")
	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"width":     func(c *Config) { c.Width = 0 },
		"cuts":      func(c *Config) { c.Cuts = -1 },
		"level":     func(c *Config) { c.LogLevel = "loud" },
		"reduction": func(c *Config) { c.TempReduction = 2 },
	} {
		c := DefaultConfig()
		mutate(&c)
		assert.Error(t, c.Validate(), name)
	}
	assert.NoError(t, DefaultConfig().Validate())
}

func TestConfig_Anneal(t *testing.T) {
	c := DefaultConfig()
	c.Seed = 42
	c.Workers = 3

	a := c.Anneal()
	assert.Equal(t, int64(42), a.Seed)
	assert.Equal(t, 3, a.Workers)
	assert.Equal(t, c.Stages, a.Stages)
}
