package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	def := DefaultConfig()
	assert.Equal(t, def.SeedBits, cfg.SeedBits)
	assert.Equal(t, def.Iterations, cfg.Iterations)
	assert.Equal(t, def.APIListenAddr, cfg.APIListenAddr)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "custom.yaml")
	content := "seed_bits: 8\niterations: 10\ndb_file: /tmp/x.db\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	t.Setenv("BITFEISTEL_ITERATIONS", "42")

	cfg, err := LoadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.SeedBits)
	assert.Equal(t, 42, cfg.Iterations)
	assert.Equal(t, "debug", cfg.LogLevel)

	p, err := cfg.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", p)

	opts := cfg.AnalysisOptions()
	assert.Equal(t, 32, opts.BlockBits())
	assert.Equal(t, 42, opts.Iterations)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SeedBits = 3
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.DiffusionTrials = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.SeedBits = 13 // 26-bit halves cannot be permuted
	assert.Error(t, cfg.Validate())
}
