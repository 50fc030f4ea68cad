// Package config loads bitfeistel settings from file, environment and
// defaults.
package config

import (
	"errors"
	"fmt"
	"runtime"

	"bitfeistel/pkg/analysis"
	"bitfeistel/pkg/appdir"
	"bitfeistel/pkg/feistel"

	"github.com/spf13/viper"
)

const (
	configName = "bitfeistel"
	envPrefix  = "BITFEISTEL" // BITFEISTEL_SEED_BITS, ...
	dbFileName = "bitfeistel.db"
)

type Config struct {
	SeedBits        int    `mapstructure:"seed_bits"`
	Iterations      int    `mapstructure:"iterations"`
	CollisionKeys   int    `mapstructure:"collision_keys"`
	DiffusionTrials int    `mapstructure:"diffusion_trials"`
	ConfusionTrials int    `mapstructure:"confusion_trials"`
	CompressBlocks  int    `mapstructure:"compress_blocks"`
	Workers         int    `mapstructure:"workers"`
	DBFile          string `mapstructure:"db_file"` // empty means ~/.bitfeistel/bitfeistel.db
	APIListenAddr   string `mapstructure:"api_listen_address"`
	LogLevel        string `mapstructure:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		SeedBits:        16,
		Iterations:      1000,
		CollisionKeys:   500,
		DiffusionTrials: 100,
		ConfusionTrials: 100,
		CompressBlocks:  1024,
		Workers:         runtime.NumCPU(),
		APIListenAddr:   ":7780",
		LogLevel:        "info",
	}
}

// LoadConfig reads file if given, otherwise looks for bitfeistel.yaml in the
// usual places. Environment variables override the file. A missing default
// config file is not an error; a missing explicit one is.
func LoadConfig(file string) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()

	// Every key needs a default for AutomaticEnv to reach Unmarshal.
	v.SetDefault("seed_bits", cfg.SeedBits)
	v.SetDefault("iterations", cfg.Iterations)
	v.SetDefault("collision_keys", cfg.CollisionKeys)
	v.SetDefault("diffusion_trials", cfg.DiffusionTrials)
	v.SetDefault("confusion_trials", cfg.ConfusionTrials)
	v.SetDefault("compress_blocks", cfg.CompressBlocks)
	v.SetDefault("workers", cfg.Workers)
	v.SetDefault("db_file", cfg.DBFile)
	v.SetDefault("api_listen_address", cfg.APIListenAddr)
	v.SetDefault("log_level", cfg.LogLevel)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.bitfeistel")
		v.AddConfigPath("/etc/bitfeistel/")
	}
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: failed to read config: %w", err)
		}
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode config: %w", err)
	}
	return cfg, nil
}

// Validate checks the analysis settings. Workers below one are treated as one.
func (c *Config) Validate() error {
	if c.SeedBits < feistel.MinSeedBits {
		return fmt.Errorf("config: seed_bits must be at least %d, got %d", feistel.MinSeedBits, c.SeedBits)
	}
	return c.AnalysisOptions().Validate()
}

// AnalysisOptions maps the config onto harness options using crypto/rand.
func (c *Config) AnalysisOptions() *analysis.Options {
	opts := analysis.DefaultOptions()
	opts.SeedBits = c.SeedBits
	opts.Iterations = c.Iterations
	opts.CollisionKeys = c.CollisionKeys
	opts.DiffusionTrials = c.DiffusionTrials
	opts.ConfusionTrials = c.ConfusionTrials
	opts.CompressBlocks = c.CompressBlocks
	opts.Workers = c.Workers
	return opts
}

// DatabasePath returns DBFile or the default file in the data directory.
func (c *Config) DatabasePath() (string, error) {
	if c.DBFile != "" {
		return c.DBFile, nil
	}
	return appdir.Path(dbFileName)
}
