package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/spectra-red/cpe-discovery/internal/cpe"
)

// Config holds all configuration for the cpefind CLI.
type Config struct {
	NVD     NVDConfig     `mapstructure:"nvd"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Search  SearchConfig  `mapstructure:"search"`
	Ranking RankingConfig `mapstructure:"ranking"`
	Output  OutputConfig  `mapstructure:"output"`
}

// NVDConfig holds NVD API access configuration.
type NVDConfig struct {
	APIKey      string `mapstructure:"apiKey"`
	MinInterval string `mapstructure:"minInterval"`
}

// CacheConfig holds the cache configuration.
type CacheConfig struct {
	TTL string `mapstructure:"ttl"`
}

// SearchConfig holds the narrowing search configuration.
type SearchConfig struct {
	NarrowTarget int `mapstructure:"narrowTarget"`
}

// RankingConfig holds the ranking configuration.
type RankingConfig struct {
	TopN RankingTopN `mapstructure:"topN"`
}

// RankingTopN holds the default and maximum topN.
type RankingTopN struct {
	Default int `mapstructure:"default"`
	Max     int `mapstructure:"max"`
}

// OutputConfig holds output formatting configuration.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// InitConfig initializes configuration from file, environment variables,
// and flags. Configuration precedence: flags > env vars > config file >
// defaults.
func InitConfig(cfgFile string) (*Config, error) {
	setDefaults()

	if cfgFile == "" {
		cfgFile = os.Getenv("CPEFIND_CONFIG")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("unable to find home directory: %w", err)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join(home, ".cpefind"))
		viper.AddConfigPath("/etc/cpefind")

		viper.SetConfigName(".cpefind")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("CPEFIND")
	viper.AutomaticEnv()

	viper.BindEnv("nvd.apiKey", "CPEFIND_NVD_APIKEY")
	viper.BindEnv("nvd.minInterval", "CPEFIND_NVD_MININTERVAL")
	viper.BindEnv("cache.ttl", "CPEFIND_CACHE_TTL")
	viper.BindEnv("search.narrowTarget", "CPEFIND_SEARCH_NARROWTARGET")
	viper.BindEnv("ranking.topN.default", "CPEFIND_RANKING_TOPN_DEFAULT")
	viper.BindEnv("ranking.topN.max", "CPEFIND_RANKING_TOPN_MAX")
	viper.BindEnv("output.format", "CPEFIND_OUTPUT_FORMAT")
	viper.BindEnv("output.color", "CPEFIND_OUTPUT_COLOR")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default values for all configuration options, mirrored
// from cpe.DefaultConfig so the CLI and library defaults never drift.
func setDefaults() {
	defaults := cpe.DefaultConfig()

	viper.SetDefault("nvd.apiKey", "")
	viper.SetDefault("nvd.minInterval", defaults.MinInterval.String())

	viper.SetDefault("cache.ttl", defaults.CacheTTL.String())

	viper.SetDefault("search.narrowTarget", cpe.DefaultNarrowTarget)

	viper.SetDefault("ranking.topN.default", cpe.DefaultTopN)
	viper.SetDefault("ranking.topN.max", cpe.MaxTopN)

	viper.SetDefault("output.format", "table")
	viper.SetDefault("output.color", true)
}

// ValidateConfig validates the configuration.
func ValidateConfig(cfg *Config) error {
	validFormats := map[string]bool{"json": true, "yaml": true, "table": true}
	if !validFormats[cfg.Output.Format] {
		return fmt.Errorf("invalid output format: %s (must be json, yaml, or table)", cfg.Output.Format)
	}
	if cfg.Search.NarrowTarget < 0 {
		return fmt.Errorf("search.narrowTarget cannot be negative")
	}
	if cfg.Ranking.TopN.Max < 0 {
		return fmt.Errorf("ranking.topN.max cannot be negative")
	}
	return nil
}

// ToCpeConfig converts the CLI configuration into a cpe.Config. Weights are
// always the default scoring weights; every other field left unset stays
// zero here (NewPipeline later fills zero fields with defaults).
func (c *Config) ToCpeConfig() (cpe.Config, error) {
	cfg := cpe.Config{
		NVDAPIKey:    c.NVD.APIKey,
		NarrowTarget: c.Search.NarrowTarget,
		MaxTopN:      c.Ranking.TopN.Max,
		Weights:      cpe.DefaultScoringWeights(),
	}

	if c.NVD.MinInterval != "" {
		d, err := time.ParseDuration(c.NVD.MinInterval)
		if err != nil {
			return cpe.Config{}, fmt.Errorf("nvd.minInterval: %w", err)
		}
		cfg.MinInterval = d
	}
	if c.Cache.TTL != "" {
		d, err := time.ParseDuration(c.Cache.TTL)
		if err != nil {
			return cpe.Config{}, fmt.Errorf("cache.ttl: %w", err)
		}
		cfg.CacheTTL = d
	}

	return cfg, nil
}
