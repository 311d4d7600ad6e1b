package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig_Defaults(t *testing.T) {
	viper.Reset()

	cfg, err := InitConfig("")
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "6s", cfg.NVD.MinInterval)
	assert.Equal(t, "5m0s", cfg.Cache.TTL)
	assert.Equal(t, 10, cfg.Search.NarrowTarget)
	assert.Equal(t, 5, cfg.Ranking.TopN.Default)
	assert.Equal(t, 20, cfg.Ranking.TopN.Max)
	assert.Equal(t, "table", cfg.Output.Format)
	assert.True(t, cfg.Output.Color)
	assert.Empty(t, cfg.NVD.APIKey)
}

func TestInitConfig_FromFile(t *testing.T) {
	viper.Reset()

	tmpDir := t.TempDir()
	cfgFile := filepath.Join(tmpDir, ".cpefind.yaml")

	configContent := `
nvd:
  apiKey: test-key
  minInterval: 600ms

search:
  narrowTarget: 15

output:
  format: yaml
  color: false
`

	err := os.WriteFile(cfgFile, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := InitConfig(cfgFile)
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "test-key", cfg.NVD.APIKey)
	assert.Equal(t, "600ms", cfg.NVD.MinInterval)
	assert.Equal(t, 15, cfg.Search.NarrowTarget)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.False(t, cfg.Output.Color)
}

func TestInitConfig_EnvVarsOverride(t *testing.T) {
	viper.Reset()

	os.Setenv("CPEFIND_NVD_APIKEY", "env-key")
	os.Setenv("CPEFIND_OUTPUT_FORMAT", "json")
	defer func() {
		os.Unsetenv("CPEFIND_NVD_APIKEY")
		os.Unsetenv("CPEFIND_OUTPUT_FORMAT")
	}()

	cfg, err := InitConfig("")
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "env-key", cfg.NVD.APIKey)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestValidateConfig_Valid(t *testing.T) {
	cfg := &Config{
		Output: OutputConfig{Format: "json", Color: true},
	}

	err := ValidateConfig(cfg)
	assert.NoError(t, err)
}

func TestValidateConfig_InvalidOutputFormat(t *testing.T) {
	cfg := &Config{
		Output: OutputConfig{Format: "invalid"},
	}

	err := ValidateConfig(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestValidateConfig_NegativeNarrowTarget(t *testing.T) {
	cfg := &Config{
		Output: OutputConfig{Format: "table"},
		Search: SearchConfig{NarrowTarget: -1},
	}

	err := ValidateConfig(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "narrowTarget")
}

func TestConfigPrecedence(t *testing.T) {
	viper.Reset()

	tmpDir := t.TempDir()
	cfgFile := filepath.Join(tmpDir, ".cpefind.yaml")

	configContent := `
nvd:
  apiKey: file-key
search:
  narrowTarget: 15
`

	err := os.WriteFile(cfgFile, []byte(configContent), 0644)
	require.NoError(t, err)

	os.Setenv("CPEFIND_NVD_APIKEY", "env-key")
	defer os.Unsetenv("CPEFIND_NVD_APIKEY")

	cfg, err := InitConfig(cfgFile)
	require.NoError(t, err)

	// Environment variable should win over the config file.
	assert.Equal(t, "env-key", cfg.NVD.APIKey)
	// File value should be used where no env var is set.
	assert.Equal(t, 15, cfg.Search.NarrowTarget)
}

func TestToCpeConfig(t *testing.T) {
	cli := &Config{
		NVD:     NVDConfig{APIKey: "k", MinInterval: "1s"},
		Cache:   CacheConfig{TTL: "2m"},
		Search:  SearchConfig{NarrowTarget: 7},
		Ranking: RankingConfig{TopN: RankingTopN{Default: 5, Max: 12}},
	}

	cfg, err := cli.ToCpeConfig()
	require.NoError(t, err)
	assert.Equal(t, "k", cfg.NVDAPIKey)
	assert.Equal(t, 7, cfg.NarrowTarget)
	assert.Equal(t, 12, cfg.MaxTopN)
}

func TestToCpeConfig_InvalidDuration(t *testing.T) {
	cli := &Config{NVD: NVDConfig{MinInterval: "not-a-duration"}}

	_, err := cli.ToCpeConfig()
	assert.Error(t, err)
}
