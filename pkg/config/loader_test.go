package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port     int    `env:"LOADER_TEST_PORT" envDefault:"8001"`
	Host     string `env:"LOADER_TEST_HOST" envDefault:"localhost"`
	LogLevel string `env:"LOADER_TEST_LOG_LEVEL" envDefault:"info"`
	Debug    bool   `env:"LOADER_TEST_DEBUG" envDefault:"false"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Debug)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("LOADER_TEST_PORT", "9001")
	t.Setenv("LOADER_TEST_HOST", "0.0.0.0")
	t.Setenv("LOADER_TEST_LOG_LEVEL", "debug")
	t.Setenv("LOADER_TEST_DEBUG", "true")

	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Debug)
}

type requiredConfig struct {
	Secret string `env:"LOADER_TEST_SECRET,required"`
}

func TestLoad_RequiredFieldMissing(t *testing.T) {
	var cfg requiredConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_RequiredFieldPresent(t *testing.T) {
	t.Setenv("LOADER_TEST_SECRET", "super-secret-value")

	var cfg requiredConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, "super-secret-value", cfg.Secret)
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("LOADER_TEST_PORT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
