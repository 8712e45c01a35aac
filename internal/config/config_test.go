package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "xlsx", cfg.Dataset.Source)
	assert.Equal(t, "dataset_esg_sem_2015.xlsx", cfg.Dataset.Path)
	assert.Equal(t, "esg_records", cfg.Dataset.Table)
	assert.Equal(t, 250_000, cfg.Dataset.MaxRows)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 120, cfg.Server.SessionTTLMins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ESGDASH_DATASET_SOURCE", "sqlite")
	t.Setenv("ESGDASH_DATASET_PATH", "/tmp/esg.db")
	t.Setenv("ESGDASH_SERVER_PORT", "9090")
	t.Setenv("ESGDASH_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Dataset.Source)
	assert.Equal(t, "/tmp/esg.db", cfg.Dataset.Path)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "not-a-level"})
	assert.Error(t, err)
}
