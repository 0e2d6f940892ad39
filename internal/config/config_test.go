package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, cfg.ProjectID)
	assert.Equal(t, "firebase-credentials.json", cfg.CredentialsFile)
	assert.Equal(t, "data.json", cfg.DataFile)
	assert.Equal(t, "schedules", cfg.SchedulesDir)
	assert.Equal(t, []string{"esports_lounge", "esports_arena", "it_service_center"}, cfg.Workplaces)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"project_id: scheduler-test\nworkplaces:\n  - front_desk\nlog_level: debug\n",
	), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "scheduler-test", cfg.ProjectID)
	assert.Equal(t, []string{"front_desk"}, cfg.Workplaces)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "data.json", cfg.DataFile, "unset keys keep their defaults")
}

func TestLoadExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_file: elsewhere.json\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "elsewhere.json", cfg.DataFile)
}

func TestLoadExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SCHEDULER_PROJECT_ID", "from-env")
	t.Setenv("SCHEDULER_LOG_FORMAT", "text")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.ProjectID)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestStoreAvailable(t *testing.T) {
	dir := t.TempDir()
	credentials := filepath.Join(dir, "key.json")

	cfg := &Config{ProjectID: "p", CredentialsFile: credentials}
	assert.False(t, cfg.StoreAvailable(), "credentials file does not exist yet")

	require.NoError(t, os.WriteFile(credentials, []byte("{}"), 0o600))
	assert.True(t, cfg.StoreAvailable())

	cfg.ProjectID = ""
	assert.False(t, cfg.StoreAvailable(), "no project means no cloud store")
}
