package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	config, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", config.LogLevel)
	assert.Equal(t, "memory://", config.DatabaseURL)
	assert.Equal(t, 9091, config.Server.Port)
	assert.Equal(t, "gochannel", config.EventBus.Type)
	assert.Equal(t, 100*time.Millisecond, config.Executor.StepDelay)
	assert.True(t, config.Scheduler.Enabled)
	assert.Equal(t, time.Minute, config.Scheduler.Interval)
	assert.False(t, config.Tracing.Enabled)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
database_url: sqlite:///tmp/migromat.db
server:
  port: 8080
executor:
  step_delay: 250ms
event_bus:
  type: kafka
  kafka_brokers: localhost:9092
`), 0o600))

	t.Setenv("MIGROMAT_SERVER_PORT", "7070")
	t.Setenv("MIGROMAT_SCHEDULER_ENABLED", "false")

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, "sqlite:///tmp/migromat.db", config.DatabaseURL)
	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, 250*time.Millisecond, config.Executor.StepDelay)
	assert.Equal(t, "kafka", config.EventBus.Type)
	assert.Equal(t, "localhost:9092", config.EventBus.KafkaBrokers)
	assert.False(t, config.Scheduler.Enabled)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
