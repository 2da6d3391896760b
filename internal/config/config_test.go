package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromYamlFile_Success(t *testing.T) {
	path := writeConfig(t, `
shm:
  base_key: 1314148400
  read_retries: 5
  retry_interval: 2ms

output:
  timezone: "UTC"

logging:
  level: "debug"
  format: "json"

metrics:
  textfile_path: "/var/lib/node_exporter/shm.prom"
  namespace: "chrony"
`)

	cfg, err := LoadFromYamlFile(path)

	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, DefaultBaseKey, cfg.SHM.BaseKey)
	assert.Equal(t, 5, cfg.SHM.ReadRetries)
	assert.Equal(t, 2*time.Millisecond, cfg.SHM.RetryInterval)
	assert.Equal(t, "UTC", cfg.Output.Timezone)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, "/var/lib/node_exporter/shm.prom", cfg.Metrics.TextfilePath)
	assert.Equal(t, "chrony", cfg.Metrics.Namespace)
	assert.Equal(t, "shm", cfg.Metrics.Subsystem)
}

func TestLoadFromYamlFile_FileNotFound(t *testing.T) {
	cfg, err := LoadFromYamlFile("/nonexistent/config.yaml")

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadFromYamlFile_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "shm:\n  read_retries: [\n    invalid")

	cfg, err := LoadFromYamlFile(path)

	assert.Error(t, err)
	assert.Nil(t, cfg)
	if err != nil {
		assert.Contains(t, err.Error(), "failed to parse")
	}
}

func TestLoadFromYamlFile_ValidationError(t *testing.T) {
	path := writeConfig(t, `
shm:
  read_retries: 500
`)

	cfg, err := LoadFromYamlFile(path)

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "read_retries")
}

func TestLoadFromEnvVarsOnly_Defaults(t *testing.T) {
	cfg, err := LoadFromEnvVarsOnly()

	require.NoError(t, err)
	assert.Equal(t, DefaultBaseKey, cfg.SHM.BaseKey)
	assert.Equal(t, DefaultReadRetries, cfg.SHM.ReadRetries)
	assert.Equal(t, time.Duration(0), cfg.SHM.RetryInterval)
	assert.Equal(t, "Local", cfg.Output.Timezone)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Empty(t, cfg.Metrics.TextfilePath)
}

func TestLoadFromEnvVarsOnly_Overrides(t *testing.T) {
	t.Setenv("SHMTIME_BASE_KEY", "0x12340000")
	t.Setenv("SHMTIME_READ_RETRIES", "7")
	t.Setenv("SHMTIME_RETRY_INTERVAL", "500us")
	t.Setenv("SHMTIME_TIMEZONE", "UTC")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("METRICS_TEXTFILE", "/tmp/shm.prom")
	t.Setenv("METRICS_SUBSYSTEM", "refclock")

	cfg, err := LoadFromEnvVarsOnly()

	require.NoError(t, err)
	assert.Equal(t, uint32(0x12340000), cfg.SHM.BaseKey)
	assert.Equal(t, 7, cfg.SHM.ReadRetries)
	assert.Equal(t, 500*time.Microsecond, cfg.SHM.RetryInterval)
	assert.Equal(t, "UTC", cfg.Output.Timezone)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/tmp/shm.prom", cfg.Metrics.TextfilePath)
	assert.Equal(t, "refclock", cfg.Metrics.Subsystem)
}

func TestLoadFromEnvVarsOnly_MalformedValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad_key", "SHMTIME_BASE_KEY", "NTP0"},
		{"key_overflow", "SHMTIME_BASE_KEY", "0x1ffffffff"},
		{"bad_retries", "SHMTIME_READ_RETRIES", "three"},
		{"bad_interval", "SHMTIME_RETRY_INTERVAL", "soon"},
		{"bad_timezone", "SHMTIME_TIMEZONE", "Mars/Olympus_Mons"},
		{"bad_level", "LOG_LEVEL", "verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			cfg, err := LoadFromEnvVarsOnly()

			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoadFromYamlWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
shm:
  read_retries: 5
logging:
  level: info
`)
	t.Setenv("SHMTIME_READ_RETRIES", "9")

	cfg, err := LoadFromYamlWithEnvOverrides(path)

	require.NoError(t, err)
	assert.Equal(t, 9, cfg.SHM.ReadRetries)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_UsesConfigFileEnv(t *testing.T) {
	path := writeConfig(t, `
output:
  timezone: UTC
`)
	t.Setenv(ConfigFileEnv, path)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "UTC", cfg.Output.Timezone)
}

func TestLoad_MissingConfigFileIsAnError(t *testing.T) {
	t.Setenv(ConfigFileEnv, "/nonexistent/shmtime.yaml")

	cfg, err := Load()

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		input   string
		want    uint32
		wantErr bool
	}{
		{"0x4e545030", DefaultBaseKey, false},
		{"1314148400", DefaultBaseKey, false},
		{" 0x10 ", 16, false},
		{"-1", 0, true},
		{"", 0, true},
		{"0x100000000", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKey(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutputConfig_Location(t *testing.T) {
	loc, err := OutputConfig{Timezone: "local"}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = OutputConfig{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = OutputConfig{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoad_ZeroReadRetriesIsKept(t *testing.T) {
	t.Run("env", func(t *testing.T) {
		t.Setenv("SHMTIME_READ_RETRIES", "0")

		cfg, err := LoadFromEnvVarsOnly()

		require.NoError(t, err)
		assert.Equal(t, 0, cfg.SHM.ReadRetries)
	})

	t.Run("yaml", func(t *testing.T) {
		path := writeConfig(t, "shm:\n  read_retries: 0\n")

		cfg, err := LoadFromYamlFile(path)

		require.NoError(t, err)
		assert.Equal(t, 0, cfg.SHM.ReadRetries)
	})

	t.Run("yaml without shm section keeps default", func(t *testing.T) {
		path := writeConfig(t, "logging:\n  level: info\n")

		cfg, err := LoadFromYamlFile(path)

		require.NoError(t, err)
		assert.Equal(t, DefaultReadRetries, cfg.SHM.ReadRetries)
	})
}
