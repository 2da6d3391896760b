// Package config provides configuration loading with explicit naming
//
// Available functions:
//
//   LoadFromEnvVarsOnly()                     - Environment variables ONLY
//
//   LoadFromYamlFile(path)                    - YAML file ONLY (no env overrides)
//
//   LoadFromYamlWithEnvOverrides(path)        - YAML base + Environment overrides
//                                               Priority: Env Vars > YAML > Defaults
//
// Environment variables supported:
//
//   SHM:
//     - SHMTIME_BASE_KEY (hex with 0x prefix, or decimal)
//     - SHMTIME_READ_RETRIES, SHMTIME_RETRY_INTERVAL
//
//   OUTPUT:
//     - SHMTIME_TIMEZONE (IANA name or "Local")
//
//   LOGGING:
//     - LOG_LEVEL (trace|debug|info|warn|error|fatal|panic)
//     - LOG_FORMAT (json|console), LOG_ENABLE_FILE, LOG_FILE_PATH
//
//   METRICS:
//     - METRICS_TEXTFILE, METRICS_NAMESPACE, METRICS_SUBSYSTEM
//
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/maximewewer/shmtime-reader/pkg/logger"
)

// ConfigFileEnv names the environment variable holding an optional YAML file path
const ConfigFileEnv = "SHMTIME_CONFIG"

// Config represents the complete application configuration
type Config struct {
	SHM     SHMConfig     `yaml:"shm"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// SHMConfig contains shared memory reader configuration
type SHMConfig struct {
	BaseKey       uint32        `yaml:"base_key"`
	ReadRetries   int           `yaml:"read_retries"`
	RetryInterval time.Duration `yaml:"retry_interval"`
}

// OutputConfig contains report rendering configuration
type OutputConfig struct {
	Timezone string `yaml:"timezone"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	EnableFile bool   `yaml:"enable_file"`
	FilePath   string `yaml:"file_path"`
}

// MetricsConfig contains Prometheus textfile export configuration
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path"`
	Namespace    string `yaml:"namespace"`
	Subsystem    string `yaml:"subsystem"`
}

// Location resolves the configured timezone
func (c OutputConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Load picks the loader based on SHMTIME_CONFIG.
func Load() (*Config, error) {
	if path := os.Getenv(ConfigFileEnv); path != "" {
		return LoadFromYamlWithEnvOverrides(path)
	}
	return LoadFromEnvVarsOnly()
}

// LoadFromYamlFile reads configuration from a YAML file only (no env var overrides)
func LoadFromYamlFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config file %s: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed for %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromYamlWithEnvOverrides loads base config from YAML, then overrides with environment variables
// Priority: Environment Variables > YAML File > Defaults
func LoadFromYamlWithEnvOverrides(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config file %s: %w", path, err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	logger.SafeDebug("config", "Configuration loaded", map[string]interface{}{
		"path": path,
	})

	return cfg, nil
}

// LoadFromEnvVarsOnly loads configuration from environment variables only (no YAML file)
// Priority: Environment Variables > Defaults
func LoadFromEnvVarsOnly() (*Config, error) {
	cfg := DefaultConfig()

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("environment configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to an existing config.
// Unlike the YAML path, a malformed numeric value is an error rather than ignored.
func applyEnvOverrides(cfg *Config) error {
	// ---------------------------------------------------------------------------
	// SHM - Segment reader configuration
	// ---------------------------------------------------------------------------
	if baseKey := os.Getenv("SHMTIME_BASE_KEY"); baseKey != "" {
		k, err := ParseKey(baseKey)
		if err != nil {
			return fmt.Errorf("SHMTIME_BASE_KEY: %w", err)
		}
		cfg.SHM.BaseKey = k
	}
	if retries := os.Getenv("SHMTIME_READ_RETRIES"); retries != "" {
		r, err := strconv.Atoi(retries)
		if err != nil {
			return fmt.Errorf("SHMTIME_READ_RETRIES: %w", err)
		}
		cfg.SHM.ReadRetries = r
	}
	if interval := os.Getenv("SHMTIME_RETRY_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return fmt.Errorf("SHMTIME_RETRY_INTERVAL: %w", err)
		}
		cfg.SHM.RetryInterval = d
	}

	// ---------------------------------------------------------------------------
	// OUTPUT - Report rendering
	// ---------------------------------------------------------------------------
	if tz := os.Getenv("SHMTIME_TIMEZONE"); tz != "" {
		cfg.Output.Timezone = tz
	}

	// ---------------------------------------------------------------------------
	// LOGGING - Logging configuration
	// ---------------------------------------------------------------------------
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Logging.Format = strings.ToLower(format)
	}
	if enableFile := os.Getenv("LOG_ENABLE_FILE"); enableFile != "" {
		if b, err := strconv.ParseBool(enableFile); err == nil {
			cfg.Logging.EnableFile = b
		}
	}
	if filePath := os.Getenv("LOG_FILE_PATH"); filePath != "" {
		cfg.Logging.FilePath = filePath
	}

	// ---------------------------------------------------------------------------
	// METRICS - Prometheus textfile export
	// ---------------------------------------------------------------------------
	if textfile := os.Getenv("METRICS_TEXTFILE"); textfile != "" {
		cfg.Metrics.TextfilePath = textfile
	}
	if namespace := os.Getenv("METRICS_NAMESPACE"); namespace != "" {
		cfg.Metrics.Namespace = namespace
	}
	if subsystem := os.Getenv("METRICS_SUBSYSTEM"); subsystem != "" {
		cfg.Metrics.Subsystem = subsystem
	}

	return nil
}

// ParseKey parses a SysV IPC key given in hex (0x prefix) or decimal
func ParseKey(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid shm key %q: %w", s, err)
	}
	return uint32(v), nil
}
