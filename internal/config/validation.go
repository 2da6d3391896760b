package config

import (
	"errors"
	"strconv"
	"time"
)

// MaxReadRetries caps shm.read_retries
const MaxReadRetries = 100

// MaxRetryInterval caps shm.retry_interval
const MaxRetryInterval = time.Second

// Validate checks if the configuration is valid
func Validate(cfg *Config) error {
	if err := validateSHM(&cfg.SHM); err != nil {
		return err
	}

	if err := validateOutput(&cfg.Output); err != nil {
		return err
	}

	if err := validateLogging(&cfg.Logging); err != nil {
		return err
	}

	if err := validateMetrics(&cfg.Metrics); err != nil {
		return err
	}

	return nil
}

func validateSHM(cfg *SHMConfig) error {
	if cfg.ReadRetries < 0 || cfg.ReadRetries > MaxReadRetries {
		return errors.New("read_retries must be between 0 and " + strconv.Itoa(MaxReadRetries) + ", got " + strconv.Itoa(cfg.ReadRetries))
	}

	if cfg.RetryInterval < 0 || cfg.RetryInterval > MaxRetryInterval {
		return errors.New("retry_interval must be between 0s and 1s")
	}

	return nil
}

func validateOutput(cfg *OutputConfig) error {
	if _, err := cfg.Location(); err != nil {
		return errors.New("invalid timezone " + strconv.Quote(cfg.Timezone) + ": " + err.Error())
	}

	return nil
}

func validateLogging(cfg *LoggingConfig) error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
		"panic": true,
	}

	if !validLevels[cfg.Level] {
		return errors.New("invalid log level (must be trace, debug, info, warn, error, fatal, or panic)")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[cfg.Format] {
		return errors.New("invalid log format (must be json or console)")
	}

	if cfg.Output == "stdout" {
		return errors.New("log output cannot be stdout (reserved for sample output)")
	}

	if cfg.EnableFile && cfg.FilePath == "" {
		return errors.New("file_path is required when enable_file is true")
	}

	return nil
}

func validateMetrics(cfg *MetricsConfig) error {
	if cfg.TextfilePath != "" && cfg.Namespace == "" {
		return errors.New("namespace is required when textfile_path is set")
	}

	return nil
}
