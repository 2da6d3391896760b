package config

// DefaultBaseKey is the ntpd SHM driver key for unit 0 ("NTP0")
const DefaultBaseKey uint32 = 0x4e545030

// DefaultReadRetries bounds the count-guarded re-reads
const DefaultReadRetries = 3

// ApplyDefaults sets default values for unspecified configuration fields.
// ReadRetries is left alone since zero is a valid setting; loaders seed it
// through DefaultConfig before decoding.
func ApplyDefaults(cfg *Config) {
	// SHM defaults
	if cfg.SHM.BaseKey == 0 {
		cfg.SHM.BaseKey = DefaultBaseKey
	}

	// Output defaults
	if cfg.Output.Timezone == "" {
		cfg.Output.Timezone = "Local"
	}

	// Logging defaults (stdout is reserved for the sample)
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "warn"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
	if cfg.Logging.EnableFile && cfg.Logging.FilePath != "" {
		cfg.Logging.Output = "file"
	}

	// Metrics defaults
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "ntp"
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = "shm"
	}
}

// DefaultConfig returns a configuration with all defaults applied
func DefaultConfig() *Config {
	cfg := &Config{
		SHM: SHMConfig{ReadRetries: DefaultReadRetries},
	}
	ApplyDefaults(cfg)
	return cfg
}
