package config

// Default configuration values.
const (
	DefaultBaseDir      = "."
	DefaultOutputFormat = "text"
	DefaultCharset      = "UTF-8"
)

// applyDefaults fills in default values for unset configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.BaseDir == "" {
		cfg.BaseDir = DefaultBaseDir
	}
	applyOutputDefaults(cfg)
	applyFiltersDefaults(cfg)
}

func applyOutputDefaults(cfg *Config) {
	if cfg.Output == nil {
		cfg.Output = &OutputConfig{}
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = DefaultOutputFormat
	}
}

func applyFiltersDefaults(cfg *Config) {
	if cfg.Filters == nil {
		cfg.Filters = &FiltersConfig{}
	}
	if cfg.Filters.Charset == "" {
		cfg.Filters.Charset = DefaultCharset
	}
}

// Default returns a configuration with all defaults applied and no report
// patterns, used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
