package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/amosWeiskopf/wpaudit/pkg/utils"
)

// Config holds all application configuration
type Config struct {
	// Backend analysis service
	Backend BackendConfig `mapstructure:"backend"`

	// Stage selection
	Analysis AnalysisConfig `mapstructure:"analysis"`

	// Export and persistence
	Export ExportConfig `mapstructure:"export"`

	// Credentials for the audited site
	Credentials CredentialsConfig `mapstructure:"credentials"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// BackendConfig holds the analysis backend connection settings
type BackendConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"` // 0 disables the per-call timeout
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	UserAgent         string        `mapstructure:"user_agent"`
}

// AnalysisConfig toggles optional stages
type AnalysisConfig struct {
	Lighthouse      bool `mapstructure:"lighthouse"`
	PreflightRobots bool `mapstructure:"preflight_robots"`

	// Advice thresholds
	SlowResponseMs float64 `mapstructure:"slow_response_ms"`
	TLSWarningDays int     `mapstructure:"tls_warning_days"`
}

// ExportConfig holds export settings
type ExportConfig struct {
	CSVSource string `mapstructure:"csv_source"` // "backend" or "local"
	OutputDir string `mapstructure:"output_dir"`
}

// CredentialsConfig holds the basic-auth credentials of the audited site
type CredentialsConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "structured" or "console"
}

const (
	CSVSourceBackend = "backend"
	CSVSourceLocal   = "local"

	envPrefix = "WPAUDIT"
)

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.wpaudit")
	}

	setDefaults(v)
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error, we'll use defaults and env
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	loadFromEnv(&config)

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.base_url", "http://127.0.0.1:5000")
	v.SetDefault("backend.timeout", "0s")
	v.SetDefault("backend.requests_per_second", 0)
	v.SetDefault("backend.user_agent", "wpaudit/1.0")

	v.SetDefault("analysis.lighthouse", true)
	v.SetDefault("analysis.preflight_robots", false)
	v.SetDefault("analysis.slow_response_ms", 1000)
	v.SetDefault("analysis.tls_warning_days", 15)

	v.SetDefault("export.csv_source", CSVSourceBackend)
	v.SetDefault("export.output_dir", ".")

	v.SetDefault("credentials.username", "")
	v.SetDefault("credentials.password", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// bindEnvVars binds environment variables
func bindEnvVars(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// loadFromEnv picks up the short credential variables
func loadFromEnv(config *Config) {
	if username := os.Getenv(envPrefix + "_USERNAME"); username != "" {
		config.Credentials.Username = username
	}
	if password := os.Getenv(envPrefix + "_PASSWORD"); password != "" {
		config.Credentials.Password = password
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if !utils.IsValidURL(c.Backend.BaseURL) {
		return fmt.Errorf("backend.base_url must be an absolute http(s) URL, got %q", c.Backend.BaseURL)
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("backend.timeout must not be negative")
	}
	if c.Backend.RequestsPerSecond < 0 {
		return fmt.Errorf("backend.requests_per_second must not be negative")
	}
	if c.Analysis.SlowResponseMs <= 0 {
		return fmt.Errorf("analysis.slow_response_ms must be positive")
	}
	if c.Analysis.TLSWarningDays < 0 {
		return fmt.Errorf("analysis.tls_warning_days must not be negative")
	}
	switch c.Export.CSVSource {
	case CSVSourceBackend, CSVSourceLocal:
	default:
		return fmt.Errorf("export.csv_source must be %q or %q, got %q", CSVSourceBackend, CSVSourceLocal, c.Export.CSVSource)
	}
	return nil
}
