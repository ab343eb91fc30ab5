// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger      LoggerConfig      `mapstructure:"logger" yaml:"logger"`
	ScanService ScanServiceConfig `mapstructure:"scan_service" yaml:"scan_service"`
	Insight     InsightConfig     `mapstructure:"insight" yaml:"insight"`
	Progress    ProgressConfig    `mapstructure:"progress" yaml:"progress"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// ScanServiceConfig points at the external reconnaissance backend.
type ScanServiceConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// InsightConfig configures the generative-language service used for the
// post-scan security summary. Endpoint overrides the default model URL,
// which is mainly useful in tests.
type InsightConfig struct {
	Model       string        `mapstructure:"model" yaml:"model"`
	APIKey      string        `mapstructure:"api_key" yaml:"-"`
	Endpoint    string        `mapstructure:"endpoint" yaml:"endpoint"`
	APITimeout  time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	Temperature float32       `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// ProgressConfig tunes the cosmetic scan progress indicator. It is purely
// decorative and not tied to real request progress.
type ProgressConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval" yaml:"tick_interval"`
	Step         int           `mapstructure:"step" yaml:"step"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "recongraph")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Scan Service --
	v.SetDefault("scan_service.base_url", "http://localhost:8000")
	v.SetDefault("scan_service.timeout", "90s")

	// -- Insight --
	v.SetDefault("insight.model", "gemini-2.5-flash")
	v.SetDefault("insight.api_timeout", "60s")
	v.SetDefault("insight.temperature", 0.4)
	v.SetDefault("insight.max_tokens", 2048)

	// -- Progress --
	v.SetDefault("progress.tick_interval", "500ms")
	v.SetDefault("progress.step", 10)
}

// NewDefaultConfig creates a configuration struct populated with defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with defaults only, but fail loudly if it does.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	// Bind environment variables for sensitive data.
	v.BindEnv("insight.api_key", "RECONGRAPH_INSIGHT_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.ScanService.BaseURL == "" {
		return fmt.Errorf("scan_service.base_url is a required configuration field")
	}
	if c.ScanService.Timeout <= 0 {
		return fmt.Errorf("scan_service.timeout must be a positive duration")
	}
	if c.Progress.Step <= 0 {
		return fmt.Errorf("progress.step must be a positive integer")
	}
	if c.Progress.TickInterval <= 0 {
		return fmt.Errorf("progress.tick_interval must be a positive duration")
	}
	return nil
}
