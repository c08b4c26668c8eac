// Package config loads application configuration and bootstraps logging.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	HubSpot HubSpotConfig `yaml:"hubspot" mapstructure:"hubspot"`
	Engine  EngineConfig  `yaml:"engine" mapstructure:"engine"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// HubSpotConfig holds CRM API credentials and client tuning.
type HubSpotConfig struct {
	Token       string  `yaml:"token" mapstructure:"token"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// EngineConfig configures the dedupe engine defaults. Strategy and rules can
// be overridden per run from the CLI.
type EngineConfig struct {
	// RulesPath points to an optional YAML rule-set file; empty means the
	// built-in defaults.
	RulesPath string `yaml:"rules_path" mapstructure:"rules_path"`
	// Strategy is the default planning strategy: waterfall, recency or system.
	Strategy string `yaml:"strategy" mapstructure:"strategy"`
	// PacingSecs is the delay observed between merge-sequence calls, on top
	// of the client rate limit.
	PacingSecs float64 `yaml:"pacing_secs" mapstructure:"pacing_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DEDUPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("hubspot.base_url", "https://api.hubapi.com")
	v.SetDefault("hubspot.rate_limit", 10.0)
	v.SetDefault("hubspot.timeout_secs", 15)
	v.SetDefault("engine.strategy", "waterfall")
	v.SetDefault("engine.pacing_secs", 2.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
