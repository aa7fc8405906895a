// Package config loads runtime configuration and initializes logging.
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
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Recovery RecoveryConfig `yaml:"recovery" mapstructure:"recovery"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// RecoveryConfig tunes the recovery pass. Keywords select candidate
// pages from the full source; FallbackPages is how many leading pages
// to take when no keyword hits.
type RecoveryConfig struct {
	Keywords      []string `yaml:"keywords" mapstructure:"keywords"`
	FallbackPages int      `yaml:"fallback_pages" mapstructure:"fallback_pages"`
}

// DefaultRecoveryKeywords mark pages likely to carry the critical
// fields: pricing, unit counts, NOI, the unit mix, and the address block.
var DefaultRecoveryKeywords = []string{
	"pricing",
	"price",
	"units",
	"unit mix",
	"rent roll",
	"net operating income",
	"noi",
	"operating summary",
	"address",
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("UNDERWRITING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("recovery.keywords", DefaultRecoveryKeywords)
	v.SetDefault("recovery.fallback_pages", 3)

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

// Default returns the built-in configuration without touching the
// filesystem or environment. Used by callers embedding the pipeline as
// a library.
func Default() *Config {
	return &Config{
		Log:      LogConfig{Level: "info", Format: "json"},
		Recovery: RecoveryConfig{Keywords: DefaultRecoveryKeywords, FallbackPages: 3},
	}
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
