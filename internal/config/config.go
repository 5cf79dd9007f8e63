// Package config loads application configuration from file and environment
// and owns global logger setup.
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
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Ledger  LedgerConfig  `yaml:"ledger" mapstructure:"ledger"`
	Refdata RefdataConfig `yaml:"refdata" mapstructure:"refdata"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Train   TrainConfig   `yaml:"train" mapstructure:"train"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// LedgerConfig configures the local run ledger.
type LedgerConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// RefdataConfig configures access to the internal SQL reference extract.
type RefdataConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Query       string `yaml:"query" mapstructure:"query"`
}

// ExtractConfig configures the HTML extraction stage.
type ExtractConfig struct {
	Carrier       string `yaml:"carrier" mapstructure:"carrier"`
	ProgressEvery int    `yaml:"progress_every" mapstructure:"progress_every"`
}

// TrainConfig configures classifier training.
type TrainConfig struct {
	Trees int `yaml:"trees" mapstructure:"trees"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ELIG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("ledger.path", "eligibility.db")
	v.SetDefault("extract.carrier", "metlife")
	v.SetDefault("extract.progress_every", 1000)
	v.SetDefault("train.trees", 1000)
	v.SetDefault("refdata.query", "SELECT * FROM reporting.eligibility_extract")

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
