// Package config loads application configuration from file and
// environment and initializes the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `mapstructure:"store"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Scorer    ScorerConfig    `mapstructure:"scorer"`
	Signal    SignalConfig    `mapstructure:"signal"`
	Batch     BatchConfig     `mapstructure:"batch"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
}

// StoreConfig configures the result store backend.
type StoreConfig struct {
	Driver      string `mapstructure:"driver"` // "sqlite" or "postgres"
	DatabaseURL string `mapstructure:"database_url"`
}

// AnthropicConfig holds Anthropic API settings for the delegated scorer.
type AnthropicConfig struct {
	Key       string `mapstructure:"key"`
	Model     string `mapstructure:"model"`
	MaxTokens int64  `mapstructure:"max_tokens"`
}

// ScorerConfig configures scoring strategy selection and thresholds.
type ScorerConfig struct {
	Strategy           string  `mapstructure:"strategy"` // "heuristic" or "delegated"
	PassThreshold      float64 `mapstructure:"pass_threshold"`
	MinCallSpacingSecs float64 `mapstructure:"min_call_spacing_secs"`
	ItemTimeoutSecs    int     `mapstructure:"item_timeout_secs"`
}

// MinCallSpacing returns the minimum delay between consecutive delegated
// scorer calls.
func (c ScorerConfig) MinCallSpacing() time.Duration {
	return time.Duration(c.MinCallSpacingSecs * float64(time.Second))
}

// ItemTimeout returns the per-conversation scoring timeout.
func (c ScorerConfig) ItemTimeout() time.Duration {
	return time.Duration(c.ItemTimeoutSecs) * time.Second
}

// SignalConfig configures signal extraction.
type SignalConfig struct {
	// ComplexityVariant selects the active complexity formula
	// ("lexical" or "domain"). A deployment picks one; batches never mix
	// variants.
	ComplexityVariant string `mapstructure:"complexity_variant"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrent int `mapstructure:"max_concurrent"`
	TimeoutSecs   int `mapstructure:"timeout_secs"`
}

// Timeout returns the whole-batch wall-clock timeout.
func (c BatchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// ServerConfig configures the dashboard API server.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CONVOEVAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "convoeval.db")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("scorer.strategy", "heuristic")
	v.SetDefault("scorer.pass_threshold", 75.0)
	v.SetDefault("scorer.min_call_spacing_secs", 0.5)
	v.SetDefault("scorer.item_timeout_secs", 30)
	v.SetDefault("signal.complexity_variant", "lexical")
	v.SetDefault("batch.max_concurrent", 4)
	v.SetDefault("batch.timeout_secs", 120)
	v.SetDefault("server.port", 8080)
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
