// Package config loads service configuration from file and environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Relay      RelayConfig      `mapstructure:"relay"`
	Processing ProcessingConfig `mapstructure:"processing"`
}

// ServerConfig holds the HTTP listen address.
type ServerConfig struct {
	Host string `mapstructure:"host" validate:"required"`
	Port int    `mapstructure:"port" validate:"required,min=1,max=65535"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// RelayConfig sizes the broadcast relay queues.
type RelayConfig struct {
	// SourceBuffer is the capacity of the upstream event feed.
	SourceBuffer int `mapstructure:"source_buffer" validate:"required,min=1"`
	// SubscriberBuffer is the per-subscriber queue capacity.
	SubscriberBuffer int `mapstructure:"subscriber_buffer" validate:"required,min=1"`
}

// ProcessingConfig tunes the simulated order processing.
type ProcessingConfig struct {
	// Timeout is the cutoff above which a processing draw cancels the order.
	Timeout time.Duration `mapstructure:"timeout" validate:"required"`
	// ClawbackOdds is the 1-in-N chance of a post-execution reversal;
	// zero disables clawbacks.
	ClawbackOdds int `mapstructure:"clawback_odds" validate:"min=0"`
}

// Load reads config.yaml (optional) and FXORDERS_* environment variables,
// applies defaults, and validates the result.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("fxorders")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("relay.source_buffer", 256)
	v.SetDefault("relay.subscriber_buffer", 64)
	v.SetDefault("processing.timeout", time.Second)
	v.SetDefault("processing.clawback_odds", 6)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
