package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoaderConfig holds the ingestion tunables read from orbload.yml.
type LoaderConfig struct {
	EventName       string        `mapstructure:"eventName"`
	IngestBatchSize int           `mapstructure:"ingestBatchSize"`
	RequestTimeout  time.Duration `mapstructure:"requestTimeout"`
	CustomerDomain  string        `mapstructure:"customerDomain"`
	ReplaceExisting bool          `mapstructure:"replaceExisting"`
}

func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		EventName:       "ingest_event",
		IngestBatchSize: 500,
		RequestTimeout:  30 * time.Second,
		CustomerDomain:  "example.com",
		ReplaceExisting: true,
	}
}

// NewLoaderConfig reads orbload.yml when present and falls back to defaults.
func NewLoaderConfig() (LoaderConfig, error) {
	v := viper.New()

	v.SetConfigName("orbload")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/orbload")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ORBLOAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultLoaderConfig()
	v.SetDefault("loader.eventName", defaults.EventName)
	v.SetDefault("loader.ingestBatchSize", defaults.IngestBatchSize)
	v.SetDefault("loader.requestTimeout", defaults.RequestTimeout)
	v.SetDefault("loader.customerDomain", defaults.CustomerDomain)
	v.SetDefault("loader.replaceExisting", defaults.ReplaceExisting)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return LoaderConfig{}, err
		}
	}

	var cfg LoaderConfig
	if err := v.UnmarshalKey("loader", &cfg); err != nil {
		return LoaderConfig{}, err
	}
	if err := validateLoaderConfig(cfg); err != nil {
		return LoaderConfig{}, err
	}

	return cfg, nil
}

func validateLoaderConfig(cfg LoaderConfig) error {
	if strings.TrimSpace(cfg.EventName) == "" {
		return errors.New("loader.eventName cannot be empty")
	}
	if cfg.IngestBatchSize <= 0 {
		return errors.New("loader.ingestBatchSize must be positive")
	}
	if cfg.RequestTimeout <= 0 {
		return errors.New("loader.requestTimeout must be positive")
	}
	return nil
}
