package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Module provides application configuration.
var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewLoaderConfig),
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	OrbAPIKey  string
	OrbBaseURL string

	CSVPath string
}

// ErrMissingAPIKey is returned when no Orb credential is configured.
var ErrMissingAPIKey = errors.New("missing_orb_api_key")

// Load loads configuration from environment variables and a .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "orbload"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		OrbAPIKey:   strings.TrimSpace(getenv("ORB_API_KEY", "")),
		OrbBaseURL:  strings.TrimSpace(getenv("ORB_API_URL", "https://api.withorb.com/v1")),
		CSVPath:     strings.TrimSpace(getenv("CSV_FILE", "")),
	}

	if cfg.OrbAPIKey == "" {
		return Config{}, ErrMissingAPIKey
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
