package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	AppName     = "snaplist"
	EnvFileName = "config.env"
)

// Config holds all external configuration. It is loaded once in main and
// passed down explicitly; library code never reads the environment.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `envconfig:"SNAPLIST_ADDR" default:":8080"`

	// VisionAPIKey is mandatory: without it no listing can be generated and
	// requests fail with a server configuration error.
	VisionAPIKey string `envconfig:"VISION_API_KEY"`

	// VisionBaseURL overrides the vision service endpoint, mainly for tests.
	VisionBaseURL string `envconfig:"VISION_BASE_URL"`

	// GeminiAPIKey is optional: when empty the deterministic generator
	// handles every request.
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`

	// DBPath enables the SQLite listing history and vision cache when set.
	DBPath string `envconfig:"SNAPLIST_DB_PATH"`
}

// LoadEnvFile loads environment variables from the config file in the user's
// config directory, then from a .env in the working directory. Errors are
// ignored since neither file may exist.
func LoadEnvFile() {
	if configBase, err := os.UserConfigDir(); err == nil {
		_ = godotenv.Load(filepath.Join(configBase, AppName, EnvFileName))
	}
	_ = godotenv.Load()
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return &cfg, nil
}
