package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// DataDir is where run CSV files are written and read from.
	DataDir string `envconfig:"DATA_DIR" default:"data"`

	// Headless controls whether Chrome runs without a visible window.
	Headless bool `envconfig:"HEADLESS" default:"true"`

	// BaseURL is the storefront the scraper targets.
	BaseURL string `envconfig:"BASE_URL" default:"https://www.flipkart.com"`

	UserAgent string `envconfig:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"`

	// NavTimeout bounds a single page navigation.
	NavTimeout time.Duration `envconfig:"NAV_TIMEOUT" default:"15s"`

	// ResultsWait bounds the condition wait for product cards to render.
	// Expiry is treated as a zero-result page, not an error.
	ResultsWait time.Duration `envconfig:"RESULTS_WAIT" default:"5s"`

	// RateLimit is the politeness interval between page turns on one domain.
	RateLimit time.Duration `envconfig:"RATE_LIMIT" default:"2s"`

	// MaxPages caps pagination per run.
	MaxPages int `envconfig:"MAX_PAGES" default:"1"`

	// ListenAddr is the dashboard bind address.
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`
}

// Load processes environment variables and populates the Config struct.
func Load() (*Config, error) {
	// Try to load .env first. In production the vars are usually injected
	// directly, so a missing file is not an error.
	if err := godotenv.Load(); err != nil {
		if _, statErr := os.Stat(".env"); statErr == nil {
			log.Printf("Warning: .env file found but could not be loaded: %v", err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
