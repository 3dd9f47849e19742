package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Server  ServerConfig
	Scraper ScraperConfig
}

type ServerConfig struct {
	Port int
}

type ScraperConfig struct {
	TimeoutSeconds     int
	Workers            int
	MaxRetries         int
	RetryBackoffMillis int
	UserAgent          string
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvInt("PORT", 8084),
		},
		Scraper: ScraperConfig{
			TimeoutSeconds:     getEnvInt("SCRAPER_TIMEOUT", 10),
			Workers:            getEnvInt("SCRAPER_WORKERS", 5),
			MaxRetries:         getEnvInt("SCRAPER_MAX_RETRIES", 2),
			RetryBackoffMillis: getEnvInt("SCRAPER_RETRY_BACKOFF_MS", 500),
			UserAgent:          getEnv("SCRAPER_USER_AGENT", defaultUserAgent),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Scraper.TimeoutSeconds <= 0 {
		return fmt.Errorf("scraper timeout must be positive")
	}

	if c.Scraper.Workers < 1 {
		return fmt.Errorf("at least 1 concurrent worker is required")
	}

	if c.Scraper.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	if c.Scraper.RetryBackoffMillis < 0 {
		return fmt.Errorf("retry backoff cannot be negative")
	}

	if c.Scraper.UserAgent == "" {
		return fmt.Errorf("user agent is required")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
