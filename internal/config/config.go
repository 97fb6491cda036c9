// Package config handles application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Port    int
	BaseURL string

	// Database
	DatabaseURL string

	// Authentication
	AdminAPIKey      string // env-configured admin key, bypasses the database entirely
	DefaultRateLimit int    // requests per hour for keys without a custom limit

	// Cache
	CacheTTLDays int

	// Scraping politeness
	ScrapeDelay       time.Duration // pause after each review-site request
	ScrapeConcurrency int64         // max simultaneous review-site requests (process-wide)

	// Upstream endpoints (overridable for testing)
	ReviewSiteBaseURL string
	SPARQLEndpoint    string

	// CORS
	CORSOrigins []string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		DatabaseURL: getEnv("DATABASE_URL", "file:screenery.db?_journal=WAL&_timeout=5000"),

		AdminAPIKey:      getEnv("ADMIN_API_KEY", ""),
		DefaultRateLimit: getEnvInt("DEFAULT_RATE_LIMIT", 500),

		CacheTTLDays: getEnvInt("CACHE_TTL_DAYS", 7),

		ScrapeDelay:       getEnvDuration("SCRAPE_DELAY", 1*time.Second),
		ScrapeConcurrency: int64(getEnvInt("SCRAPE_CONCURRENCY", 1)),

		ReviewSiteBaseURL: getEnv("REVIEW_SITE_BASE_URL", "https://www.rottentomatoes.com"),
		SPARQLEndpoint:    getEnv("SPARQL_ENDPOINT", "https://query.wikidata.org/sparql"),

		CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"*"}),
	}

	if cfg.CacheTTLDays < 1 {
		return nil, fmt.Errorf("CACHE_TTL_DAYS must be at least 1, got %d", cfg.CacheTTLDays)
	}
	if cfg.ScrapeConcurrency < 1 {
		return nil, fmt.Errorf("SCRAPE_CONCURRENCY must be at least 1, got %d", cfg.ScrapeConcurrency)
	}
	if cfg.DefaultRateLimit < 1 {
		return nil, fmt.Errorf("DEFAULT_RATE_LIMIT must be at least 1, got %d", cfg.DefaultRateLimit)
	}

	return cfg, nil
}

// CacheTTL returns the cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLDays) * 24 * time.Hour
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
