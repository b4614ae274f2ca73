// Package config reads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Env      string
	Port     string
	LogLevel string

	DatabaseURL string
	RedisURL    string
	CacheTTL    time.Duration

	SessionKey string
	Timezone   string
	// FetchWorkers bounds concurrent activity lookups per scoring request.
	FetchWorkers   int
	ActivitySource string

	StravaClientID     string
	StravaClientSecret string
	StravaRedirectURI  string
	StravaCallbackURI  string
	StravaVerifyToken  string
	StateToken         string
}

// Load reads the configuration, falling back to defaults for unset or
// malformed values.
func Load() Config {
	return Config{
		Env:                os.Getenv("ENV"),
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		CacheTTL:           getEnvDuration("CACHE_TTL", 15*time.Minute),
		SessionKey:         os.Getenv("SESSION_KEY"),
		Timezone:           getEnv("TIMEZONE", "America/Los_Angeles"),
		FetchWorkers:       getEnvInt("FETCH_WORKERS", 8),
		ActivitySource:     getEnv("ACTIVITY_SOURCE", "database"),
		StravaClientID:     os.Getenv("STRAVA_CLIENT_ID"),
		StravaClientSecret: os.Getenv("STRAVA_CLIENT_SECRET"),
		StravaRedirectURI:  os.Getenv("STRAVA_REDIRECT_URI"),
		StravaCallbackURI:  os.Getenv("STRAVA_CALLBACK_URI"),
		StravaVerifyToken:  os.Getenv("STRAVA_VERIFY_TOKEN"),
		StateToken:         os.Getenv("STATE_TOKEN"),
	}
}

// Location loads the reference time zone used for interval keys.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
