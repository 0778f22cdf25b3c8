// Package config collects the application's environment configuration.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/vayuair/vayuair/internal/cache"
)

// Config holds everything the app reads from the environment.
type Config struct {
	// AQICNToken is the WAQI API token. Required for the station feed;
	// without it only the model-based provider is available.
	AQICNToken string

	// GeminiAPIKey enables the assistant. Optional.
	GeminiAPIKey string

	// GeminiModel overrides the assistant model.
	GeminiModel string

	// AQICNBaseURL and OpenMeteoBaseURL override upstream endpoints,
	// mainly for tests.
	AQICNBaseURL     string
	OpenMeteoBaseURL string

	// CachePath is the SQLite cache file. Empty selects the in-memory
	// store.
	CachePath string

	// AQITTL is the snapshot cache lifetime.
	AQITTL time.Duration

	// AssistantTTL is the generated advice cache lifetime.
	AssistantTTL time.Duration

	// DefaultCity is shown when no location is given.
	DefaultCity string

	// Language is the assistant response language code.
	Language string

	// Environment is the deployment environment name.
	Environment string

	// OTLPEndpoint receives traces and metrics when telemetry is on.
	OTLPEndpoint string

	// TelemetryEnabled turns the OTLP exporters on.
	TelemetryEnabled bool
}

// FromEnv reads configuration from the environment, applying defaults
// for everything optional.
func FromEnv() Config {
	return Config{
		AQICNToken:       os.Getenv("AQICN_TOKEN"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      os.Getenv("GEMINI_MODEL"),
		AQICNBaseURL:     os.Getenv("AQICN_BASE_URL"),
		OpenMeteoBaseURL: os.Getenv("OPENMETEO_BASE_URL"),
		CachePath:        os.Getenv("CACHE_PATH"),
		AQITTL:           durationEnv("AQI_CACHE_TTL", cache.DefaultAQITTL),
		AssistantTTL:     durationEnv("ASSISTANT_CACHE_TTL", cache.DefaultAssistantTTL),
		DefaultCity:      stringEnv("DEFAULT_CITY", "pune"),
		Language:         stringEnv("APP_LANGUAGE", "en"),
		Environment:      stringEnv("APP_ENV", "development"),
		OTLPEndpoint:     stringEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TelemetryEnabled: os.Getenv("OTEL_ENABLED") == "true",
	}
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
		return time.Duration(minutes) * time.Minute
	}
	return fallback
}
