package config

import (
	"fmt"
	"strconv"
	"time"
)

const (
	defaultHost             = "0.0.0.0"
	defaultPort             = 8443
	defaultTranslateURL     = "https://translation.googleapis.com/language/translate/v2"
	defaultTranslateTarget  = "en"
	defaultTranslateReferer = "https://tw.defrag.racing"
	defaultTranslateTimeout = 10 * time.Second
)

type Config struct {
	AppEnv string
	Host   string
	Port   int

	// Translation boundary. An empty API key disables outbound translation
	// calls; requests are logged and dropped.
	TranslateAPIKey   string
	TranslateURL      string
	TranslateTarget   string
	TranslateReferer  string
	TranslateTimeout  time.Duration
	TranslateCacheMax int

	// Persistence. RedisURL selects the Redis-backed store; otherwise
	// records live as JSON files under DataDir.
	DataDir  string
	RedisURL string

	LogLevel  string
	LogFormat string
}

type getenvFunc func(key string) string

// Load reads configuration from the environment. Host and port may be
// overridden afterwards by command-line flags.
func Load(getenv getenvFunc) (*Config, error) {
	cfg := &Config{
		AppEnv:            withDefault(getenv, "APP_ENV", "development"),
		Host:              withDefault(getenv, "HOST", defaultHost),
		TranslateAPIKey:   getenv("GOOGLE_TRANSLATE_API_KEY"),
		TranslateURL:      withDefault(getenv, "TRANSLATE_URL", defaultTranslateURL),
		TranslateTarget:   withDefault(getenv, "TRANSLATE_TARGET", defaultTranslateTarget),
		TranslateReferer:  withDefault(getenv, "TRANSLATE_REFERER", defaultTranslateReferer),
		TranslateTimeout:  defaultTranslateTimeout,
		TranslateCacheMax: 500,
		DataDir:           withDefault(getenv, "DATA_DIR", "."),
		RedisURL:          getenv("REDIS_URL"),
		LogLevel:          withDefault(getenv, "LOG_LEVEL", "info"),
		LogFormat:         withDefault(getenv, "LOG_FORMAT", "text"),
	}

	port := withDefault(getenv, "PORT", strconv.Itoa(defaultPort))
	p, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("PORT must be a number, got %q", port)
	}
	cfg.Port = p

	if v := getenv("TRANSLATE_CACHE_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("TRANSLATE_CACHE_MAX must be a positive number, got %q", v)
		}
		cfg.TranslateCacheMax = n
	}

	return cfg, nil
}

func withDefault(getenv getenvFunc, key, defaultValue string) string {
	if value := getenv(key); value != "" {
		return value
	}
	return defaultValue
}
