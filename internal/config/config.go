package config

import (
	"net/url"
	"strings"

	"coinhub/pkg/logger"

	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

type Config struct {
	AppEnv   string
	HTTPAddr string
	LogLevel string
	SiteURL  string

	CoinGeckoBaseURL         string
	CoinGeckoAPIKey          string
	CoinGeckoTimeoutSecs     int
	CoinGeckoMaxAttempts     int
	CoinGeckoRateLimitPerMin int

	CacheBackend     string
	RedisURL         string
	CacheTTLSecs     int
	OHLCCacheTTLSecs int
	CacheWarmSecs    int

	OpenAIAPIKey           string
	OpenAIModel            string
	PredictionMarketsLimit int

	TracingEnabled bool
	OTLPEndpoint   string
}

// IsDevelopment reports whether debug details may be exposed in responses.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv != EnvProduction
}

// CoinGeckoDemoPlan reports whether the configured base URL is the public
// demo host, which authenticates with a query parameter instead of a header.
func (c *Config) CoinGeckoDemoPlan() bool {
	return IsDemoBaseURL(c.CoinGeckoBaseURL)
}

func IsDemoBaseURL(baseURL string) bool {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Hostname(), "api.coingecko.com")
}

// NormalizeAppEnv maps a raw APP_ENV value to a supported environment. An
// empty value means development; anything unrecognised is treated as
// production and reported with ok=false.
func NormalizeAppEnv(raw string) (env string, ok bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", EnvDevelopment:
		return EnvDevelopment, true
	case EnvProduction:
		return EnvProduction, true
	default:
		return EnvProduction, false
	}
}

func Load() *Config {
	v := viper.New()
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("SITE_URL", "http://localhost:8080")
	v.SetDefault("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3")
	v.SetDefault("CACHE_BACKEND", CacheBackendMemory)
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("TRACING_ENABLED", true)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	v.AutomaticEnv()

	cfg := &Config{
		AppEnv:           strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV"))),
		HTTPAddr:         strings.TrimSpace(v.GetString("HTTP_ADDR")),
		LogLevel:         strings.TrimSpace(v.GetString("LOG_LEVEL")),
		SiteURL:          strings.TrimRight(strings.TrimSpace(v.GetString("SITE_URL")), "/"),
		CoinGeckoBaseURL: strings.TrimRight(strings.TrimSpace(v.GetString("COINGECKO_BASE_URL")), "/"),
		CoinGeckoAPIKey:  strings.TrimSpace(v.GetString("COINGECKO_API_KEY")),
		CacheBackend:     strings.ToLower(strings.TrimSpace(v.GetString("CACHE_BACKEND"))),
		RedisURL:         strings.TrimSpace(v.GetString("REDIS_URL")),
		OpenAIAPIKey:     strings.TrimSpace(v.GetString("OPENAI_API_KEY")),
		OpenAIModel:      strings.TrimSpace(v.GetString("OPENAI_MODEL")),
		TracingEnabled:   v.GetBool("TRACING_ENABLED"),
		OTLPEndpoint:     strings.TrimSpace(v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT")),
	}

	if env, ok := NormalizeAppEnv(cfg.AppEnv); ok {
		cfg.AppEnv = env
	} else {
		logger.Warn("unsupported APP_ENV, defaulting to production", "app_env", cfg.AppEnv)
		cfg.AppEnv = env
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.SiteURL == "" {
		cfg.SiteURL = "http://localhost:8080"
	}
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	if cfg.CoinGeckoBaseURL == "" {
		logger.Warn("COINGECKO_BASE_URL empty, defaulting to public API")
		cfg.CoinGeckoBaseURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.CoinGeckoAPIKey == "" {
		logger.Warn("COINGECKO_API_KEY not set, upstream requests will be unauthenticated")
	}
	if cfg.OpenAIAPIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, AI predictions will be disabled")
	}

	if cfg.CacheBackend != CacheBackendMemory && cfg.CacheBackend != CacheBackendRedis {
		logger.Warn("unsupported CACHE_BACKEND, defaulting to memory", "cache_backend", cfg.CacheBackend)
		cfg.CacheBackend = CacheBackendMemory
	}
	if cfg.CacheBackend == CacheBackendRedis && cfg.RedisURL == "" {
		logger.Warn("REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	cfg.CoinGeckoTimeoutSecs = positiveInt(v, "COINGECKO_TIMEOUT_SECS", 10)
	cfg.CoinGeckoMaxAttempts = positiveInt(v, "COINGECKO_MAX_ATTEMPTS", 3)
	cfg.CoinGeckoRateLimitPerMin = nonNegativeInt(v, "COINGECKO_RATE_LIMIT_PER_MIN", 30)
	cfg.CacheTTLSecs = positiveInt(v, "CACHE_TTL_SECS", 300)
	cfg.OHLCCacheTTLSecs = positiveInt(v, "OHLC_CACHE_TTL_SECS", 120)
	cfg.CacheWarmSecs = nonNegativeInt(v, "CACHE_WARM_SECS", 240)
	cfg.PredictionMarketsLimit = positiveInt(v, "PREDICTION_MARKETS_LIMIT", 6)

	return cfg
}

// positiveInt reads key as an int, falling back to def when unset or not > 0.
func positiveInt(v *viper.Viper, key string, def int) int {
	if strings.TrimSpace(v.GetString(key)) == "" {
		return def
	}
	if n := v.GetInt(key); n > 0 {
		return n
	}
	return def
}

func nonNegativeInt(v *viper.Viper, key string, def int) int {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return def
	}
	if raw == "0" {
		return 0
	}
	if n := v.GetInt(key); n > 0 {
		return n
	}
	return def
}
