package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"coinhub/internal/cache"
	"coinhub/internal/config"
	"coinhub/internal/handler"
	"coinhub/internal/job"
	"coinhub/internal/metrics"
	"coinhub/internal/prediction"
	"coinhub/internal/provider"
	"coinhub/internal/service"
	"coinhub/pkg/logger"
	"coinhub/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "coinhub/docs"
)

const shutdownTimeout = 5 * time.Second

var (
	loadEnvFunc        = godotenv.Load
	loadConfigFunc     = config.Load
	initLoggerFunc     = logger.Init
	initTracerFunc     = tracing.InitTracer
	newRedisClientFunc = func(ctx context.Context, url string) (*redis.Client, error) {
		return cache.NewRedisClient(ctx, url)
	}
	newMarketProviderFunc = func(tracer trace.Tracer, cfg *config.Config, rec provider.Recorder) service.MarketProvider {
		return provider.NewCoinGeckoProvider(tracer, provider.Options{
			BaseURL:         cfg.CoinGeckoBaseURL,
			APIKey:          cfg.CoinGeckoAPIKey,
			DemoPlan:        cfg.CoinGeckoDemoPlan(),
			Timeout:         time.Duration(cfg.CoinGeckoTimeoutSecs) * time.Second,
			MaxAttempts:     cfg.CoinGeckoMaxAttempts,
			RateLimitPerMin: cfg.CoinGeckoRateLimitPerMin,
			Recorder:        rec,
			LogRequests:     cfg.IsDevelopment(),
		})
	}
	newLLMClientFunc = func(apiKey string) prediction.LLMClient {
		return prediction.NewOpenAIClient(apiKey)
	}
	startWarmerFunc        = func(w *job.CacheWarmer, ctx context.Context) { go w.Start(ctx) }
	newRouterFunc          = gin.New
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
	exitFunc               = os.Exit
)

// @title           CoinHub API
// @version         1.0
// @description     Cached cryptocurrency market data and generated prediction markets.

// @host      localhost:8080
// @BasePath  /
func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = loadEnvFunc()

	// The logger comes up before config so that config warnings are kept.
	if err := initLoggerFunc(loggerConfigFromEnv()); err != nil {
		logger.Error("failed to initialize logger", err)
	}
	defer logger.Sync()

	cfg := loadConfigFunc()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx, tracing.Options{
		Enabled:  cfg.TracingEnabled,
		Endpoint: cfg.OTLPEndpoint,
	})
	if err != nil {
		logger.Error("failed to initialize tracer", err)
		exitFunc(1)
		return
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Error("error shutting down tracer provider", err)
		}
	}()

	m := metrics.New("")

	store, closeStore := buildStore(ctx, cfg)
	defer closeStore()

	marketProvider := newMarketProviderFunc(tracer, cfg, m)
	marketService := service.NewMarketService(tracer, marketProvider, store, service.MarketServiceOptions{
		TTL:      time.Duration(cfg.CacheTTLSecs) * time.Second,
		OHLCTTL:  time.Duration(cfg.OHLCCacheTTLSecs) * time.Second,
		Recorder: m,
	})

	generator := prediction.NewGenerator(tracer, newLLMClientFunc(cfg.OpenAIAPIKey), prediction.Options{
		Model:    cfg.OpenAIModel,
		Limit:    cfg.PredictionMarketsLimit,
		Recorder: m,
	})

	// Background cache warmer, stopped by ctx cancel
	warmer := job.NewCacheWarmer(tracer, marketService, cfg.CacheWarmSecs, m)
	startWarmerFunc(warmer, ctx)

	h, err := handler.New(tracer, marketService, generator, handler.Options{
		SiteURL:      cfg.SiteURL,
		ErrorDetails: cfg.IsDevelopment(),
		Recorder:     m,
	})
	if err != nil {
		logger.Error("failed to build handlers", err)
		exitFunc(1)
		return
	}

	r := newRouterFunc()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(tracing.DefaultServiceName))

	h.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(m.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := startHTTPServerFunc(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", err)
			exitFunc(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	logger.Info("shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", err)
	}

	logger.Info("server exiting")
}

// buildStore picks the cache backend. An unreachable Redis falls back to
// the in-process store so the site keeps serving.
func loggerConfigFromEnv() logger.Config {
	env, _ := config.NormalizeAppEnv(os.Getenv("APP_ENV"))
	return logger.Config{
		Level:       strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		Development: env == config.EnvDevelopment,
	}
}

func buildStore(ctx context.Context, cfg *config.Config) (cache.Store, func()) {
	if cfg.CacheBackend == config.CacheBackendRedis {
		client, err := newRedisClientFunc(ctx, cfg.RedisURL)
		if err == nil {
			return cache.NewRedisStore(client), func() { closeQuietly(client) }
		}
		logger.Error("redis unavailable, falling back to memory cache", err)
	}
	return cache.NewMemoryStore(time.Minute), func() {}
}

func closeQuietly(c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Warn("close failed", "error", err)
	}
}
