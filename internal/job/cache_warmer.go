package job

import (
	"context"
	"time"

	"coinhub/pkg/logger"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// CacheRefresher rewrites the cached homepage data.
type CacheRefresher interface {
	Warm(ctx context.Context) error
}

// WarmRecorder counts warm runs by outcome.
type WarmRecorder interface {
	ObserveWarm(err error)
}

// CacheWarmer keeps the default listing, trending and categories entries
// fresh so page loads rarely miss.
type CacheWarmer struct {
	tracer    trace.Tracer
	refresher CacheRefresher
	interval  time.Duration
	recorder  WarmRecorder
}

func NewCacheWarmer(tracer trace.Tracer, refresher CacheRefresher, intervalSecs int, recorder WarmRecorder) *CacheWarmer {
	return &CacheWarmer{
		tracer:    tracer,
		refresher: refresher,
		interval:  time.Duration(intervalSecs) * time.Second,
		recorder:  recorder,
	}
}

// Start warms immediately and then on every tick. Blocks until ctx is
// cancelled; a non-positive interval returns at once.
func (w *CacheWarmer) Start(ctx context.Context) {
	if w.interval <= 0 {
		logger.Info("cache warmer disabled")
		return
	}
	logger.Info("cache warmer starting", "interval", w.interval)

	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("cache warmer stopped")
			return
		case <-ticker.C:
			w.run(ctx)
		}
	}
}

func (w *CacheWarmer) run(ctx context.Context) {
	ctx, span := w.tracer.Start(ctx, "job.cache-warm")
	defer span.End()

	start := time.Now()
	err := w.refresher.Warm(ctx)
	if w.recorder != nil {
		w.recorder.ObserveWarm(err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("cache warm failed", err, "elapsed", time.Since(start))
		return
	}
	logger.Debug("cache warmed", "elapsed", time.Since(start))
}
