package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"coinhub/internal/apierror"
	"coinhub/internal/cache"
	"coinhub/internal/domain"
	"coinhub/pkg/logger"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const (
	keyPrefix        = "coinhub:"
	defaultTTL       = 300 * time.Second
	defaultOHLCTTL   = 120 * time.Second
	defaultSearchTTL = 300 * time.Second
)

// MarketProvider is the upstream market data client.
type MarketProvider interface {
	FetchMarkets(ctx context.Context, params domain.MarketsParams) ([]domain.MarketCoin, error)
	FetchCoinDetails(ctx context.Context, id string) (*domain.CoinDetails, error)
	FetchOHLC(ctx context.Context, id string, days int) ([]domain.OHLCCandle, error)
	FetchCategories(ctx context.Context) ([]domain.Category, error)
	FetchTrending(ctx context.Context) (domain.TrendingResult, error)
	Search(ctx context.Context, query string) (domain.SearchResult, error)
}

// LookupRecorder counts cache hits and misses per operation.
type LookupRecorder interface {
	ObserveCacheLookup(op string, hit bool)
}

type nopLookupRecorder struct{}

func (nopLookupRecorder) ObserveCacheLookup(string, bool) {}

type MarketServiceOptions struct {
	TTL       time.Duration
	OHLCTTL   time.Duration
	SearchTTL time.Duration
	Recorder  LookupRecorder
}

// MarketService memoizes upstream reads for a fixed TTL. Concurrent misses
// on one key share a single upstream call. Store failures are logged and
// treated as misses.
type MarketService struct {
	tracer    trace.Tracer
	provider  MarketProvider
	store     cache.Store
	ttl       time.Duration
	ohlcTTL   time.Duration
	searchTTL time.Duration
	recorder  LookupRecorder
	group     singleflight.Group
}

func NewMarketService(tracer trace.Tracer, provider MarketProvider, store cache.Store, opts MarketServiceOptions) *MarketService {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.OHLCTTL <= 0 {
		opts.OHLCTTL = defaultOHLCTTL
	}
	if opts.SearchTTL <= 0 {
		opts.SearchTTL = defaultSearchTTL
	}
	if opts.Recorder == nil {
		opts.Recorder = nopLookupRecorder{}
	}
	return &MarketService{
		tracer:    tracer,
		provider:  provider,
		store:     store,
		ttl:       opts.TTL,
		ohlcTTL:   opts.OHLCTTL,
		searchTTL: opts.SearchTTL,
		recorder:  opts.Recorder,
	}
}

// GetMarkets returns the cached markets page for params.
func (s *MarketService) GetMarkets(ctx context.Context, params domain.MarketsParams) ([]domain.MarketCoin, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-markets")
	defer span.End()

	if params.VsCurrency != "" && !domain.ValidCurrency(params.VsCurrency) {
		return nil, apierror.BadRequest("invalid vs_currency")
	}
	params = params.Normalize()
	key := marketsKey(params)
	span.SetAttributes(attribute.String("cache.key", key))

	return cached(ctx, s, "markets", key, s.ttl, func(ctx context.Context) ([]domain.MarketCoin, error) {
		return s.provider.FetchMarkets(ctx, params)
	})
}

// GetCoinDetails returns nil, nil for an id that is not a safe coin id; no
// cache entry is read or written and no request is made in that case.
// Upstream failures, including not found, are returned to the caller.
func (s *MarketService) GetCoinDetails(ctx context.Context, id string) (*domain.CoinDetails, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-coin-details")
	defer span.End()

	safeID, ok := domain.NormalizeCoinID(id)
	if !ok {
		return nil, nil
	}
	span.SetAttributes(attribute.String("coin_id", safeID))

	return cached(ctx, s, "coin", keyPrefix+"coin:"+safeID, s.ttl, func(ctx context.Context) (*domain.CoinDetails, error) {
		return s.provider.FetchCoinDetails(ctx, safeID)
	})
}

// GetOHLC returns candles for id, cached for the shorter OHLC TTL.
func (s *MarketService) GetOHLC(ctx context.Context, id string, days int) ([]domain.OHLCCandle, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-ohlc")
	defer span.End()

	safeID, ok := domain.NormalizeCoinID(id)
	if !ok {
		return nil, apierror.BadRequest("invalid coin id")
	}
	days = domain.NormalizeOHLCDays(days)
	key := fmt.Sprintf("%sohlc:%s:%d", keyPrefix, safeID, days)

	return cached(ctx, s, "ohlc", key, s.ohlcTTL, func(ctx context.Context) ([]domain.OHLCCandle, error) {
		return s.provider.FetchOHLC(ctx, safeID, days)
	})
}

func (s *MarketService) GetTrendingCoins(ctx context.Context) (domain.TrendingResult, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-trending")
	defer span.End()

	return cached(ctx, s, "trending", keyPrefix+"trending", s.ttl, s.provider.FetchTrending)
}

func (s *MarketService) GetCategories(ctx context.Context) ([]domain.Category, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-categories")
	defer span.End()

	return cached(ctx, s, "categories", keyPrefix+"categories", s.ttl, s.provider.FetchCategories)
}

// Search caches results per normalized query. Queries outside the
// searchable length return an empty result without touching the cache.
func (s *MarketService) Search(ctx context.Context, query string) (domain.SearchResult, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.search")
	defer span.End()

	query = strings.TrimSpace(query)
	if !domain.SearchableQuery(query) {
		return domain.SearchResult{Coins: []domain.SearchResultCoin{}}, nil
	}
	key := keyPrefix + "search:" + strings.ToLower(query)

	return cached(ctx, s, "search", key, s.searchTTL, func(ctx context.Context) (domain.SearchResult, error) {
		return s.provider.Search(ctx, query)
	})
}

// MarketsOrEmpty feeds non-critical widgets: failures are logged and an
// empty list is returned.
func (s *MarketService) MarketsOrEmpty(ctx context.Context, params domain.MarketsParams) []domain.MarketCoin {
	coins, err := s.GetMarkets(ctx, params)
	if err != nil {
		logger.Error("markets unavailable, serving empty list", err, "code", string(apierror.CodeOf(err)))
		return []domain.MarketCoin{}
	}
	return coins
}

func (s *MarketService) TrendingOrEmpty(ctx context.Context) domain.TrendingResult {
	trending, err := s.GetTrendingCoins(ctx)
	if err != nil {
		logger.Error("trending unavailable, serving empty list", err, "code", string(apierror.CodeOf(err)))
		return domain.TrendingResult{Coins: []domain.TrendingEntry{}}
	}
	return trending
}

func (s *MarketService) CategoriesOrEmpty(ctx context.Context) []domain.Category {
	categories, err := s.GetCategories(ctx)
	if err != nil {
		logger.Error("categories unavailable, serving empty list", err, "code", string(apierror.CodeOf(err)))
		return []domain.Category{}
	}
	return categories
}

// Warm refetches the default listing, trending and categories and
// overwrites their cache entries regardless of freshness.
func (s *MarketService) Warm(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "market-service.warm")
	defer span.End()

	params := domain.MarketsParams{}.Normalize()
	var errs []error

	if coins, err := s.provider.FetchMarkets(ctx, params); err != nil {
		errs = append(errs, fmt.Errorf("warm markets: %w", err))
	} else {
		s.write(ctx, marketsKey(params), coins, s.ttl)
	}
	if trending, err := s.provider.FetchTrending(ctx); err != nil {
		errs = append(errs, fmt.Errorf("warm trending: %w", err))
	} else {
		s.write(ctx, keyPrefix+"trending", trending, s.ttl)
	}
	if categories, err := s.provider.FetchCategories(ctx); err != nil {
		errs = append(errs, fmt.Errorf("warm categories: %w", err))
	} else {
		s.write(ctx, keyPrefix+"categories", categories, s.ttl)
	}

	return errors.Join(errs...)
}

func marketsKey(p domain.MarketsParams) string {
	return strings.Join([]string{
		keyPrefix + "markets",
		p.VsCurrency,
		strconv.Itoa(p.PerPage),
		strconv.Itoa(p.Page),
		p.Order,
		strconv.FormatBool(p.Sparkline),
		p.PriceChangePercentage,
	}, ":")
}

// cached serves key from the store or runs fetch once per key across
// concurrent callers. The shared fetch is detached from the caller's
// cancellation so one disconnecting client does not fail the others.
func cached[T any](ctx context.Context, s *MarketService, op, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	if v, ok := read[T](ctx, s, key); ok {
		s.recorder.ObserveCacheLookup(op, true)
		return v, nil
	}
	s.recorder.ObserveCacheLookup(op, false)

	res, err, _ := s.group.Do(key, func() (any, error) {
		fetchCtx := context.WithoutCancel(ctx)
		v, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		s.write(fetchCtx, key, v, ttl)
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	return res.(T), nil
}

func read[T any](ctx context.Context, s *MarketService, key string) (T, bool) {
	var v T
	if s.store == nil {
		return v, false
	}
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", "key", key, "error", err.Error())
		return v, false
	}
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		logger.Warn("cache entry undecodable, refetching", "key", key, "error", err.Error())
		return v, false
	}
	return v, true
}

func (s *MarketService) write(ctx context.Context, key string, v any, ttl time.Duration) {
	if s.store == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		logger.Warn("cache encode failed", "key", key, "error", err.Error())
		return
	}
	if err := s.store.Set(ctx, key, data, ttl); err != nil {
		logger.Warn("cache write failed", "key", key, "error", err.Error())
	}
}
