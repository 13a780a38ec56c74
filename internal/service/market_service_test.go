package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"coinhub/internal/apierror"
	"coinhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

var testTracer = noop.NewTracerProvider().Tracer("test")

type clockStore struct {
	mu      sync.Mutex
	now     time.Time
	items   map[string]clockItem
	getErr  error
	setErr  error
	setKeys []string
}

type clockItem struct {
	value   []byte
	expires time.Time
}

func newClockStore() *clockStore {
	return &clockStore{now: time.Unix(1700000000, 0), items: map[string]clockItem{}}
}

func (c *clockStore) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *clockStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	it, ok := c.items[key]
	if !ok || !c.now.Before(it.expires) {
		return nil, false, nil
	}
	return it.value, true, nil
}

func (c *clockStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.setKeys = append(c.setKeys, key)
	c.items[key] = clockItem{value: value, expires: c.now.Add(ttl)}
	return nil
}

type fakeProvider struct {
	marketsCalls    atomic.Int32
	detailsCalls    atomic.Int32
	ohlcCalls       atomic.Int32
	categoriesCalls atomic.Int32
	trendingCalls   atomic.Int32
	searchCalls     atomic.Int32

	marketsErr  error
	detailsErr  error
	trendingErr error
	release     chan struct{}
	lastParams  domain.MarketsParams
	lastDays    int
}

func (f *fakeProvider) FetchMarkets(ctx context.Context, params domain.MarketsParams) ([]domain.MarketCoin, error) {
	f.marketsCalls.Add(1)
	if f.release != nil {
		<-f.release
	}
	f.lastParams = params
	if f.marketsErr != nil {
		return nil, f.marketsErr
	}
	return []domain.MarketCoin{{ID: "bitcoin", Symbol: "btc", CurrentPrice: 65000}}, nil
}

func (f *fakeProvider) FetchCoinDetails(ctx context.Context, id string) (*domain.CoinDetails, error) {
	f.detailsCalls.Add(1)
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	return &domain.CoinDetails{ID: id, Name: "Bitcoin", MarketData: domain.CoinMarketData{CurrentPrice: domain.CurrencyValues{"usd": 65000}}}, nil
}

func (f *fakeProvider) FetchOHLC(ctx context.Context, id string, days int) ([]domain.OHLCCandle, error) {
	f.ohlcCalls.Add(1)
	f.lastDays = days
	return []domain.OHLCCandle{{Timestamp: 1, Open: 1, High: 2, Low: 0.5, Close: 1.5}}, nil
}

func (f *fakeProvider) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	f.categoriesCalls.Add(1)
	return []domain.Category{{CategoryID: "layer-1", Name: "Layer 1"}}, nil
}

func (f *fakeProvider) FetchTrending(ctx context.Context) (domain.TrendingResult, error) {
	f.trendingCalls.Add(1)
	if f.trendingErr != nil {
		return domain.TrendingResult{}, f.trendingErr
	}
	return domain.TrendingResult{Coins: []domain.TrendingEntry{{Item: domain.TrendingItem{ID: "pepe"}}}}, nil
}

func (f *fakeProvider) Search(ctx context.Context, query string) (domain.SearchResult, error) {
	f.searchCalls.Add(1)
	return domain.SearchResult{Coins: []domain.SearchResultCoin{{ID: "solana", Name: "Solana"}}}, nil
}

type lookupCounter struct {
	mu     sync.Mutex
	hits   map[string]int
	misses map[string]int
}

func (l *lookupCounter) ObserveCacheLookup(op string, hit bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.hits == nil {
		l.hits, l.misses = map[string]int{}, map[string]int{}
	}
	if hit {
		l.hits[op]++
	} else {
		l.misses[op]++
	}
}

func newTestService(p *fakeProvider, store *clockStore, rec LookupRecorder) *MarketService {
	return NewMarketService(testTracer, p, store, MarketServiceOptions{Recorder: rec})
}

func TestGetMarketsCachesWithinTTL(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{}
	store := newClockStore()
	rec := &lookupCounter{}
	svc := newTestService(p, store, rec)
	ctx := context.Background()

	first, err := svc.GetMarkets(ctx, domain.MarketsParams{})
	require.NoError(t, err)
	second, err := svc.GetMarkets(ctx, domain.MarketsParams{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, p.marketsCalls.Load())
	assert.Equal(t, 1, rec.hits["markets"])
	assert.Equal(t, 1, rec.misses["markets"])
	assert.Equal(t, []string{"coinhub:markets:usd:250:1:market_cap_desc:false:24h"}, store.setKeys)

	store.advance(299 * time.Second)
	_, err = svc.GetMarkets(ctx, domain.MarketsParams{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, p.marketsCalls.Load(), "still inside ttl")

	store.advance(2 * time.Second)
	_, err = svc.GetMarkets(ctx, domain.MarketsParams{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, p.marketsCalls.Load(), "expired entry refetches exactly once")
}

func TestGetMarketsKeyedByParams(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{}
	svc := newTestService(p, newClockStore(), nil)
	ctx := context.Background()

	_, err := svc.GetMarkets(ctx, domain.MarketsParams{Page: 1})
	require.NoError(t, err)
	_, err = svc.GetMarkets(ctx, domain.MarketsParams{Page: 2})
	require.NoError(t, err)
	_, err = svc.GetMarkets(ctx, domain.MarketsParams{VsCurrency: "EUR"})
	require.NoError(t, err)

	assert.EqualValues(t, 3, p.marketsCalls.Load())
	assert.Equal(t, "eur", p.lastParams.VsCurrency)

	_, err = svc.GetMarkets(ctx, domain.MarketsParams{VsCurrency: "x!"})
	assert.Equal(t, apierror.CodeBadRequest, apierror.CodeOf(err))
	assert.EqualValues(t, 3, p.marketsCalls.Load())
}

func TestGetMarketsPropagatesErrors(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{marketsErr: apierror.RateLimit("slow down")}
	store := newClockStore()
	svc := newTestService(p, store, nil)

	_, err := svc.GetMarkets(context.Background(), domain.MarketsParams{})
	assert.Equal(t, apierror.CodeRateLimit, apierror.CodeOf(err))
	assert.Empty(t, store.setKeys, "failures must not be cached")
}

func TestConcurrentMissesShareOneFetch(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{release: make(chan struct{})}
	svc := newTestService(p, newClockStore(), nil)

	const callers = 8
	var wg sync.WaitGroup
	results := make([][]domain.MarketCoin, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			coins, err := svc.GetMarkets(context.Background(), domain.MarketsParams{})
			assert.NoError(t, err)
			results[i] = coins
		}(i)
	}

	require.Eventually(t, func() bool { return p.marketsCalls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(p.release)
	wg.Wait()

	assert.EqualValues(t, 1, p.marketsCalls.Load())
	for _, coins := range results {
		require.Len(t, coins, 1)
		assert.Equal(t, "bitcoin", coins[0].ID)
	}
}

func TestGetCoinDetailsInvalidID(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{}
	store := newClockStore()
	svc := newTestService(p, store, nil)

	for _, id := range []string{"../../etc", "", "a b", "bitcoin;drop"} {
		details, err := svc.GetCoinDetails(context.Background(), id)
		assert.NoError(t, err)
		assert.Nil(t, details)
	}
	assert.EqualValues(t, 0, p.detailsCalls.Load())
	assert.Empty(t, store.setKeys)
}

func TestGetCoinDetailsCachesAndPropagates(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{}
	store := newClockStore()
	svc := newTestService(p, store, nil)
	ctx := context.Background()

	details, err := svc.GetCoinDetails(ctx, " bitcoin ")
	require.NoError(t, err)
	require.NotNil(t, details)
	assert.Equal(t, "bitcoin", details.ID)

	again, err := svc.GetCoinDetails(ctx, "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, 65000.0, again.MarketData.CurrentPrice.USD())
	assert.EqualValues(t, 1, p.detailsCalls.Load())
	assert.Contains(t, store.setKeys, "coinhub:coin:bitcoin")

	p.detailsErr = apierror.NotFound("coingecko not found")
	_, err = svc.GetCoinDetails(ctx, "doesnotexist")
	assert.Equal(t, apierror.CodeNotFound, apierror.CodeOf(err))
}

func TestGetOHLCUsesShorterTTL(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{}
	store := newClockStore()
	svc := newTestService(p, store, nil)
	ctx := context.Background()

	_, err := svc.GetOHLC(ctx, "bitcoin", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, p.lastDays)
	assert.Contains(t, store.setKeys, "coinhub:ohlc:bitcoin:1")

	store.advance(119 * time.Second)
	_, err = svc.GetOHLC(ctx, "bitcoin", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, p.ohlcCalls.Load())

	store.advance(2 * time.Second)
	_, err = svc.GetOHLC(ctx, "bitcoin", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, p.ohlcCalls.Load())

	_, err = svc.GetOHLC(ctx, "../x", 7)
	assert.Equal(t, apierror.CodeBadRequest, apierror.CodeOf(err))
	assert.EqualValues(t, 2, p.ohlcCalls.Load())
}

func TestSearchCachesPerQuery(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{}
	svc := newTestService(p, newClockStore(), nil)
	ctx := context.Background()

	res, err := svc.Search(ctx, "x")
	require.NoError(t, err)
	assert.NotNil(t, res.Coins)
	assert.Empty(t, res.Coins)

	_, err = svc.Search(ctx, "Sol")
	require.NoError(t, err)
	_, err = svc.Search(ctx, " sol ")
	require.NoError(t, err)
	_, err = svc.Search(ctx, "eth")
	require.NoError(t, err)
	assert.EqualValues(t, 2, p.searchCalls.Load())
}

func TestDegradingOperations(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{
		marketsErr:  apierror.Network(errors.New("timeout")),
		trendingErr: apierror.Validation("bad payload", nil, nil),
	}
	svc := newTestService(p, newClockStore(), nil)
	ctx := context.Background()

	coins := svc.MarketsOrEmpty(ctx, domain.MarketsParams{})
	assert.NotNil(t, coins)
	assert.Empty(t, coins)

	trending := svc.TrendingOrEmpty(ctx)
	assert.NotNil(t, trending.Coins)
	assert.Empty(t, trending.Coins)

	categories := svc.CategoriesOrEmpty(ctx)
	assert.Len(t, categories, 1)
}

func TestStoreFailuresAreMisses(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{}
	store := newClockStore()
	store.getErr = errors.New("redis down")
	store.setErr = errors.New("redis down")
	svc := newTestService(p, store, nil)

	for i := 0; i < 2; i++ {
		categories, err := svc.GetCategories(context.Background())
		require.NoError(t, err)
		assert.Len(t, categories, 1)
	}
	assert.EqualValues(t, 2, p.categoriesCalls.Load())
}

func TestCorruptEntryIsRefetched(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{}
	store := newClockStore()
	require.NoError(t, store.Set(context.Background(), "coinhub:trending", []byte("{not json"), time.Minute))
	svc := newTestService(p, store, nil)

	trending, err := svc.GetTrendingCoins(context.Background())
	require.NoError(t, err)
	assert.Len(t, trending.Coins, 1)
	assert.EqualValues(t, 1, p.trendingCalls.Load())
}

func TestWarmOverwritesHomepageKeys(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{}
	store := newClockStore()
	svc := newTestService(p, store, nil)
	ctx := context.Background()

	require.NoError(t, svc.Warm(ctx))
	assert.ElementsMatch(t, []string{
		"coinhub:markets:usd:250:1:market_cap_desc:false:24h",
		"coinhub:trending",
		"coinhub:categories",
	}, store.setKeys)

	_, err := svc.GetMarkets(ctx, domain.MarketsParams{})
	require.NoError(t, err)
	_, err = svc.GetTrendingCoins(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, p.marketsCalls.Load(), "warm entry should serve the read")
	assert.EqualValues(t, 1, p.trendingCalls.Load())

	p.trendingErr = apierror.RateLimit("")
	err = svc.Warm(ctx)
	require.Error(t, err)
	assert.Equal(t, apierror.CodeRateLimit, apierror.CodeOf(err))
}
