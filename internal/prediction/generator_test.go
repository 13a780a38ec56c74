package prediction

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"coinhub/internal/domain"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

var testTracer = noop.NewTracerProvider().Tracer("test")

type stubLLMClient struct {
	mu     sync.Mutex
	calls  atomic.Int32
	params []openai.ChatCompletionNewParams
	reply  func(params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

func (s *stubLLMClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.params = append(s.params, params)
	s.mu.Unlock()
	return s.reply(params)
}

func completion(text string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: text}},
		},
	}
}

type outcomeCounter struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (o *outcomeCounter) ObserveCompletion(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcomes == nil {
		o.outcomes = map[string]int{}
	}
	o.outcomes[outcome]++
}

func sampleCoins() []domain.MarketCoin {
	return []domain.MarketCoin{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", CurrentPrice: 65000, MarketCap: 1.28e12, TotalVolume: 3.5e10, PriceChangePercentage24h: 1.2},
		{ID: "tether", Symbol: "USDT", Name: "Tether", CurrentPrice: 1},
		{ID: "ethereum", Symbol: "eth", Name: "Ethereum", CurrentPrice: 3100},
		{ID: "usd-coin", Symbol: "usdc", Name: "USDC", CurrentPrice: 1},
		{ID: "solana", Symbol: "sol", Name: "Solana", CurrentPrice: 150},
		{ID: "first-digital-usd", Symbol: "fdusd", Name: "First Digital USD", CurrentPrice: 1},
		{ID: "ripple", Symbol: "xrp", Name: "XRP", CurrentPrice: 0.52},
		{ID: "dogecoin", Symbol: "doge", Name: "Dogecoin", CurrentPrice: 0.15},
		{ID: "cardano", Symbol: "ada", Name: "Cardano", CurrentPrice: 0.45},
		{ID: "pepe", Symbol: "pepe", Name: "Pepe", CurrentPrice: 0.0000123},
	}
}

func TestBuildMarketsFiltersAndCaps(t *testing.T) {
	g := NewGenerator(testTracer, nil, Options{})
	g.now = func() time.Time { return time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC) }
	g.random = func() float64 { return 0.5 }

	markets := g.BuildMarkets(sampleCoins())
	require.Len(t, markets, DefaultLimit)

	ids := make([]string, 0, len(markets))
	for _, m := range markets {
		ids = append(ids, m.CoinID)
		assert.Equal(t, "2024-05-31", m.EndDate)
		assert.Nil(t, m.AIPrediction)
		assert.InDelta(t, m.CurrentPrice, m.TargetPrice, 0.005, "zero offset keeps the price")
	}
	assert.Equal(t, []string{"bitcoin", "ethereum", "solana", "ripple", "dogecoin", "cardano"}, ids)
	assert.Equal(t, 1.2, markets[0].PriceChangePercentage24h)
}

func TestBuildMarketsCustomLimit(t *testing.T) {
	g := NewGenerator(testTracer, nil, Options{Limit: 2})
	markets := g.BuildMarkets(sampleCoins())
	require.Len(t, markets, 2)
	assert.Equal(t, "ethereum", markets[1].CoinID)

	assert.Empty(t, g.BuildMarkets(nil))
}

func TestIsStablecoin(t *testing.T) {
	assert.True(t, IsStablecoin(domain.MarketCoin{ID: "usd-coin", Symbol: "usdc"}))
	assert.True(t, IsStablecoin(domain.MarketCoin{ID: "tether", Symbol: "USDT"}))
	assert.True(t, IsStablecoin(domain.MarketCoin{ID: "paypal-usd", Symbol: "pyusd"}))
	assert.False(t, IsStablecoin(domain.MarketCoin{ID: "bitcoin", Symbol: "btc"}))
}

func TestTargetPriceLaw(t *testing.T) {
	prices := []float64{65000, 3100.55, 150, 1, 0.52, 0.15, 0.05, 0.0125, 0.01, 0.0000123, 12345678.9}
	offsets := []float64{-20, -19.999, -7.3, 0, 0.004, 11.1, 19.999, 20}

	for _, c := range prices {
		for _, off := range offsets {
			got := TargetPrice(c, off)
			lo, hi := 0.8*c, 1.2*c
			eps := c * 1e-12
			assert.GreaterOrEqual(t, got, lo-eps, "price %v offset %v", c, off)
			assert.LessOrEqual(t, got, hi+eps, "price %v offset %v", c, off)
			if c >= 0.0125 {
				cents := got * 100
				assert.InDelta(t, math.Round(cents), cents, 1e-6, "price %v offset %v not rounded to cents: %v", c, off, got)
			}
		}
	}
}

func TestTargetPriceRandomized(t *testing.T) {
	g := NewGenerator(testTracer, nil, Options{Limit: 50})
	coins := make([]domain.MarketCoin, 0, 200)
	for i := 0; i < 200; i++ {
		coins = append(coins, domain.MarketCoin{ID: fmt.Sprintf("coin-%d", i), Symbol: "c", CurrentPrice: float64(i+1) * 1.37})
	}
	for _, m := range g.BuildMarkets(coins) {
		assert.GreaterOrEqual(t, m.TargetPrice, 0.8*m.CurrentPrice-1e-9)
		assert.LessOrEqual(t, m.TargetPrice, 1.2*m.CurrentPrice+1e-9)
	}
}

func TestTargetPriceEdges(t *testing.T) {
	assert.Equal(t, 0.0, TargetPrice(0, 10))
	assert.Equal(t, 0.0, TargetPrice(-5, 10))
	assert.Equal(t, 120.0, TargetPrice(100, 50), "offset is clamped to 20%")
	assert.Equal(t, 80.0, TargetPrice(100, -50))
	assert.Equal(t, 110.0, TargetPrice(100, 10))
}

func TestGetPredictionsWithoutLLM(t *testing.T) {
	g := NewGenerator(testTracer, nil, Options{})
	assert.False(t, g.Enabled())

	markets := g.BuildMarkets(sampleCoins())
	out := g.GetPredictionsForMarkets(context.Background(), markets)
	require.Len(t, out, len(markets))
	for i, m := range out {
		assert.Nil(t, m.AIPrediction)
		assert.Equal(t, markets[i].CoinID, m.CoinID)
	}
}

func TestGetPredictionsPreservesOrderAndIsolatesFailures(t *testing.T) {
	llm := &stubLLMClient{reply: func(params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
		user := params.Messages[1].OfUser.Content.OfString.Value
		switch {
		case strings.Contains(user, "Ethereum"):
			return nil, errors.New("upstream 500")
		case strings.Contains(user, "Solana"):
			time.Sleep(20 * time.Millisecond)
			return completion("  Solana looks neutral.  "), nil
		case strings.Contains(user, "XRP"):
			return &openai.ChatCompletion{}, nil
		default:
			return completion("Bullish momentum, watch resistance."), nil
		}
	}}
	rec := &outcomeCounter{}
	g := NewGenerator(testTracer, llm, Options{Limit: 4, Model: "gpt-test", Recorder: rec})
	require.True(t, g.Enabled())

	markets := g.BuildMarkets(sampleCoins())
	out := g.GetPredictionsForMarkets(context.Background(), markets)

	require.Len(t, out, 4)
	assert.Equal(t, []string{"bitcoin", "ethereum", "solana", "ripple"},
		[]string{out[0].CoinID, out[1].CoinID, out[2].CoinID, out[3].CoinID})
	require.NotNil(t, out[0].AIPrediction)
	assert.Equal(t, "Bullish momentum, watch resistance.", *out[0].AIPrediction)
	assert.Nil(t, out[1].AIPrediction)
	require.NotNil(t, out[2].AIPrediction)
	assert.Equal(t, "Solana looks neutral.", *out[2].AIPrediction)
	assert.Nil(t, out[3].AIPrediction)

	assert.EqualValues(t, 4, llm.calls.Load())
	assert.Equal(t, map[string]int{"ok": 2, "error": 1, "empty": 1}, rec.outcomes)
	for _, m := range markets {
		assert.Nil(t, m.AIPrediction, "input slice must not be mutated")
	}
}

func TestCompletionRequestShape(t *testing.T) {
	llm := &stubLLMClient{reply: func(openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
		return completion("ok"), nil
	}}
	g := NewGenerator(testTracer, llm, Options{Limit: 1})
	g.GetPredictionsForMarkets(context.Background(), g.BuildMarkets(sampleCoins()))

	require.Len(t, llm.params, 1)
	p := llm.params[0]
	assert.Equal(t, DefaultModel, string(p.Model))
	assert.Equal(t, int64(150), p.MaxTokens.Value)
	require.Len(t, p.Messages, 2)
	assert.Equal(t, systemPrompt, p.Messages[0].OfSystem.Content.OfString.Value)
	assert.Contains(t, p.Messages[1].OfUser.Content.OfString.Value, "Coin: Bitcoin (BTC)")
}

func TestMarketSummary(t *testing.T) {
	summary := MarketSummary(domain.PredictionMarket{
		Name: "Bitcoin", Symbol: "btc", CurrentPrice: 65000.123456789, PriceChangePercentage24h: -1.234,
		MarketCap: 1280000000000, TotalVolume: 35000000000.4, TargetPrice: 70000.5, EndDate: "2024-05-31",
	})
	assert.Equal(t, "Coin: Bitcoin (BTC). Current price: $65,000.123457. 24h change: -1.23%. "+
		"Market cap: $1,280,000,000,000. 24h volume: $35,000,000,000. Target price: $70,000.5 by 2024-05-31", summary)
}

func TestNewOpenAIClientWithoutKey(t *testing.T) {
	assert.Nil(t, NewOpenAIClient(""))
	assert.NotNil(t, NewOpenAIClient("sk-test"))
}
