// Package prediction builds the cosmetic prediction-market cards: a random
// target price, a fixed horizon and an optional LLM comment per coin.
package prediction

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"coinhub/internal/domain"
	"coinhub/pkg/logger"

	"github.com/openai/openai-go"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultLimit      = 6
	DefaultModel      = "gpt-4o-mini"
	HorizonDays       = 30
	MaxOffsetPct      = 20.0
	maxTokens         = 150
	defaultTimeout    = 20 * time.Second
	maxPricePrecision = 12
)

// CompletionRecorder counts LLM completions by outcome.
type CompletionRecorder interface {
	ObserveCompletion(outcome string)
}

type nopCompletionRecorder struct{}

func (nopCompletionRecorder) ObserveCompletion(string) {}

type Options struct {
	Model    string
	Limit    int
	Timeout  time.Duration
	Recorder CompletionRecorder
}

type Generator struct {
	tracer   trace.Tracer
	llm      LLMClient
	model    string
	limit    int
	timeout  time.Duration
	recorder CompletionRecorder

	now    func() time.Time
	random func() float64
}

// NewGenerator builds a Generator. A nil llm disables comments entirely.
func NewGenerator(tracer trace.Tracer, llm LLMClient, opts Options) *Generator {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Recorder == nil {
		opts.Recorder = nopCompletionRecorder{}
	}
	return &Generator{
		tracer:   tracer,
		llm:      llm,
		model:    opts.Model,
		limit:    opts.Limit,
		timeout:  opts.Timeout,
		recorder: opts.Recorder,
		now:      time.Now,
		random:   rand.Float64,
	}
}

// Enabled reports whether an LLM client is configured.
func (g *Generator) Enabled() bool {
	return g.llm != nil
}

// IsStablecoin matches coins whose id or symbol contains "usd".
func IsStablecoin(c domain.MarketCoin) bool {
	return strings.Contains(strings.ToLower(c.ID), "usd") || strings.Contains(strings.ToLower(c.Symbol), "usd")
}

// BuildMarkets filters stablecoins, caps the list and derives target price
// and end date. Comments are left nil.
func (g *Generator) BuildMarkets(coins []domain.MarketCoin) []domain.PredictionMarket {
	endDate := g.now().AddDate(0, 0, HorizonDays).Format(time.DateOnly)

	markets := make([]domain.PredictionMarket, 0, min(len(coins), g.limit))
	for _, c := range coins {
		if len(markets) == g.limit {
			break
		}
		if IsStablecoin(c) {
			continue
		}
		offset := (g.random() - 0.5) * 2 * MaxOffsetPct
		markets = append(markets, domain.PredictionMarket{
			CoinID:                   c.ID,
			Name:                     c.Name,
			Symbol:                   c.Symbol,
			Image:                    c.Image,
			CurrentPrice:             c.CurrentPrice,
			TargetPrice:              TargetPrice(c.CurrentPrice, offset),
			EndDate:                  endDate,
			MarketCap:                c.MarketCap,
			TotalVolume:              c.TotalVolume,
			PriceChangePercentage24h: c.PriceChangePercentage24h,
		})
	}
	return markets
}

// TargetPrice applies offsetPct to current and rounds to cents, clamped to
// [0.8, 1.2] x current. When no cent value lies in that band (prices below
// about 1.25 cents) precision is raised until one does.
func TargetPrice(current, offsetPct float64) float64 {
	if current <= 0 {
		return 0
	}
	if offsetPct > MaxOffsetPct {
		offsetPct = MaxOffsetPct
	}
	if offsetPct < -MaxOffsetPct {
		offsetPct = -MaxOffsetPct
	}

	c := decimal.NewFromFloat(current)
	raw := c.Mul(decimal.NewFromInt(100).Add(decimal.NewFromFloat(offsetPct))).Div(decimal.NewFromInt(100))
	low := c.Mul(decimal.NewFromFloat(0.8))
	high := c.Mul(decimal.NewFromFloat(1.2))

	for places := int32(2); places <= maxPricePrecision; places++ {
		lo := low.RoundCeil(places)
		hi := high.RoundFloor(places)
		if lo.GreaterThan(hi) {
			continue
		}
		target := raw.Round(places)
		if target.LessThan(lo) {
			target = lo
		}
		if target.GreaterThan(hi) {
			target = hi
		}
		return target.InexactFloat64()
	}
	return raw.InexactFloat64()
}

// GetPredictionsForMarkets asks the LLM for a comment on every market
// concurrently. Output order matches input order; a failed completion
// leaves that market's comment nil. Without an LLM no call is made.
func (g *Generator) GetPredictionsForMarkets(ctx context.Context, markets []domain.PredictionMarket) []domain.PredictionMarket {
	ctx, span := g.tracer.Start(ctx, "prediction.get-predictions")
	defer span.End()
	span.SetAttributes(attribute.Int("markets", len(markets)), attribute.Bool("llm.enabled", g.llm != nil))

	out := make([]domain.PredictionMarket, len(markets))
	copy(out, markets)
	for i := range out {
		out[i].AIPrediction = nil
	}
	if g.llm == nil || len(out) == 0 {
		return out
	}

	var wg sync.WaitGroup
	for i := range out {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i].AIPrediction = g.comment(ctx, out[i])
		}(i)
	}
	wg.Wait()
	return out
}

func (g *Generator) comment(ctx context.Context, m domain.PredictionMarket) *string {
	ctx, span := g.tracer.Start(ctx, "prediction.llm-call")
	defer span.End()
	span.SetAttributes(attribute.String("coin_id", m.CoinID), attribute.String("llm.model", g.model))

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	completion, err := g.llm.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(MarketSummary(m)),
		},
		MaxTokens: openai.Int(maxTokens),
	})
	if err != nil {
		span.RecordError(err)
		g.recorder.ObserveCompletion("error")
		logger.Warn("prediction completion failed", "coin_id", m.CoinID, "error", err.Error())
		return nil
	}
	if len(completion.Choices) == 0 {
		g.recorder.ObserveCompletion("empty")
		return nil
	}
	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		g.recorder.ObserveCompletion("empty")
		return nil
	}
	g.recorder.ObserveCompletion("ok")
	return &text
}
