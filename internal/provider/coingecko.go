package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"coinhub/internal/apierror"
	"coinhub/internal/domain"
	"coinhub/pkg/logger"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultBaseURL        = "https://api.coingecko.com/api/v3"
	defaultTimeout        = 10 * time.Second
	defaultMaxAttempts    = 3
	defaultInitialBackoff = time.Second
	maxBodyBytes          = 16 << 20

	demoKeyParam = "x_cg_demo_api_key"
	proKeyHeader = "x-cg-pro-api-key"
)

// Recorder receives per-request upstream telemetry. outcome is "OK" or an
// apierror code.
type Recorder interface {
	ObserveUpstream(endpoint, outcome string, elapsed time.Duration)
	ObserveRetry(endpoint string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveUpstream(string, string, time.Duration) {}
func (nopRecorder) ObserveRetry(string)                           {}

// Options configures a CoinGeckoProvider. Zero values select defaults.
type Options struct {
	BaseURL string
	APIKey  string
	// DemoPlan sends the key as a query parameter instead of the pro header.
	DemoPlan        bool
	Timeout         time.Duration
	MaxAttempts     int
	InitialBackoff  time.Duration
	RateLimitPerMin int
	Recorder        Recorder
	// LogRequests enables method/path/status debug logging.
	LogRequests bool
}

// CoinGeckoProvider is the read-only client for the CoinGecko REST API.
// Every call is classified into an apierror code; only network failures
// and 5xx responses are retried.
type CoinGeckoProvider struct {
	client         *http.Client
	baseURL        string
	apiKey         string
	demoPlan       bool
	timeout        time.Duration
	maxAttempts    int
	initialBackoff time.Duration
	tracer         trace.Tracer
	limiter        *RateLimiter
	recorder       Recorder
	logRequests    bool
}

func NewCoinGeckoProvider(tracer trace.Tracer, opts Options) *CoinGeckoProvider {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = defaultInitialBackoff
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}

	return &CoinGeckoProvider{
		client:         &http.Client{Timeout: opts.Timeout},
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		apiKey:         opts.APIKey,
		demoPlan:       opts.DemoPlan,
		timeout:        opts.Timeout,
		maxAttempts:    opts.MaxAttempts,
		initialBackoff: opts.InitialBackoff,
		tracer:         tracer,
		recorder:       opts.Recorder,
		logRequests:    opts.LogRequests,
		limiter:        NewPerMinuteLimiter(opts.RateLimitPerMin),
	}
}

// FetchMarkets returns one page of the markets listing.
func (p *CoinGeckoProvider) FetchMarkets(ctx context.Context, params domain.MarketsParams) ([]domain.MarketCoin, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-markets")
	defer span.End()

	if params.VsCurrency != "" && !domain.ValidCurrency(params.VsCurrency) {
		return nil, endSpan(span, apierror.BadRequest("invalid vs_currency"))
	}
	params = params.Normalize()
	span.SetAttributes(
		attribute.String("vs_currency", params.VsCurrency),
		attribute.Int("page", params.Page),
		attribute.Int("per_page", params.PerPage),
	)

	query := url.Values{}
	query.Set("vs_currency", params.VsCurrency)
	query.Set("order", params.Order)
	query.Set("per_page", strconv.Itoa(params.PerPage))
	query.Set("page", strconv.Itoa(params.Page))
	query.Set("sparkline", strconv.FormatBool(params.Sparkline))
	query.Set("price_change_percentage", params.PriceChangePercentage)

	body, err := p.doRequest(ctx, "markets", "/coins/markets", query)
	if err != nil {
		return nil, endSpan(span, fmt.Errorf("fetch markets: %w", err))
	}
	coins, err := decodeMarkets(body)
	if err != nil {
		return nil, endSpan(span, fmt.Errorf("fetch markets: %w", err))
	}
	return coins, nil
}

// FetchCoinDetails returns the detail payload for one coin. Ids that are
// not safe path segments are rejected before any request is made.
func (p *CoinGeckoProvider) FetchCoinDetails(ctx context.Context, id string) (*domain.CoinDetails, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-coin-details")
	defer span.End()

	safeID, ok := domain.NormalizeCoinID(id)
	if !ok {
		return nil, endSpan(span, invalidCoinID(id))
	}
	span.SetAttributes(attribute.String("coin_id", safeID))

	query := url.Values{}
	query.Set("localization", "false")
	query.Set("community_data", "false")
	query.Set("developer_data", "false")

	body, err := p.doRequest(ctx, "coin", "/coins/"+url.PathEscape(safeID), query)
	if err != nil {
		return nil, endSpan(span, fmt.Errorf("fetch coin %s: %w", safeID, err))
	}
	details, err := decodeCoinDetails(body)
	if err != nil {
		return nil, endSpan(span, fmt.Errorf("fetch coin %s: %w", safeID, err))
	}
	return details, nil
}

// FetchOHLC returns chronological candles for id over the given day range.
// Unsupported ranges fall back to one day.
func (p *CoinGeckoProvider) FetchOHLC(ctx context.Context, id string, days int) ([]domain.OHLCCandle, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-ohlc")
	defer span.End()

	safeID, ok := domain.NormalizeCoinID(id)
	if !ok {
		return nil, endSpan(span, invalidCoinID(id))
	}
	days = domain.NormalizeOHLCDays(days)
	span.SetAttributes(attribute.String("coin_id", safeID), attribute.Int("days", days))

	query := url.Values{}
	query.Set("vs_currency", domain.DefaultVsCurrency)
	query.Set("days", strconv.Itoa(days))

	body, err := p.doRequest(ctx, "ohlc", "/coins/"+url.PathEscape(safeID)+"/ohlc", query)
	if err != nil {
		return nil, endSpan(span, fmt.Errorf("fetch ohlc for %s: %w", safeID, err))
	}
	candles, err := decodeOHLC(body)
	if err != nil {
		return nil, endSpan(span, fmt.Errorf("fetch ohlc for %s: %w", safeID, err))
	}
	return candles, nil
}

func (p *CoinGeckoProvider) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-categories")
	defer span.End()

	body, err := p.doRequest(ctx, "categories", "/coins/categories", nil)
	if err != nil {
		return nil, endSpan(span, fmt.Errorf("fetch categories: %w", err))
	}
	categories, err := decodeCategories(body)
	if err != nil {
		return nil, endSpan(span, fmt.Errorf("fetch categories: %w", err))
	}
	return categories, nil
}

func (p *CoinGeckoProvider) FetchTrending(ctx context.Context) (domain.TrendingResult, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-trending")
	defer span.End()

	body, err := p.doRequest(ctx, "trending", "/search/trending", nil)
	if err != nil {
		return domain.TrendingResult{}, endSpan(span, fmt.Errorf("fetch trending: %w", err))
	}
	trending, err := decodeTrending(body)
	if err != nil {
		return domain.TrendingResult{}, endSpan(span, fmt.Errorf("fetch trending: %w", err))
	}
	return trending, nil
}

// Search looks up coins by name or symbol. Queries outside 2..100
// characters return an empty result without calling upstream.
func (p *CoinGeckoProvider) Search(ctx context.Context, query string) (domain.SearchResult, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.search")
	defer span.End()

	query = strings.TrimSpace(query)
	if !domain.SearchableQuery(query) {
		return domain.SearchResult{Coins: []domain.SearchResultCoin{}}, nil
	}

	values := url.Values{}
	values.Set("query", query)
	body, err := p.doRequest(ctx, "search", "/search", values)
	if err != nil {
		return domain.SearchResult{}, endSpan(span, fmt.Errorf("search %q: %w", query, err))
	}
	result, err := decodeSearch(body)
	if err != nil {
		return domain.SearchResult{}, endSpan(span, fmt.Errorf("search %q: %w", query, err))
	}
	return result, nil
}

func (p *CoinGeckoProvider) doRequest(ctx context.Context, op, endpoint string, query url.Values) ([]byte, error) {
	path, err := normalizeEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	if query == nil {
		query = url.Values{}
	}
	if p.demoPlan && p.apiKey != "" {
		query.Set(demoKeyParam, p.apiKey)
	}
	target := p.baseURL + "/" + path
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}

	policy := &backoff.ExponentialBackOff{
		InitialInterval:     p.initialBackoff,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         p.initialBackoff * 8,
	}
	policy.Reset()

	operation := func() ([]byte, error) {
		body, err := p.attempt(ctx, op, path, target)
		if err == nil {
			return body, nil
		}
		var perm *backoff.PermanentError
		if !errors.As(err, &perm) && !apierror.Retryable(err) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(p.maxAttempts)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			p.recorder.ObserveRetry(op)
			logger.Warn("coingecko request failed, retrying",
				"endpoint", path, "wait", wait.String(), "error", err.Error())
		}),
	)
	if err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Err
		}
		return nil, err
	}
	return body, nil
}

// attempt performs a single GET and classifies the outcome.
func (p *CoinGeckoProvider) attempt(ctx context.Context, op, path, target string) ([]byte, error) {
	if err := p.waitForToken(ctx); err != nil {
		p.recorder.ObserveUpstream(op, string(apierror.CodeOf(err)), 0)
		return nil, backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, backoff.Permanent(apierror.Wrap(apierror.CodeInternal, "build request", err))
	}
	req.Header.Set("Accept", "application/json")
	if !p.demoPlan && p.apiKey != "" {
		req.Header.Set(proKeyHeader, p.apiKey)
	}

	p.logRequest(path, 0)
	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		p.recorder.ObserveUpstream(op, string(apierror.CodeNetwork), time.Since(start))
		if ctx.Err() != nil {
			return nil, backoff.Permanent(apierror.Network(err))
		}
		return nil, apierror.Network(err)
	}
	defer resp.Body.Close()
	p.logRequest(path, resp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		p.recorder.ObserveUpstream(op, string(apierror.CodeNetwork), time.Since(start))
		return nil, apierror.Network(fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		classified := classifyStatus(resp.StatusCode, resp.Status, body)
		p.recorder.ObserveUpstream(op, string(apierror.CodeOf(classified)), time.Since(start))
		return nil, classified
	}
	p.recorder.ObserveUpstream(op, "OK", time.Since(start))
	return body, nil
}

// waitForToken takes a limiter token within the per-call timeout. A budget
// that stays exhausted for the whole timeout is reported as RATE_LIMIT.
func (p *CoinGeckoProvider) waitForToken(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.limiter.Wait(waitCtx); err != nil {
		if ctx.Err() != nil {
			return apierror.Network(fmt.Errorf("rate limit wait: %w", ctx.Err()))
		}
		return apierror.RateLimit(fmt.Sprintf("client-side rate limit: no request budget within %s", p.timeout))
	}
	return nil
}

func (p *CoinGeckoProvider) logRequest(path string, status int) {
	if !p.logRequests {
		return
	}
	if status == 0 {
		logger.Debug("coingecko request", "method", http.MethodGet, "path", path)
		return
	}
	logger.Debug("coingecko response", "method", http.MethodGet, "path", path, "status", status)
}

// normalizeEndpoint strips leading slashes and rejects absolute URLs and
// parent-directory segments.
func normalizeEndpoint(endpoint string) (string, error) {
	path := strings.TrimLeft(strings.TrimSpace(endpoint), "/")
	if path == "" || strings.HasPrefix(strings.ToLower(path), "http") || strings.Contains(path, "..") {
		if len(endpoint) > 50 {
			endpoint = endpoint[:50]
		}
		return "", apierror.BadRequest(fmt.Sprintf("invalid coingecko endpoint: %q", endpoint))
	}
	return path, nil
}

func classifyStatus(status int, statusText string, body []byte) error {
	message := upstreamMessage(statusText, body)
	switch status {
	case http.StatusTooManyRequests:
		return apierror.RateLimit("coingecko rate limit: " + message)
	case http.StatusUnauthorized:
		return apierror.Unauthorized("coingecko rejected api key: " + message)
	case http.StatusNotFound:
		return &apierror.Error{Code: apierror.CodeNotFound, Message: "coingecko not found: " + message, UpstreamStatus: status}
	default:
		return apierror.Upstream(status, "coingecko api error: "+message)
	}
}

// upstreamMessage extracts {error|message} from an error body, falling back
// to the first 200 bytes of text and then to the status line.
func upstreamMessage(statusText string, body []byte) string {
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Status  struct {
			ErrorMessage string `json:"error_message"`
		} `json:"status"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		switch {
		case parsed.Error != "":
			return parsed.Error
		case parsed.Message != "":
			return parsed.Message
		case parsed.Status.ErrorMessage != "":
			return parsed.Status.ErrorMessage
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		if len(text) > 200 {
			text = text[:200]
		}
		return text
	}
	return statusText
}

func invalidCoinID(id string) error {
	if len(id) > 50 {
		id = id[:50]
	}
	return apierror.BadRequest(fmt.Sprintf("invalid coin id: %q", id))
}

func endSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(apierror.CodeOf(err)))
	return err
}
