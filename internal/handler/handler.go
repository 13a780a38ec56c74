package handler

import (
	"context"
	"html/template"
	"net/http"
	"strings"
	"time"

	"coinhub/internal/apierror"
	"coinhub/internal/domain"
	"coinhub/internal/seo"
	"coinhub/internal/web"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// MarketReader is the cached market data surface the routes render.
type MarketReader interface {
	GetMarkets(ctx context.Context, params domain.MarketsParams) ([]domain.MarketCoin, error)
	GetCoinDetails(ctx context.Context, id string) (*domain.CoinDetails, error)
	GetOHLC(ctx context.Context, id string, days int) ([]domain.OHLCCandle, error)
	GetTrendingCoins(ctx context.Context) (domain.TrendingResult, error)
	GetCategories(ctx context.Context) ([]domain.Category, error)
	Search(ctx context.Context, query string) (domain.SearchResult, error)

	MarketsOrEmpty(ctx context.Context, params domain.MarketsParams) []domain.MarketCoin
	TrendingOrEmpty(ctx context.Context) domain.TrendingResult
	CategoriesOrEmpty(ctx context.Context) []domain.Category
}

// PredictionGenerator turns market rows into prediction cards.
type PredictionGenerator interface {
	BuildMarkets(coins []domain.MarketCoin) []domain.PredictionMarket
	GetPredictionsForMarkets(ctx context.Context, markets []domain.PredictionMarket) []domain.PredictionMarket
}

// RequestRecorder receives one observation per served request.
type RequestRecorder interface {
	ObserveHTTP(route, method string, status int, elapsed time.Duration)
}

type Options struct {
	SiteURL string
	// ErrorDetails adds internal error details to JSON error bodies.
	ErrorDetails bool
	Templates    *template.Template
	Recorder     RequestRecorder
}

type Handler struct {
	tracer       trace.Tracer
	markets      MarketReader
	predictions  PredictionGenerator
	siteURL      string
	errorDetails bool
	templates    *template.Template
	recorder     RequestRecorder
	now          func() time.Time
}

func New(tracer trace.Tracer, markets MarketReader, predictions PredictionGenerator, opts Options) (*Handler, error) {
	tmpl := opts.Templates
	if tmpl == nil {
		var err error
		if tmpl, err = web.Templates(); err != nil {
			return nil, err
		}
	}
	return &Handler{
		tracer:       tracer,
		markets:      markets,
		predictions:  predictions,
		siteURL:      seo.SiteURL(opts.SiteURL),
		errorDetails: opts.ErrorDetails,
		templates:    tmpl,
		recorder:     opts.Recorder,
		now:          time.Now,
	}, nil
}

// RegisterRoutes installs middleware, API routes and pages on r.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	// Keep encoded slashes and dots inside :id so they reach validation.
	r.UseRawPath = true
	r.UnescapePathValues = false
	r.RemoveExtraSlash = false
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	r.SetHTMLTemplate(h.templates)
	r.Use(RequestID(), AccessLog(), Observe(h.recorder))

	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.GET("/coins", h.ListCoins)
	api.GET("/coins/:id", h.GetCoin)
	api.GET("/coins/:id/ohlc", h.GetOHLC)
	api.GET("/categories", h.ListCategories)
	api.GET("/trending", h.ListTrending)
	api.GET("/search", h.SearchCoins)
	api.GET("/predictions", h.GetPredictions)
	api.POST("/predictions", h.CreatePredictions)

	r.GET("/", h.HomePage)
	r.GET("/coins", h.CoinsPage)
	r.GET("/coins/:id", h.CoinPage)
	r.GET("/predictions", h.PredictionsPage)
	r.GET("/robots.txt", h.Robots)
	r.GET("/sitemap.xml", h.Sitemap)

	r.NoRoute(h.NoRoute)
}

// NoRoute answers unmatched paths. Anything left under /api/coins/ could
// only be a malformed coin id such as "../../etc".
func (h *Handler) NoRoute(c *gin.Context) {
	path := c.Request.URL.Path
	switch {
	case strings.HasPrefix(path, "/api/coins/"):
		h.respondError(c, apierror.BadRequest("invalid coin id"))
	case strings.HasPrefix(path, "/api/"):
		h.respondError(c, apierror.NotFound("no such route"))
	default:
		h.renderNotFound(c, "The page you are looking for does not exist.")
	}
}

// respondError is the single JSON error path: every failure is formatted
// into the {error, code, timestamp, details?} envelope.
func (h *Handler) respondError(c *gin.Context, err error) {
	formatted := apierror.Format(err, h.errorDetails)
	_ = c.Error(err)
	c.AbortWithStatusJSON(formatted.StatusCode, formatted)
}

func isNotFound(err error) bool {
	return apierror.Is(err, apierror.CodeNotFound)
}

func (h *Handler) meta(path, title, description string, docs ...seo.Document) web.Meta {
	m := web.Meta{
		Title:       title,
		Description: description,
		Canonical:   h.siteURL + path,
	}
	for _, doc := range docs {
		if js, err := seo.Script(doc); err == nil {
			m.JSONLD = append(m.JSONLD, js)
		}
	}
	return m
}

func (h *Handler) renderNotFound(c *gin.Context, message string) {
	c.HTML(http.StatusNotFound, "not_found.html", web.MessagePage{
		Meta:    h.meta(c.Request.URL.Path, "Not found", message),
		Message: message,
	})
}

func (h *Handler) renderError(c *gin.Context, err error) {
	_ = c.Error(err)
	code := apierror.CodeOf(err)
	c.HTML(code.Status(), "error.html", web.MessagePage{
		Meta:      h.meta(c.Request.URL.Path, "Error", apierror.Message(code)),
		Message:   apierror.Message(code),
		RetryPath: c.Request.URL.RequestURI(),
	})
}
