package handler

import (
	"net/http"
	"strconv"
	"strings"

	"coinhub/internal/domain"
	"coinhub/internal/seo"
	"coinhub/internal/ta"
	"coinhub/internal/web"
	"coinhub/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

const (
	homeTopCoins = 10
	// The markets listing is fetched once at full size and paged locally:
	// the demo plan rejects page > 1.
	coinsPageFetch = 250
	coinsPerPage   = 10
	tickersShown   = 10
	technicalsDays = 7
)

// HomePage renders the trending, top coins and categories widgets. Each
// widget degrades to its empty state independently.
func (h *Handler) HomePage(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.page-home")
	defer span.End()

	coins := h.markets.MarketsOrEmpty(ctx, domain.MarketsParams{PerPage: homeTopCoins, Page: 1})
	trending := h.markets.TrendingOrEmpty(ctx)
	categories := h.markets.CategoriesOrEmpty(ctx)
	if len(categories) > homeTopCoins {
		categories = categories[:homeTopCoins]
	}

	c.HTML(http.StatusOK, "home.html", web.HomePage{
		Meta: h.meta("/", "Crypto prices, trending coins and categories",
			"Live cryptocurrency prices, market caps, trending coins and categories.",
			seo.WebSite(h.siteURL)),
		Trending:   trending.Coins,
		Coins:      coins,
		Categories: categories,
	})
}

// CoinsPage renders the paginated coin table and, with ?search=, the
// matching coins above it.
func (h *Handler) CoinsPage(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.page-coins")
	defer span.End()

	all, err := h.markets.GetMarkets(ctx, domain.MarketsParams{PerPage: coinsPageFetch, Page: 1})
	if err != nil {
		h.renderError(c, err)
		return
	}

	pages := domain.PageCount(len(all), coinsPerPage)
	page := min(queryInt(c, "page", 1), pages)
	span.SetAttributes(attribute.Int("page", page), attribute.Int("pages", pages))

	data := web.CoinsPage{
		Meta: h.meta("/coins", "All coins",
			"Every tracked cryptocurrency ranked by market cap.",
			seo.WebPage(h.siteURL, "/coins", "All coins", "Every tracked cryptocurrency ranked by market cap.")),
		Coins: domain.Paginate(all, page, coinsPerPage),
		Page:  page,
		Pages: pages,
	}
	if page > 1 {
		data.PrevPage = page - 1
	}
	if page < pages {
		data.NextPage = page + 1
	}

	if q := strings.TrimSpace(c.Query("search")); q != "" {
		data.Search = q
		data.Meta.Search = q
		if result, err := h.markets.Search(ctx, q); err != nil {
			logger.Warn("search unavailable", "error", err)
		} else {
			data.Results = result.Coins
		}
	}

	c.HTML(http.StatusOK, "coins.html", data)
}

// CoinPage renders one coin. Invalid or unknown ids get the not-found
// page; any other failure gets the error page with a retry link.
func (h *Handler) CoinPage(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.page-coin")
	defer span.End()

	id, ok := domain.NormalizeCoinID(c.Param("id"))
	if !ok {
		h.renderNotFound(c, "That coin does not exist.")
		return
	}
	span.SetAttributes(attribute.String("coin_id", id))

	coin, err := h.markets.GetCoinDetails(ctx, id)
	switch {
	case isNotFound(err), err == nil && coin == nil:
		h.renderNotFound(c, "We could not find a coin with id "+strconv.Quote(id)+".")
		return
	case err != nil:
		h.renderError(c, err)
		return
	}

	tickers := coin.Tickers
	if len(tickers) > tickersShown {
		tickers = tickers[:tickersShown]
	}
	description := coin.Name + " (" + strings.ToUpper(coin.Symbol) + ") price, market cap and chart."
	data := web.CoinPage{
		Meta: h.meta("/coins/"+id, coin.Name+" price", description,
			seo.FinancialProduct(h.siteURL, coin)),
		Coin:    coin,
		Days:    domain.SupportedOHLCDays,
		Tickers: tickers,
	}
	// The technicals panel is optional; a candle failure only hides it.
	if candles, err := h.markets.GetOHLC(ctx, id, technicalsDays); err != nil {
		logger.Warn("technicals unavailable", "coin_id", id, "error", err)
	} else if summary, ok := ta.Summarize(candles); ok {
		data.Technicals = &summary
	}
	c.HTML(http.StatusOK, "coin.html", data)
}

// PredictionsPage renders the prediction cards.
func (h *Handler) PredictionsPage(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.page-predictions")
	defer span.End()

	markets, err := h.buildPredictions(ctx, defaultPredictionCoins)
	if err != nil {
		h.renderError(c, err)
		return
	}

	description := "Will the top coins hit their targets in 30 days? Generated prediction markets with AI commentary."
	c.HTML(http.StatusOK, "predictions.html", web.PredictionsPage{
		Meta: h.meta("/predictions", "Prediction markets", description,
			seo.WebPage(h.siteURL, "/predictions", "Prediction markets", description)),
		Markets: markets,
	})
}
