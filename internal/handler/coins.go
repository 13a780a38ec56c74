package handler

import (
	"net/http"
	"strconv"
	"strings"

	"coinhub/internal/apierror"
	"coinhub/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// ListCoins godoc
// @Summary      List coins by market cap
// @Description  Returns one cached page of the markets listing
// @Tags         coins
// @Produce      json
// @Param        vs_currency  query  string  false  "Quote currency"  default(usd)
// @Param        per_page     query  int     false  "Page size (1-250)"  default(250)
// @Param        page         query  int     false  "Page number"  default(1)
// @Success      200  {array}   domain.MarketCoin
// @Failure      400  {object}  apierror.FormattedError
// @Failure      429  {object}  apierror.FormattedError
// @Failure      503  {object}  apierror.FormattedError
// @Router       /api/coins [get]
func (h *Handler) ListCoins(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-coins")
	defer span.End()

	params := domain.MarketsParams{
		VsCurrency: c.DefaultQuery("vs_currency", domain.DefaultVsCurrency),
		PerPage:    queryInt(c, "per_page", domain.DefaultPerPage),
		Page:       queryInt(c, "page", 1),
	}
	span.SetAttributes(
		attribute.String("vs_currency", params.VsCurrency),
		attribute.Int("page", params.Page),
		attribute.Int("per_page", params.PerPage),
	)

	coins, err := h.markets.GetMarkets(ctx, params)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coins)
}

// GetCoin godoc
// @Summary      Get coin details
// @Description  Returns cached details for one coin
// @Tags         coins
// @Produce      json
// @Param        id  path  string  true  "Coin id (e.g. bitcoin)"
// @Success      200  {object}  domain.CoinDetails
// @Failure      400  {object}  apierror.FormattedError
// @Failure      404  {object}  apierror.FormattedError
// @Router       /api/coins/{id} [get]
func (h *Handler) GetCoin(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-coin")
	defer span.End()

	id, ok := domain.NormalizeCoinID(c.Param("id"))
	if !ok {
		h.respondError(c, apierror.BadRequest("invalid coin id"))
		return
	}
	span.SetAttributes(attribute.String("coin_id", id))

	coin, err := h.markets.GetCoinDetails(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if coin == nil {
		h.respondError(c, apierror.NotFound("coin not found: "+id))
		return
	}
	c.JSON(http.StatusOK, coin)
}

// GetOHLC godoc
// @Summary      Get OHLC candles
// @Description  Returns [timestamp, open, high, low, close] candles in USD
// @Tags         coins
// @Produce      json
// @Param        id    path   string  true   "Coin id"
// @Param        days  query  int     false  "Range in days (1, 7, 30, 90)"  default(1)
// @Success      200  {array}   domain.OHLCCandle
// @Failure      400  {object}  apierror.FormattedError
// @Router       /api/coins/{id}/ohlc [get]
func (h *Handler) GetOHLC(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-ohlc")
	defer span.End()

	id, ok := domain.NormalizeCoinID(c.Param("id"))
	if !ok {
		h.respondError(c, apierror.BadRequest("invalid coin id"))
		return
	}
	days := domain.NormalizeRouteOHLCDays(queryInt(c, "days", 1))
	span.SetAttributes(attribute.String("coin_id", id), attribute.Int("days", days))

	candles, err := h.markets.GetOHLC(ctx, id, days)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, candles)
}

// ListCategories godoc
// @Summary      List coin categories
// @Tags         coins
// @Produce      json
// @Success      200  {array}   domain.Category
// @Failure      429  {object}  apierror.FormattedError
// @Router       /api/categories [get]
func (h *Handler) ListCategories(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-categories")
	defer span.End()

	categories, err := h.markets.GetCategories(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// ListTrending godoc
// @Summary      List trending coins
// @Tags         coins
// @Produce      json
// @Success      200  {object}  domain.TrendingResult
// @Failure      429  {object}  apierror.FormattedError
// @Router       /api/trending [get]
func (h *Handler) ListTrending(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-trending")
	defer span.End()

	trending, err := h.markets.GetTrendingCoins(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trending)
}

// SearchCoins godoc
// @Summary      Search coins
// @Description  Queries shorter than 2 or longer than 100 characters return an empty list
// @Tags         coins
// @Produce      json
// @Param        q  query  string  true  "Search text"
// @Success      200  {object}  domain.SearchResult
// @Failure      429  {object}  apierror.FormattedError
// @Router       /api/search [get]
func (h *Handler) SearchCoins(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.search")
	defer span.End()

	query := strings.TrimSpace(c.Query("q"))
	span.SetAttributes(attribute.Int("query.length", len(query)))

	if !domain.SearchableQuery(query) {
		c.JSON(http.StatusOK, domain.SearchResult{Coins: []domain.SearchResultCoin{}})
		return
	}

	result, err := h.markets.Search(ctx, query)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// queryInt reads a positive integer query parameter, falling back to def
// when it is missing or malformed.
func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
