package handler

import (
	"net/http"

	"coinhub/internal/domain"
	"coinhub/internal/seo"
	"coinhub/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Robots serves robots.txt.
func (h *Handler) Robots(c *gin.Context) {
	c.String(http.StatusOK, seo.Robots(h.siteURL))
}

// Sitemap serves sitemap.xml. Coin entries are dropped when the markets
// listing is unavailable; the static routes are always present.
func (h *Handler) Sitemap(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.sitemap")
	defer span.End()

	coins, err := h.markets.GetMarkets(ctx, domain.MarketsParams{PerPage: seo.SitemapCoinLimit, Page: 1})
	if err != nil {
		logger.Warn("sitemap without coins", "error", err)
		coins = nil
	}

	body, err := seo.Sitemap(seo.SitemapEntries(h.siteURL, coins, h.now()))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}
