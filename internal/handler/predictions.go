package handler

import (
	"context"
	"net/http"

	"coinhub/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultPredictionCoins = 15
	maxPredictionCoins     = 50
)

// PredictionsRequest is the optional POST /api/predictions body.
type PredictionsRequest struct {
	Limit int `json:"limit"`
}

// GetPredictions godoc
// @Summary      List prediction markets
// @Description  Builds prediction cards from the top coins by market cap
// @Tags         predictions
// @Produce      json
// @Success      200  {array}   domain.PredictionMarket
// @Failure      429  {object}  apierror.FormattedError
// @Router       /api/predictions [get]
func (h *Handler) GetPredictions(c *gin.Context) {
	h.servePredictions(c, defaultPredictionCoins)
}

// CreatePredictions godoc
// @Summary      Generate prediction markets
// @Description  Same as GET; the optional limit (1-50, default 15) sets how many top coins are considered
// @Tags         predictions
// @Accept       json
// @Produce      json
// @Param        request  body  PredictionsRequest  false  "Coin limit"
// @Success      200  {array}   domain.PredictionMarket
// @Failure      429  {object}  apierror.FormattedError
// @Router       /api/predictions [post]
func (h *Handler) CreatePredictions(c *gin.Context) {
	limit := defaultPredictionCoins
	var req PredictionsRequest
	// A missing or malformed body keeps the default.
	if err := c.ShouldBindJSON(&req); err == nil && req.Limit > 0 && req.Limit <= maxPredictionCoins {
		limit = req.Limit
	}
	h.servePredictions(c, limit)
}

func (h *Handler) servePredictions(c *gin.Context, limit int) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.predictions")
	defer span.End()
	span.SetAttributes(attribute.Int("limit", limit))

	markets, err := h.buildPredictions(ctx, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, markets)
}

func (h *Handler) buildPredictions(ctx context.Context, limit int) ([]domain.PredictionMarket, error) {
	coins, err := h.markets.GetMarkets(ctx, domain.MarketsParams{PerPage: limit, Page: 1})
	if err != nil {
		return nil, err
	}
	return h.predictions.GetPredictionsForMarkets(ctx, h.predictions.BuildMarkets(coins)), nil
}
