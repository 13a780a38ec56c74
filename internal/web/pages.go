package web

import (
	"html/template"

	"coinhub/internal/domain"
	"coinhub/internal/ta"
)

// Meta feeds the shared head partial.
type Meta struct {
	Title       string
	Description string
	Canonical   string
	Search      string
	JSONLD      []template.JS
}

type HomePage struct {
	Meta       Meta
	Trending   []domain.TrendingEntry
	Coins      []domain.MarketCoin
	Categories []domain.Category
}

type CoinsPage struct {
	Meta     Meta
	Search   string
	Results  []domain.SearchResultCoin
	Coins    []domain.MarketCoin
	Page     int
	Pages    int
	PrevPage int
	NextPage int
}

type CoinPage struct {
	Meta    Meta
	Coin    *domain.CoinDetails
	Days    []int
	Tickers []domain.Ticker
	// Technicals covers the last week of candles; nil hides the panel.
	Technicals *ta.Summary
}

type PredictionsPage struct {
	Meta    Meta
	Markets []domain.PredictionMarket
}

// MessagePage backs both the not-found and the error page.
type MessagePage struct {
	Meta      Meta
	Message   string
	RetryPath string
}
