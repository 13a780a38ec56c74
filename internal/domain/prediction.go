package domain

// PredictionMarket is a derived, non-authoritative market card. It is
// rebuilt on every request and never stored.
type PredictionMarket struct {
	CoinID                   string  `json:"coinId"`
	Name                     string  `json:"name"`
	Symbol                   string  `json:"symbol"`
	Image                    string  `json:"image"`
	CurrentPrice             float64 `json:"currentPrice"`
	TargetPrice              float64 `json:"targetPrice"`
	EndDate                  string  `json:"endDate"`
	MarketCap                float64 `json:"marketCap"`
	TotalVolume              float64 `json:"totalVolume"`
	PriceChangePercentage24h float64 `json:"priceChangePercentage24h"`
	AIPrediction             *string `json:"aiPrediction"`
}
