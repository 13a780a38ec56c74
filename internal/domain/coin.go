package domain

// MarketCoin is one row of the /coins/markets listing.
type MarketCoin struct {
	ID                           string   `json:"id"`
	Symbol                       string   `json:"symbol"`
	Name                         string   `json:"name"`
	Image                        string   `json:"image"`
	CurrentPrice                 float64  `json:"current_price"`
	MarketCap                    float64  `json:"market_cap"`
	MarketCapRank                *int     `json:"market_cap_rank"`
	FullyDilutedValuation        *float64 `json:"fully_diluted_valuation"`
	TotalVolume                  float64  `json:"total_volume"`
	High24h                      float64  `json:"high_24h"`
	Low24h                       float64  `json:"low_24h"`
	PriceChange24h               float64  `json:"price_change_24h"`
	PriceChangePercentage24h     float64  `json:"price_change_percentage_24h"`
	MarketCapChange24h           float64  `json:"market_cap_change_24h"`
	MarketCapChangePercentage24h float64  `json:"market_cap_change_percentage_24h"`
	CirculatingSupply            float64  `json:"circulating_supply"`
	TotalSupply                  *float64 `json:"total_supply"`
	MaxSupply                    *float64 `json:"max_supply"`
	ATH                          float64  `json:"ath"`
	ATHChangePercentage          float64  `json:"ath_change_percentage"`
	ATHDate                      string   `json:"ath_date"`
	ATL                          float64  `json:"atl"`
	ATLChangePercentage          float64  `json:"atl_change_percentage"`
	ATLDate                      string   `json:"atl_date"`
	LastUpdated                  string   `json:"last_updated"`
}

// Rank returns the market cap rank or 0 when upstream has none.
func (c MarketCoin) Rank() int {
	if c.MarketCapRank == nil {
		return 0
	}
	return *c.MarketCapRank
}

type CoinImage struct {
	Thumb string `json:"thumb,omitempty"`
	Small string `json:"small"`
	Large string `json:"large"`
}

type CoinMarketData struct {
	CurrentPrice                       CurrencyValues `json:"current_price"`
	PriceChange24hInCurrency           CurrencyValues `json:"price_change_24h_in_currency"`
	PriceChangePercentage24hInCurrency CurrencyValues `json:"price_change_percentage_24h_in_currency"`
	PriceChangePercentage30dInCurrency CurrencyValues `json:"price_change_percentage_30d_in_currency"`
	MarketCap                          CurrencyValues `json:"market_cap"`
	TotalVolume                        CurrencyValues `json:"total_volume"`
}

type CoinDescription struct {
	En string `json:"en"`
}

type CoinLinks struct {
	Homepage       []string `json:"homepage"`
	BlockchainSite []string `json:"blockchain_site"`
	SubredditURL   string   `json:"subreddit_url"`
}

type DetailPlatform struct {
	GeckoTerminalURL string `json:"geckoterminal_url"`
	ContractAddress  string `json:"contract_address"`
}

type TickerMarket struct {
	Name string `json:"name"`
}

type Ticker struct {
	Market        TickerMarket   `json:"market"`
	Base          string         `json:"base"`
	Target        string         `json:"target"`
	ConvertedLast CurrencyValues `json:"converted_last"`
	Timestamp     string         `json:"timestamp"`
	TradeURL      *string        `json:"trade_url"`
}

// CoinDetails is the /coins/{id} payload, reduced to what the app renders.
type CoinDetails struct {
	ID              string                    `json:"id"`
	Name            string                    `json:"name"`
	Symbol          string                    `json:"symbol"`
	AssetPlatformID *string                   `json:"asset_platform_id"`
	DetailPlatforms map[string]DetailPlatform `json:"detail_platforms,omitempty"`
	Image           CoinImage                 `json:"image"`
	MarketData      CoinMarketData            `json:"market_data"`
	MarketCapRank   *int                      `json:"market_cap_rank"`
	Description     CoinDescription           `json:"description"`
	Links           CoinLinks                 `json:"links"`
	Tickers         []Ticker                  `json:"tickers"`
}

type Category struct {
	CategoryID         string   `json:"category_id"`
	Name               string   `json:"name"`
	Top3Coins          []string `json:"top_3_coins"`
	MarketCapChange24h float64  `json:"market_cap_change_24h"`
	MarketCap          float64  `json:"market_cap"`
	Volume24h          float64  `json:"volume_24h"`
}

type TrendingData struct {
	Price                    float64        `json:"price"`
	PriceChangePercentage24h CurrencyValues `json:"price_change_percentage_24h"`
}

type TrendingItem struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Symbol        string       `json:"symbol"`
	MarketCapRank *int         `json:"market_cap_rank"`
	Thumb         string       `json:"thumb"`
	Large         string       `json:"large"`
	Data          TrendingData `json:"data"`
}

type TrendingEntry struct {
	Item TrendingItem `json:"item"`
}

// TrendingResult keeps the upstream {"coins": [...]} envelope so the JSON
// route returns the same shape the front end already consumes.
type TrendingResult struct {
	Coins []TrendingEntry `json:"coins"`
}

type SearchResultCoin struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank *int   `json:"market_cap_rank"`
	Thumb         string `json:"thumb"`
	Large         string `json:"large"`
}

type SearchResult struct {
	Coins []SearchResultCoin `json:"coins"`
}
