package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"coinhub/internal/apierror"
	"coinhub/internal/domain"

	"github.com/go-playground/validator/v10"
)

// Upstream payloads are decoded into wire structs first. Required fields are
// pointers so that a missing key and a zero value can be told apart; the
// validator rejects the payload before anything reaches the domain types.

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type marketCoinWire struct {
	ID                           *string  `json:"id" validate:"required,min=1"`
	Symbol                       *string  `json:"symbol" validate:"required"`
	Name                         *string  `json:"name" validate:"required"`
	Image                        *string  `json:"image" validate:"required"`
	CurrentPrice                 *float64 `json:"current_price" validate:"required"`
	MarketCap                    *float64 `json:"market_cap" validate:"required"`
	MarketCapRank                *int     `json:"market_cap_rank"`
	FullyDilutedValuation        *float64 `json:"fully_diluted_valuation"`
	TotalVolume                  *float64 `json:"total_volume" validate:"required"`
	High24h                      *float64 `json:"high_24h"`
	Low24h                       *float64 `json:"low_24h"`
	PriceChange24h               *float64 `json:"price_change_24h"`
	PriceChangePercentage24h     *float64 `json:"price_change_percentage_24h"`
	MarketCapChange24h           *float64 `json:"market_cap_change_24h"`
	MarketCapChangePercentage24h *float64 `json:"market_cap_change_percentage_24h"`
	CirculatingSupply            *float64 `json:"circulating_supply"`
	TotalSupply                  *float64 `json:"total_supply"`
	MaxSupply                    *float64 `json:"max_supply"`
	ATH                          *float64 `json:"ath"`
	ATHChangePercentage          *float64 `json:"ath_change_percentage"`
	ATHDate                      *string  `json:"ath_date"`
	ATL                          *float64 `json:"atl"`
	ATLChangePercentage          *float64 `json:"atl_change_percentage"`
	ATLDate                      *string  `json:"atl_date"`
	LastUpdated                  *string  `json:"last_updated" validate:"required"`
}

type coinDetailsWire struct {
	ID              *string                       `json:"id" validate:"required,min=1"`
	Name            *string                       `json:"name" validate:"required"`
	Symbol          *string                       `json:"symbol" validate:"required"`
	AssetPlatformID *string                       `json:"asset_platform_id"`
	DetailPlatforms map[string]detailPlatformWire `json:"detail_platforms"`
	Image           struct {
		Thumb string `json:"thumb"`
		Small string `json:"small"`
		Large string `json:"large"`
	} `json:"image"`
	MarketData    *marketDataWire `json:"market_data" validate:"required"`
	MarketCapRank *int            `json:"market_cap_rank"`
	Description   struct {
		En string `json:"en"`
	} `json:"description"`
	Links struct {
		Homepage       []string `json:"homepage"`
		BlockchainSite []string `json:"blockchain_site"`
		SubredditURL   *string  `json:"subreddit_url"`
	} `json:"links"`
	Tickers []tickerWire `json:"tickers"`
}

type detailPlatformWire struct {
	GeckoTerminalURL *string `json:"geckoterminal_url"`
	ContractAddress  *string `json:"contract_address"`
}

type currencyWire map[string]*float64

type marketDataWire struct {
	CurrentPrice                       currencyWire `json:"current_price" validate:"required"`
	PriceChange24hInCurrency           currencyWire `json:"price_change_24h_in_currency"`
	PriceChangePercentage24hInCurrency currencyWire `json:"price_change_percentage_24h_in_currency"`
	PriceChangePercentage30dInCurrency currencyWire `json:"price_change_percentage_30d_in_currency"`
	MarketCap                          currencyWire `json:"market_cap"`
	TotalVolume                        currencyWire `json:"total_volume"`
}

type tickerWire struct {
	Market struct {
		Name string `json:"name"`
	} `json:"market"`
	Base          string       `json:"base"`
	Target        string       `json:"target"`
	ConvertedLast currencyWire `json:"converted_last"`
	Timestamp     *string      `json:"timestamp"`
	TradeURL      *string      `json:"trade_url"`
}

type categoryWire struct {
	ID                 *string  `json:"id"`
	CategoryID         *string  `json:"category_id"`
	Name               *string  `json:"name" validate:"required"`
	Top3Coins          []string `json:"top_3_coins"`
	MarketCapChange24h *float64 `json:"market_cap_change_24h"`
	MarketCap          *float64 `json:"market_cap"`
	Volume24h          *float64 `json:"volume_24h"`
}

type trendingWire struct {
	Coins []trendingEntryWire `json:"coins" validate:"required,dive"`
}

type trendingEntryWire struct {
	Item *trendingItemWire `json:"item" validate:"required"`
}

type trendingItemWire struct {
	ID            *string `json:"id" validate:"required,min=1"`
	Name          *string `json:"name" validate:"required"`
	Symbol        *string `json:"symbol" validate:"required"`
	MarketCapRank *int    `json:"market_cap_rank"`
	Thumb         string  `json:"thumb"`
	Large         string  `json:"large"`
	Data          *struct {
		Price                    looseFloat   `json:"price"`
		PriceChangePercentage24h currencyWire `json:"price_change_percentage_24h"`
	} `json:"data"`
}

type searchWire struct {
	Coins []searchCoinWire `json:"coins" validate:"dive"`
}

type searchCoinWire struct {
	ID            *string `json:"id" validate:"required,min=1"`
	Name          *string `json:"name" validate:"required"`
	Symbol        *string `json:"symbol" validate:"required"`
	MarketCapRank *int    `json:"market_cap_rank"`
	Thumb         string  `json:"thumb"`
	Large         string  `json:"large"`
}

// looseFloat accepts a JSON number, a numeric string or null.
type looseFloat float64

func (f *looseFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = 0
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = looseFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("loose float %q: %w", s, err)
	}
	*f = looseFloat(n)
	return nil
}

func decodeMarkets(body []byte) ([]domain.MarketCoin, error) {
	var wire []marketCoinWire
	if err := decodeJSON("coins/markets", body, &wire); err != nil {
		return nil, err
	}

	coins := make([]domain.MarketCoin, 0, len(wire))
	for i, w := range wire {
		if err := validateStruct("coins/markets", fmt.Sprintf("[%d]", i), w); err != nil {
			return nil, err
		}
		coins = append(coins, domain.MarketCoin{
			ID:                           *w.ID,
			Symbol:                       *w.Symbol,
			Name:                         *w.Name,
			Image:                        *w.Image,
			CurrentPrice:                 *w.CurrentPrice,
			MarketCap:                    *w.MarketCap,
			MarketCapRank:                w.MarketCapRank,
			FullyDilutedValuation:        w.FullyDilutedValuation,
			TotalVolume:                  *w.TotalVolume,
			High24h:                      num(w.High24h),
			Low24h:                       num(w.Low24h),
			PriceChange24h:               num(w.PriceChange24h),
			PriceChangePercentage24h:     num(w.PriceChangePercentage24h),
			MarketCapChange24h:           num(w.MarketCapChange24h),
			MarketCapChangePercentage24h: num(w.MarketCapChangePercentage24h),
			CirculatingSupply:            num(w.CirculatingSupply),
			TotalSupply:                  w.TotalSupply,
			MaxSupply:                    w.MaxSupply,
			ATH:                          num(w.ATH),
			ATHChangePercentage:          num(w.ATHChangePercentage),
			ATHDate:                      str(w.ATHDate),
			ATL:                          num(w.ATL),
			ATLChangePercentage:          num(w.ATLChangePercentage),
			ATLDate:                      str(w.ATLDate),
			LastUpdated:                  *w.LastUpdated,
		})
	}
	return coins, nil
}

func decodeCoinDetails(body []byte) (*domain.CoinDetails, error) {
	var w coinDetailsWire
	if err := decodeJSON("coins/{id}", body, &w); err != nil {
		return nil, err
	}
	if err := validateStruct("coins/{id}", "", w); err != nil {
		return nil, err
	}
	if usd, ok := w.MarketData.CurrentPrice["usd"]; !ok || usd == nil {
		return nil, apierror.Validation("coins/{id}: response failed validation",
			[]string{"market_data.current_price.usd: required"}, nil)
	}

	details := &domain.CoinDetails{
		ID:              *w.ID,
		Name:            *w.Name,
		Symbol:          *w.Symbol,
		AssetPlatformID: w.AssetPlatformID,
		Image: domain.CoinImage{
			Thumb: w.Image.Thumb,
			Small: w.Image.Small,
			Large: w.Image.Large,
		},
		MarketData: domain.CoinMarketData{
			CurrentPrice:                       w.MarketData.CurrentPrice.values(),
			PriceChange24hInCurrency:           w.MarketData.PriceChange24hInCurrency.values(),
			PriceChangePercentage24hInCurrency: w.MarketData.PriceChangePercentage24hInCurrency.values(),
			PriceChangePercentage30dInCurrency: w.MarketData.PriceChangePercentage30dInCurrency.values(),
			MarketCap:                          w.MarketData.MarketCap.values(),
			TotalVolume:                        w.MarketData.TotalVolume.values(),
		},
		MarketCapRank: w.MarketCapRank,
		Description:   domain.CoinDescription{En: w.Description.En},
		Links: domain.CoinLinks{
			Homepage:       nonEmpty(w.Links.Homepage),
			BlockchainSite: nonEmpty(w.Links.BlockchainSite),
			SubredditURL:   str(w.Links.SubredditURL),
		},
		Tickers: make([]domain.Ticker, 0, len(w.Tickers)),
	}

	if len(w.DetailPlatforms) > 0 {
		details.DetailPlatforms = make(map[string]domain.DetailPlatform, len(w.DetailPlatforms))
		for name, p := range w.DetailPlatforms {
			details.DetailPlatforms[name] = domain.DetailPlatform{
				GeckoTerminalURL: str(p.GeckoTerminalURL),
				ContractAddress:  str(p.ContractAddress),
			}
		}
	}

	for _, t := range w.Tickers {
		details.Tickers = append(details.Tickers, domain.Ticker{
			Market:        domain.TickerMarket{Name: t.Market.Name},
			Base:          t.Base,
			Target:        t.Target,
			ConvertedLast: t.ConvertedLast.values(),
			Timestamp:     str(t.Timestamp),
			TradeURL:      t.TradeURL,
		})
	}
	return details, nil
}

func decodeOHLC(body []byte) ([]domain.OHLCCandle, error) {
	var rows [][]*float64
	if err := decodeJSON("coins/{id}/ohlc", body, &rows); err != nil {
		return nil, err
	}
	if err := validate.Var(rows, "dive,len=5,dive,required"); err != nil {
		return nil, validationError("coins/{id}/ohlc", "", err)
	}

	candles := make([]domain.OHLCCandle, 0, len(rows))
	for _, r := range rows {
		candles = append(candles, domain.OHLCCandle{
			Timestamp: int64(*r[0]),
			Open:      *r[1],
			High:      *r[2],
			Low:       *r[3],
			Close:     *r[4],
		})
	}
	return candles, nil
}

func decodeCategories(body []byte) ([]domain.Category, error) {
	var wire []categoryWire
	if err := decodeJSON("coins/categories", body, &wire); err != nil {
		return nil, err
	}

	categories := make([]domain.Category, 0, len(wire))
	for i, w := range wire {
		if err := validateStruct("coins/categories", fmt.Sprintf("[%d]", i), w); err != nil {
			return nil, err
		}
		id := str(w.CategoryID)
		if id == "" {
			id = str(w.ID)
		}
		top := w.Top3Coins
		if top == nil {
			top = []string{}
		}
		if len(top) > 3 {
			top = top[:3]
		}
		categories = append(categories, domain.Category{
			CategoryID:         id,
			Name:               *w.Name,
			Top3Coins:          top,
			MarketCapChange24h: num(w.MarketCapChange24h),
			MarketCap:          num(w.MarketCap),
			Volume24h:          num(w.Volume24h),
		})
	}
	return categories, nil
}

func decodeTrending(body []byte) (domain.TrendingResult, error) {
	var w trendingWire
	if err := decodeJSON("search/trending", body, &w); err != nil {
		return domain.TrendingResult{}, err
	}
	if err := validateStruct("search/trending", "", w); err != nil {
		return domain.TrendingResult{}, err
	}

	result := domain.TrendingResult{Coins: make([]domain.TrendingEntry, 0, len(w.Coins))}
	for _, e := range w.Coins {
		item := domain.TrendingItem{
			ID:            *e.Item.ID,
			Name:          *e.Item.Name,
			Symbol:        *e.Item.Symbol,
			MarketCapRank: e.Item.MarketCapRank,
			Thumb:         e.Item.Thumb,
			Large:         e.Item.Large,
			Data: domain.TrendingData{
				PriceChangePercentage24h: domain.CurrencyValues{},
			},
		}
		if e.Item.Data != nil {
			item.Data.Price = float64(e.Item.Data.Price)
			item.Data.PriceChangePercentage24h = e.Item.Data.PriceChangePercentage24h.values()
		}
		result.Coins = append(result.Coins, domain.TrendingEntry{Item: item})
	}
	return result, nil
}

func decodeSearch(body []byte) (domain.SearchResult, error) {
	var w searchWire
	if err := decodeJSON("search", body, &w); err != nil {
		return domain.SearchResult{}, err
	}
	if err := validateStruct("search", "", w); err != nil {
		return domain.SearchResult{}, err
	}

	result := domain.SearchResult{Coins: make([]domain.SearchResultCoin, 0, len(w.Coins))}
	for _, c := range w.Coins {
		result.Coins = append(result.Coins, domain.SearchResultCoin{
			ID:            *c.ID,
			Name:          *c.Name,
			Symbol:        *c.Symbol,
			MarketCapRank: c.MarketCapRank,
			Thumb:         c.Thumb,
			Large:         c.Large,
		})
	}
	return result, nil
}

func decodeJSON(endpoint string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return apierror.Validation(endpoint+": malformed response body", nil, err)
	}
	return nil
}

func validateStruct(endpoint, prefix string, v any) error {
	if err := validate.Struct(v); err != nil {
		return validationError(endpoint, prefix, err)
	}
	return nil
}

func validationError(endpoint, prefix string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierror.Validation(endpoint+": response failed validation", nil, err)
	}
	issues := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, fmt.Sprintf("%s: %s", fieldPath(prefix, fe.Namespace()), fe.Tag()))
	}
	return apierror.Validation(endpoint+": response failed validation", issues, err)
}

// fieldPath drops the wire struct name from a validator namespace and
// prefixes the element index, e.g. "[3].current_price".
func fieldPath(prefix, ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 && !strings.HasPrefix(ns, "[") {
		ns = ns[i+1:]
	}
	switch {
	case prefix == "":
		return ns
	case strings.HasPrefix(ns, "["):
		return prefix + ns
	default:
		return prefix + "." + ns
	}
}

func (c currencyWire) values() domain.CurrencyValues {
	out := make(domain.CurrencyValues, len(c))
	for k, v := range c {
		if v != nil {
			out[k] = *v
		}
	}
	return out
}

func num(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
