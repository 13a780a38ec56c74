package prediction

import (
	"fmt"
	"strings"

	"coinhub/internal/domain"
	"coinhub/internal/format"
)

const systemPrompt = `You are a crypto market analyst. Given the following market data, respond with 1-2 sentences only: direction (bullish, bearish, or neutral) and optional price level or caveat. Do not give financial advice. Be concise.`

// MarketSummary renders the user message sent for one market.
func MarketSummary(m domain.PredictionMarket) string {
	parts := []string{
		fmt.Sprintf("Coin: %s (%s)", m.Name, strings.ToUpper(m.Symbol)),
		fmt.Sprintf("Current price: $%s", format.Amount(m.CurrentPrice, 6)),
		fmt.Sprintf("24h change: %.2f%%", m.PriceChangePercentage24h),
		fmt.Sprintf("Market cap: $%s", format.Amount(m.MarketCap, 0)),
		fmt.Sprintf("24h volume: $%s", format.Amount(m.TotalVolume, 0)),
		fmt.Sprintf("Target price: $%s by %s", format.Amount(m.TargetPrice, 8), m.EndDate),
	}
	return strings.Join(parts, ". ")
}
