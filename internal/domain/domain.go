package domain

import (
	"regexp"
	"strings"
)

var coinIDPattern = regexp.MustCompile(`(?i)^[a-z0-9_-]{1,50}$`)

// ValidCoinID reports whether id is safe to use as an upstream path segment.
// The id is trimmed before matching.
func ValidCoinID(id string) bool {
	return coinIDPattern.MatchString(strings.TrimSpace(id))
}

// NormalizeCoinID trims id and returns ok=false when it is not a valid coin id.
func NormalizeCoinID(id string) (string, bool) {
	id = strings.TrimSpace(id)
	if !coinIDPattern.MatchString(id) {
		return "", false
	}
	return id, true
}

// CurrencyValues holds an amount keyed by lowercase currency code.
type CurrencyValues map[string]float64

func (v CurrencyValues) USD() float64 {
	return v["usd"]
}

func (v CurrencyValues) In(currency string) float64 {
	return v[strings.ToLower(currency)]
}
