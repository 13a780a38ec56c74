package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	DefaultVsCurrency     = "usd"
	DefaultOrder          = "market_cap_desc"
	DefaultPerPage        = 250
	MaxPerPage            = 250
	DefaultPriceChangePct = "24h"

	MinSearchQueryLen = 2
	MaxSearchQueryLen = 100
)

var currencyPattern = regexp.MustCompile(`^[a-z0-9]{2,10}$`)

var supportedOrders = map[string]bool{
	"market_cap_desc": true,
	"market_cap_asc":  true,
	"volume_desc":     true,
	"volume_asc":      true,
	"id_asc":          true,
	"id_desc":         true,
}

// MarketsParams are the query parameters of a /coins/markets request.
type MarketsParams struct {
	VsCurrency            string
	Order                 string
	PerPage               int
	Page                  int
	Sparkline             bool
	PriceChangePercentage string
}

// Normalize fills defaults and clamps ranges. It never fails; use
// ValidCurrency to reject a caller-supplied currency first.
func (p MarketsParams) Normalize() MarketsParams {
	p.VsCurrency = strings.ToLower(strings.TrimSpace(p.VsCurrency))
	if p.VsCurrency == "" {
		p.VsCurrency = DefaultVsCurrency
	}
	if !supportedOrders[p.Order] {
		p.Order = DefaultOrder
	}
	switch {
	case p.PerPage <= 0:
		p.PerPage = DefaultPerPage
	case p.PerPage > MaxPerPage:
		p.PerPage = MaxPerPage
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PriceChangePercentage == "" {
		p.PriceChangePercentage = DefaultPriceChangePct
	}
	return p
}

func ValidCurrency(code string) bool {
	return currencyPattern.MatchString(strings.ToLower(strings.TrimSpace(code)))
}

// Paginate returns items[(page-1)*perPage : page*perPage], truncated to the
// slice length. Pages past the end yield an empty slice.
func Paginate[T any](items []T, page, perPage int) []T {
	if perPage <= 0 {
		return nil
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= len(items) {
		return []T{}
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// PageCount is the number of pages needed for n items, at least 1.
func PageCount(n, perPage int) int {
	if perPage <= 0 || n <= 0 {
		return 1
	}
	return (n + perPage - 1) / perPage
}

// SearchableQuery reports whether the trimmed query is between
// MinSearchQueryLen and MaxSearchQueryLen characters long.
func SearchableQuery(query string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(query))
	return n >= MinSearchQueryLen && n <= MaxSearchQueryLen
}
