// Package format renders prices, percentages and large amounts for pages
// and prompts. All output uses English digit grouping.
package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Amount groups thousands and keeps at most maxDecimals fractional digits,
// dropping trailing zeros.
func Amount(v float64, maxDecimals int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	s := decimal.NewFromFloat(v).Round(maxDecimals).String()
	decimals := 0
	if i := strings.IndexByte(s, '.'); i >= 0 {
		decimals = len(s) - i - 1
	}
	return printer.Sprintf(fmt.Sprintf("%%.%df", decimals), v)
}

// Currency formats a USD amount. Values of at least one dollar get two
// decimals; smaller values keep up to eight so sub-cent tokens stay legible.
func Currency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "$0.00"
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	if v >= 1 || v == 0 {
		return sign + "$" + printer.Sprintf("%.2f", v)
	}
	return sign + "$" + Amount(v, 8)
}

// Percent formats v with two decimals and an explicit sign.
func Percent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0.00%"
	}
	if v > 0 {
		return fmt.Sprintf("+%.2f%%", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}

var compactUnits = []struct {
	threshold float64
	suffix    string
}{
	{1e12, "T"},
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

// Compact abbreviates large USD amounts, e.g. $1.28T.
func Compact(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "$0"
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	for _, u := range compactUnits {
		if v >= u.threshold {
			return fmt.Sprintf("%s$%.2f%s", sign, v/u.threshold, u.suffix)
		}
	}
	return sign + Currency(v)
}
