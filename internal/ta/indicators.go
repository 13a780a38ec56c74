// Package ta derives chart indicators from OHLC candles for the coin page.
package ta

import (
	"math"

	"coinhub/internal/domain"
)

const (
	rsiPeriod       = 14
	macdFast        = 12
	macdSlow        = 26
	macdSignal      = 9
	bollingerPeriod = 20
	bollingerWidth  = 2.0
)

// Summary is the latest value of each indicator over a candle series.
type Summary struct {
	Open      float64
	Close     float64
	High      float64
	Low       float64
	ChangePct float64

	// RSI is NaN when there are not enough candles.
	RSI        float64
	MACD       float64
	MACDSignal float64
	// BandPosition places the last close inside the Bollinger band:
	// 0 at the lower band, 1 at the upper band.
	BandPosition float64
}

func (s Summary) HasRSI() bool { return !math.IsNaN(s.RSI) }

// Momentum reads the MACD histogram sign.
func (s Summary) Momentum() string {
	switch h := s.MACD - s.MACDSignal; {
	case h > 0:
		return "bullish"
	case h < 0:
		return "bearish"
	default:
		return "neutral"
	}
}

// Summarize reports false for an empty series.
func Summarize(candles []domain.OHLCCandle) (Summary, bool) {
	if len(candles) == 0 {
		return Summary{}, false
	}
	closes := make([]float64, len(candles))
	s := Summary{
		Open: candles[0].Open,
		High: candles[0].High,
		Low:  candles[0].Low,
	}
	for i, c := range candles {
		closes[i] = c.Close
		s.High = math.Max(s.High, c.High)
		s.Low = math.Min(s.Low, c.Low)
	}
	s.Close = closes[len(closes)-1]
	if s.Open != 0 {
		s.ChangePct = (s.Close - s.Open) / s.Open * 100
	}

	s.RSI = math.NaN()
	if rsi := RSISeries(closes, rsiPeriod); rsi != nil {
		s.RSI = rsi[len(rsi)-1]
	}
	macd, signal := MACDSeries(closes, macdFast, macdSlow, macdSignal)
	s.MACD, s.MACDSignal = macd[len(macd)-1], signal[len(signal)-1]

	s.BandPosition = math.NaN()
	if len(closes) >= bollingerPeriod {
		mean, std := MeanStd(closes[len(closes)-bollingerPeriod:])
		lower, upper := mean-bollingerWidth*std, mean+bollingerWidth*std
		if upper > lower {
			s.BandPosition = (s.Close - lower) / (upper - lower)
		}
	}
	return s, true
}

// MeanStd returns the population mean and standard deviation.
func MeanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return mean, math.Sqrt(variance / float64(len(values)))
}

// EMASeries seeds with the first value.
func EMASeries(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}
	out := make([]float64, len(values))
	out[0] = values[0]
	alpha := 1.0
	if period > 1 {
		alpha = 2.0 / float64(period+1)
	}
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// RSISeries uses Wilder smoothing. Entries before period are NaN; nil is
// returned when the series is too short.
func RSISeries(closes []float64, period int) []float64 {
	if period <= 0 || len(closes) <= period {
		return nil
	}
	out := make([]float64, len(closes))
	for i := range out[:period] {
		out[i] = math.NaN()
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		gain, loss := split(closes[i] - closes[i-1])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsi(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		gain, loss := split(closes[i] - closes[i-1])
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsi(avgGain, avgLoss)
	}
	return out
}

func split(delta float64) (gain, loss float64) {
	if delta > 0 {
		return delta, 0
	}
	return 0, -delta
}

func rsi(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	return 100 - 100/(1+avgGain/avgLoss)
}

// MACDSeries returns the MACD line and its signal line.
func MACDSeries(values []float64, fast, slow, signal int) ([]float64, []float64) {
	if len(values) == 0 {
		return nil, nil
	}
	fastEMA := EMASeries(values, fast)
	slowEMA := EMASeries(values, slow)
	line := make([]float64, len(values))
	for i := range values {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	return line, EMASeries(line, signal)
}
