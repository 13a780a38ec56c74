package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// OHLCCandle is one open/high/low/close bucket. On the wire it is the
// upstream 5-tuple [timestamp_ms, open, high, low, close].
type OHLCCandle struct {
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
}

func (c OHLCCandle) Time() time.Time {
	return time.UnixMilli(c.Timestamp).UTC()
}

func (c OHLCCandle) MarshalJSON() ([]byte, error) {
	return json.Marshal([5]float64{float64(c.Timestamp), c.Open, c.High, c.Low, c.Close})
}

func (c *OHLCCandle) UnmarshalJSON(data []byte) error {
	var raw []float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 5 {
		return fmt.Errorf("ohlc candle: expected 5 values, got %d", len(raw))
	}
	*c = OHLCCandle{
		Timestamp: int64(raw[0]),
		Open:      raw[1],
		High:      raw[2],
		Low:       raw[3],
		Close:     raw[4],
	}
	return nil
}

// SupportedOHLCDays lists the day ranges accepted for candle requests.
var SupportedOHLCDays = []int{1, 7, 14, 30, 90}

// RouteOHLCDays is the narrower set the public candle endpoint accepts.
var RouteOHLCDays = []int{1, 7, 30, 90}

// NormalizeOHLCDays returns days when supported, otherwise 1.
func NormalizeOHLCDays(days int) int {
	return pickDays(SupportedOHLCDays, days)
}

// NormalizeRouteOHLCDays returns days when the public endpoint accepts it,
// otherwise 1.
func NormalizeRouteOHLCDays(days int) int {
	return pickDays(RouteOHLCDays, days)
}

func pickDays(allowed []int, days int) int {
	for _, d := range allowed {
		if d == days {
			return days
		}
	}
	return 1
}
