// Package history produces deterministic placeholder price series for pairs
// that have no live data. The same (symbol, timeframe) always reproduces the
// identical candles, so downstream output is regression-testable.
package history

import (
	"hash/fnv"
	"math"
	"strings"
	"time"

	"pivotdash/model"
	"pivotdash/utils/tools"
)

// quote-currency base prices for the random walk start
var basePrices = map[string]float64{
	"BTC": 65_000_000,
	"ETH": 3_400_000,
	"XRP": 750,
	"SOL": 210_000,
}

const defaultBasePrice = 10_000

const (
	driftPerCandle = 0.02  // max relative close-to-close move
	wickSpread     = 0.005 // max relative wick beyond the body
)

// Generator is a seeded sine-based pseudo-random source. Draws come from
// frac(sin(seed)*1e4) with the seed advancing by one per draw.
type Generator struct {
	seed float64
}

func NewGenerator(symbol, timeframe string) *Generator {
	h := fnv.New64a()
	h.Write([]byte(symbol + "|" + timeframe))
	return &Generator{seed: float64(h.Sum64() % 100_000)}
}

// Next returns the next pseudo-random value in [0, 1).
func (g *Generator) Next() float64 {
	g.seed++
	u := math.Sin(g.seed) * 10_000
	return u - math.Floor(u)
}

// BasePrice picks the walk's starting price from the pair's base asset.
// Pairs look like "KRW-BTC"; unknown assets share a default.
func BasePrice(pair string) float64 {
	parts := strings.Split(strings.ToUpper(pair), "-")
	base := parts[len(parts)-1]
	if p, ok := basePrices[base]; ok {
		return p
	}
	return defaultBasePrice
}

// Candles generates n chronological candles ending at end, spaced by the
// timeframe. High/low always bracket the body and volume is positive.
func Candles(pair, timeframe string, n int, end time.Time) []model.Candle {
	if n <= 0 {
		return nil
	}
	step, err := tools.ParseTimeframeToDuration(timeframe)
	if err != nil || step <= 0 {
		step = time.Hour
	}

	g := NewGenerator(pair, timeframe)
	price := BasePrice(pair)
	end = end.Truncate(step)

	out := make([]model.Candle, n)
	for i := 0; i < n; i++ {
		open := price
		change := (g.Next() - 0.5) * 2 * driftPerCandle
		closePrice := open * (1 + change)

		body := math.Max(open, closePrice)
		high := body * (1 + g.Next()*wickSpread)
		low := math.Min(open, closePrice) * (1 - g.Next()*wickSpread)
		volume := 50 + g.Next()*450

		ts := end.Add(-time.Duration(n-1-i) * step)
		out[i] = model.Candle{
			Pair:      pair,
			Time:      ts,
			UpdatedAt: ts,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePrice,
			Volume:    volume,
			Complete:  true,
			Metadata:  map[string]float64{"synthetic": 1},
		}
		price = closePrice
	}
	return out
}
