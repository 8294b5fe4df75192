package indicator

import (
	"time"

	"pivotdash/model"
)

// Fibonacci extension ratios, projected beyond the recent range.
var fibRatios = []float64{0.618, 1.0, 1.272, 1.414, 1.618, 2.0, 2.618}

// window sizes per timeframe for the range calculation
var rangeWindow = map[string]int{
	"15m": 96,
	"1h":  48,
	"4h":  42,
	"1d":  30,
}

const defaultRangeWindow = 50

// RangeWindow returns how many recent candles the range min/max covers.
func RangeWindow(timeframe string) int {
	if n, ok := rangeWindow[timeframe]; ok {
		return n
	}
	return defaultRangeWindow
}

// DetectPivots finds local extrema: index i is a pivot high (low) when its
// price strictly exceeds (is strictly below) every price within lookback
// positions on both sides. Indices without a full window on either side are
// never pivots.
func DetectPivots(prices []float64, times []time.Time, lookback int) []model.PivotPoint {
	if lookback < 1 || len(prices) < 2*lookback+1 {
		return nil
	}

	var pivots []model.PivotPoint
	for i := lookback; i < len(prices)-lookback; i++ {
		isHigh := true
		isLow := true
		for j := i - lookback; j <= i+lookback; j++ {
			if j == i {
				continue
			}
			if prices[j] >= prices[i] {
				isHigh = false
			}
			if prices[j] <= prices[i] {
				isLow = false
			}
			if !isHigh && !isLow {
				break
			}
		}

		var kind model.PivotKind
		switch {
		case isHigh:
			kind = model.PivotHigh
		case isLow:
			kind = model.PivotLow
		default:
			continue
		}

		p := model.PivotPoint{Index: i, Price: prices[i], Kind: kind}
		if i < len(times) {
			p.Time = times[i]
		}
		pivots = append(pivots, p)
	}
	return pivots
}

// RecentRange returns min/max over the most recent n prices.
func RecentRange(prices []float64, n int) (low, high float64) {
	if len(prices) == 0 {
		return 0, 0
	}
	start := len(prices) - n
	if start < 0 {
		start = 0
	}
	low, high = prices[start], prices[start]
	for _, p := range prices[start+1:] {
		if p < low {
			low = p
		}
		if p > high {
			high = p
		}
	}
	return low, high
}

// Extensions projects Fibonacci targets beyond the range. Bullish bias
// projects above the high, bearish below the low.
func Extensions(low, high float64, bullish bool) []model.FibTarget {
	rng := high - low
	targets := make([]model.FibTarget, 0, len(fibRatios))
	for _, ratio := range fibRatios {
		var price float64
		if bullish {
			price = high + rng*(ratio-1)
		} else {
			price = low - rng*(ratio-1)
		}
		targets = append(targets, model.FibTarget{
			Ratio:    ratio,
			Price:    price,
			Strength: targetStrength(ratio),
		})
	}
	return targets
}

func targetStrength(ratio float64) model.TargetStrength {
	switch ratio {
	case 0.618, 1.618, 2.618:
		return model.StrengthStrong
	case 1.0, 2.0:
		return model.StrengthModerate
	default:
		return model.StrengthWeak
	}
}

// HiddenLevels computes the five fixed retracement/extension levels for both
// sides of the range: 61.8%, 78.6% and 50% retracements, plus 27.2% and
// 61.8% projections beyond the extreme.
func HiddenLevels(low, high float64) (bull, bear model.HiddenPivots) {
	rng := high - low
	bull = model.HiddenPivots{
		Retrace618: high - rng*0.618,
		Retrace786: high - rng*0.786,
		Retrace500: high - rng*0.5,
		Extend272:  high + rng*0.272,
		Extend618:  high + rng*0.618,
	}
	bear = model.HiddenPivots{
		Retrace618: low + rng*0.618,
		Retrace786: low + rng*0.786,
		Retrace500: low + rng*0.5,
		Extend272:  low - rng*0.272,
		Extend618:  low - rng*0.618,
	}
	return bull, bear
}

// CalculatePivotLevels runs the full calculator for one pair: pivot
// detection over the whole series, range over the timeframe window, and
// Fibonacci/hidden levels with bias from the current price. Constant or
// empty input collapses every level onto the price instead of producing NaN.
func CalculatePivotLevels(pair, timeframe string, prices []float64, times []time.Time, current float64, lookback int) model.PivotLevels {
	low, high := RecentRange(prices, RangeWindow(timeframe))
	if len(prices) == 0 {
		low, high = current, current
	}
	bullish := current >= (low+high)/2

	bull, bear := HiddenLevels(low, high)
	return model.PivotLevels{
		Pair:      pair,
		Timeframe: timeframe,
		RangeHigh: high,
		RangeLow:  low,
		Bullish:   bullish,
		Pivots:    DetectPivots(prices, times, lookback),
		Targets:   Extensions(low, high, bullish),
		BullSide:  bull,
		BearSide:  bear,
	}
}
