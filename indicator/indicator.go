package indicator

import (
	"math"
	"time"

	"github.com/markcheno/go-talib"

	"pivotdash/model"
)

type MetricStyle string

const (
	StyleBar       = "bar"
	StyleScatter   = "scatter"
	StyleLine      = "line"
	StyleHistogram = "histogram"
)

type IndicatorMetric struct {
	Name   string
	Color  string
	Style  MetricStyle // default: line
	Values model.Series[float64]
}

type ChartIndicator struct {
	Time      []time.Time
	Metrics   []IndicatorMetric
	Overlay   bool
	GroupName string
	Warmup    int
}

// EMA : exponential moving average over a close series
func EMA(source model.Series[float64], period int) model.Series[float64] {
	if len(source) < period {
		return nanSeries(len(source))
	}
	return talib.Ema(source, period)
}

// SMA : simple moving average over a close series
func SMA(source model.Series[float64], period int) model.Series[float64] {
	if len(source) < period {
		return nanSeries(len(source))
	}
	return talib.Sma(source, period)
}

// RSI : relative strength index
func RSI(source model.Series[float64], period int) model.Series[float64] {
	if len(source) <= period {
		return nanSeries(len(source))
	}
	return talib.Rsi(source, period)
}

// MACD : returns macd, signal and histogram series
func MACD(source model.Series[float64], fast, slow, signalPeriod int) (macd, signal, hist model.Series[float64]) {
	if len(source) < slow+signalPeriod {
		n := len(source)
		return nanSeries(n), nanSeries(n), nanSeries(n)
	}
	m, s, h := talib.Macd(source, fast, slow, signalPeriod)
	return m, s, h
}

// BBands : returns upper, middle and lower Bollinger bands
func BBands(source model.Series[float64], period int, dev float64) (upper, middle, lower model.Series[float64]) {
	if len(source) < period {
		n := len(source)
		return nanSeries(n), nanSeries(n), nanSeries(n)
	}
	u, m, l := talib.BBands(source, period, dev, dev, talib.SMA)
	return u, m, l
}

// Stoch : slow stochastic oscillator (%K, %D)
func Stoch(high, low, close model.Series[float64], fastK, slowK, slowD int) (k, d model.Series[float64]) {
	if len(close) < fastK+slowK+slowD {
		n := len(close)
		return nanSeries(n), nanSeries(n)
	}
	sk, sd := talib.Stoch(high, low, close, fastK, slowK, talib.SMA, slowD, talib.SMA)
	return sk, sd
}

func nanSeries(n int) model.Series[float64] {
	out := make(model.Series[float64], n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// CustomEMA : NaN-padded EMA over candles, for callers that feed raw candle
// slices instead of a dataframe column. talib zero-pads its warmup region,
// which poisons chart scaling, so the warmup here is NaN.
func CustomEMA(data []model.Candle, window int) []float64 {
	ema := make([]float64, len(data))
	k := 2.0 / (float64(window) + 1)

	var previousEMA float64
	for i := 0; i < len(data); i++ {
		if i == window-1 {
			sum := 0.0
			for j := i - window + 1; j <= i; j++ {
				sum += data[j].Close
			}
			previousEMA = sum / float64(window)
			ema[i] = previousEMA
		} else if i >= window {
			previousEMA = (data[i].Close-previousEMA)*k + previousEMA
			ema[i] = previousEMA
		} else {
			ema[i] = math.NaN()
		}
	}
	return ema
}

// CustomRSI : NaN-padded RSI over candles
func CustomRSI(data []model.Candle, period int) []float64 {
	rsi := make([]float64, len(data))
	gains := make([]float64, len(data))
	losses := make([]float64, len(data))

	for i := 1; i < len(data); i++ {
		change := data[i].Close - data[i-1].Close
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	for i := 0; i < len(data) && i < period; i++ {
		rsi[i] = math.NaN()
	}

	for i := period; i < len(data); i++ {
		avgGain := 0.0
		avgLoss := 0.0
		for j := i - period + 1; j <= i; j++ {
			avgGain += gains[j]
			avgLoss += losses[j]
		}
		avgGain /= float64(period)
		avgLoss /= float64(period)

		if avgLoss == 0 {
			rsi[i] = 100
		} else {
			rs := avgGain / avgLoss
			rsi[i] = 100 - (100 / (1 + rs))
		}
	}

	return rsi
}
