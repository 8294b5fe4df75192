package interfaces

import (
	"context"
	"time"

	"pivotdash/indicator"
	"pivotdash/model"
)

type DataFeeder interface {
	LastQuote(pair string) (float64, error)
	CandlesByLimit(pair, period string, limit int) ([]model.Candle, error)
	CandlesByPeriod(pair, period string, start, end time.Time) ([]model.Candle, error)
	CandlesSubscription(pair, timeframe string) (chan model.Candle, chan error)
	Tickers(pairs []string) ([]model.Ticker, error)
	TickersSubscription(pairs []string) (chan model.Ticker, chan error)
	Start()
	Stop()
}

type Notifier interface {
	SendNotification(message string) error
	SignalNotifier(signal model.Signal)
}

type Analyzer interface {
	GetName() string
	// Timeframe is the candle interval the analyzer runs on. eg: 15m, 1h, 4h, 1d
	Timeframe() string
	// WarmupPeriod is the number of candles needed before OnCandle fires,
	// measured in the period specified by Timeframe.
	WarmupPeriod() int
	// Indicators is executed for each new candle to fill indicator series
	// before OnCandle is called.
	Indicators(df *model.Dataframe) []indicator.ChartIndicator
	// OnCandle runs after the candle close, once indicators are filled.
	OnCandle(df *model.Dataframe)
}

type UserStore interface {
	Create(ctx context.Context, user model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type ChartServer interface {
	OnCandle(candle model.Candle)
	OnIndicators(timestamp time.Time, values []IndicatorValue)
	OnPivots(levels model.PivotLevels)
	Start(port string) error
}

type IndicatorValue struct {
	Name  string
	Value float64
}
