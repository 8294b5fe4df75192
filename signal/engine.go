package signal

import (
	"fmt"
	"math"
	"time"

	"pivotdash/feed"
	"pivotdash/indicator"
	"pivotdash/model"
	"pivotdash/utils/log"
)

const (
	emaFastPeriod = 9
	emaSlowPeriod = 21
	rsiPeriod     = 14
	bbPeriod      = 20
	bbDev         = 2.0
	pivotLookback = 5

	// 5표 중 3표 이상일 때만 시그널 발행
	confidenceThreshold = 0.6
	voteCount           = 5
)

// Engine scores each closed candle with a fixed set of confluence votes and
// publishes a Signal when enough of them agree. Pivot levels are recomputed
// every candle and handed to the sink regardless of the vote outcome.
type Engine struct {
	pair       string
	timeframe  string
	signalFeed *feed.SignalFeedSubscription
	levelsSink func(model.PivotLevels)

	// optional: latest snapshot consumer (indicator board)
	SnapshotSink func(pair, timeframe string, snapshot model.IndicatorSnapshot, at time.Time)

	// 같은 방향 시그널은 방향이 바뀔 때까지 재발행하지 않음
	lastDirection model.SignalDirection
}

func NewEngine(pair, timeframe string, signalFeed *feed.SignalFeedSubscription, levelsSink func(model.PivotLevels)) *Engine {
	return &Engine{
		pair:       pair,
		timeframe:  timeframe,
		signalFeed: signalFeed,
		levelsSink: levelsSink,
	}
}

func (e *Engine) GetName() string {
	return fmt.Sprintf("confluence-%s-%s", e.pair, e.timeframe)
}

func (e *Engine) Timeframe() string {
	return e.timeframe
}

func (e *Engine) WarmupPeriod() int {
	// MACD(12,26,9) 워밍업과 range window 중 큰 쪽
	warmup := 40
	if w := indicator.RangeWindow(e.timeframe); w > warmup {
		warmup = w
	}
	return warmup
}

func (e *Engine) Indicators(df *model.Dataframe) []indicator.ChartIndicator {
	df.Metadata["ema_fast"] = indicator.EMA(df.Close, emaFastPeriod)
	df.Metadata["ema_slow"] = indicator.EMA(df.Close, emaSlowPeriod)
	df.Metadata["rsi"] = indicator.RSI(df.Close, rsiPeriod)

	macd, macdSignal, macdHist := indicator.MACD(df.Close, 12, 26, 9)
	df.Metadata["macd"] = macd
	df.Metadata["macd_signal"] = macdSignal
	df.Metadata["macd_hist"] = macdHist

	upper, middle, lower := indicator.BBands(df.Close, bbPeriod, bbDev)
	df.Metadata["bb_upper"] = upper
	df.Metadata["bb_middle"] = middle
	df.Metadata["bb_lower"] = lower

	return []indicator.ChartIndicator{
		{
			Overlay:   true,
			GroupName: "MA's",
			Time:      df.Time,
			Metrics: []indicator.IndicatorMetric{
				{Values: df.Metadata["ema_fast"], Name: fmt.Sprintf("EMA %d", emaFastPeriod), Color: "red", Style: indicator.StyleLine},
				{Values: df.Metadata["ema_slow"], Name: fmt.Sprintf("EMA %d", emaSlowPeriod), Color: "blue", Style: indicator.StyleLine},
			},
		},
		{
			Overlay:   false,
			GroupName: "MACD",
			Time:      df.Time,
			Metrics: []indicator.IndicatorMetric{
				{Values: df.Metadata["macd"], Name: "MACD", Color: "blue", Style: indicator.StyleLine},
				{Values: df.Metadata["macd_signal"], Name: "MACD Signal", Color: "red", Style: indicator.StyleLine},
				{Values: df.Metadata["macd_hist"], Name: "MACD Hist", Color: "gray", Style: indicator.StyleBar},
			},
		},
		{
			Overlay:   false,
			GroupName: "RSI",
			Time:      df.Time,
			Metrics: []indicator.IndicatorMetric{
				{Values: df.Metadata["rsi"], Name: fmt.Sprintf("RSI %d", rsiPeriod), Color: "purple", Style: indicator.StyleLine},
			},
		},
	}
}

func (e *Engine) OnCandle(df *model.Dataframe) {
	closePrice := df.Close.Last(0)

	levels := indicator.CalculatePivotLevels(
		e.pair, e.timeframe, df.Close.Values(), df.Time, closePrice, pivotLookback)
	if e.levelsSink != nil {
		e.levelsSink(levels)
	}

	snapshot := model.IndicatorSnapshot{
		EMAFast:    df.Metadata["ema_fast"].Last(0),
		EMASlow:    df.Metadata["ema_slow"].Last(0),
		RSI:        df.Metadata["rsi"].Last(0),
		MACD:       df.Metadata["macd"].Last(0),
		MACDSignal: df.Metadata["macd_signal"].Last(0),
		BBUpper:    df.Metadata["bb_upper"].Last(0),
		BBLower:    df.Metadata["bb_lower"].Last(0),
	}

	if e.SnapshotSink != nil {
		e.SnapshotSink(e.pair, e.timeframe, snapshot, df.Time[len(df.Time)-1])
	}

	longVotes, shortVotes := e.countVotes(df, closePrice, levels)

	direction := model.SignalNeutral
	votes := 0
	if longVotes > shortVotes {
		direction = model.SignalLong
		votes = longVotes
	} else if shortVotes > longVotes {
		direction = model.SignalShort
		votes = shortVotes
	}

	confidence := float64(votes) / voteCount
	if direction == model.SignalNeutral || confidence < confidenceThreshold {
		return
	}
	if direction == e.lastDirection {
		return
	}
	e.lastDirection = direction

	sig := model.Signal{
		ID:         fmt.Sprintf("%s_%s_%d", e.pair, e.timeframe, df.Time[len(df.Time)-1].Unix()),
		Pair:       e.pair,
		Timeframe:  e.timeframe,
		Direction:  direction,
		Confidence: confidence,
		Entry:      closePrice,
		Targets:    pickTargets(levels),
		Stop:       pickStop(direction, closePrice, levels),
		Snapshot:   snapshot,
		CreatedAt:  time.Now(),
	}

	log.Infof("[SIGNAL] %s %s %s confidence=%.2f entry=%.2f", sig.Pair, sig.Timeframe, sig.Direction, sig.Confidence, sig.Entry)
	e.signalFeed.Publish(sig)
}

// countVotes : 5개의 합류 조건을 집계
//  1. EMA fast vs slow
//  2. MACD vs signal line
//  3. RSI 존 (70 초과 과매수면 기권)
//  4. 종가 vs 볼린저 중앙선
//  5. 피벗 레인지 편향
func (e *Engine) countVotes(df *model.Dataframe, closePrice float64, levels model.PivotLevels) (longVotes, shortVotes int) {
	emaFast := df.Metadata["ema_fast"].Last(0)
	emaSlow := df.Metadata["ema_slow"].Last(0)
	if !math.IsNaN(emaFast) && !math.IsNaN(emaSlow) {
		if emaFast > emaSlow {
			longVotes++
		} else if emaFast < emaSlow {
			shortVotes++
		}
	}

	macd := df.Metadata["macd"].Last(0)
	macdSignal := df.Metadata["macd_signal"].Last(0)
	if !math.IsNaN(macd) && !math.IsNaN(macdSignal) {
		if macd > macdSignal {
			longVotes++
		} else if macd < macdSignal {
			shortVotes++
		}
	}

	rsi := df.Metadata["rsi"].Last(0)
	if !math.IsNaN(rsi) {
		switch {
		case rsi > 70:
			// 과매수 구간은 롱에 가담하지 않음
		case rsi < 30:
			longVotes++
		case rsi >= 50:
			longVotes++
		default:
			shortVotes++
		}
	}

	bbMiddle := df.Metadata["bb_middle"].Last(0)
	if !math.IsNaN(bbMiddle) {
		if closePrice > bbMiddle {
			longVotes++
		} else if closePrice < bbMiddle {
			shortVotes++
		}
	}

	if levels.Bullish {
		longVotes++
	} else {
		shortVotes++
	}
	return longVotes, shortVotes
}

// pickTargets : 확장 타겟 중 앞쪽 3개
func pickTargets(levels model.PivotLevels) []model.FibTarget {
	if len(levels.Targets) <= 3 {
		return levels.Targets
	}
	return levels.Targets[:3]
}

// pickStop : 진입가 반대편에서 가장 가까운 히든 피벗
func pickStop(direction model.SignalDirection, entry float64, levels model.PivotLevels) float64 {
	if direction == model.SignalLong {
		candidates := []float64{
			levels.BullSide.Retrace618,
			levels.BullSide.Retrace786,
			levels.BullSide.Retrace500,
			levels.RangeLow,
		}
		return nearestBelow(entry, candidates, levels.RangeLow)
	}
	candidates := []float64{
		levels.BearSide.Retrace618,
		levels.BearSide.Retrace786,
		levels.BearSide.Retrace500,
		levels.RangeHigh,
	}
	return nearestAbove(entry, candidates, levels.RangeHigh)
}

func nearestBelow(entry float64, candidates []float64, fallback float64) float64 {
	best := math.Inf(-1)
	for _, c := range candidates {
		if c < entry && c > best {
			best = c
		}
	}
	if math.IsInf(best, -1) {
		return fallback
	}
	return best
}

func nearestAbove(entry float64, candidates []float64, fallback float64) float64 {
	best := math.Inf(1)
	for _, c := range candidates {
		if c > entry && c < best {
			best = c
		}
	}
	if math.IsInf(best, 1) {
		return fallback
	}
	return best
}
