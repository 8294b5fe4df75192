package model

import "time"

type SignalDirection string

const (
	SignalLong    SignalDirection = "long"
	SignalShort   SignalDirection = "short"
	SignalNeutral SignalDirection = "neutral"
)

type TargetStrength string

const (
	StrengthStrong   TargetStrength = "strong"
	StrengthModerate TargetStrength = "moderate"
	StrengthWeak     TargetStrength = "weak"
)

// FibTarget : one projected price target beyond the recent range
type FibTarget struct {
	Ratio    float64        `json:"ratio"`
	Price    float64        `json:"price"`
	Strength TargetStrength `json:"strength"`
}

type PivotKind string

const (
	PivotHigh PivotKind = "high"
	PivotLow  PivotKind = "low"
)

// PivotPoint : a local extremum relative to a symmetric lookback window
type PivotPoint struct {
	Index int       `json:"index"`
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
	Kind  PivotKind `json:"kind"`
}

// HiddenPivots : the five retracement/extension levels for one side
type HiddenPivots struct {
	Retrace618 float64 `json:"retrace_618"`
	Retrace786 float64 `json:"retrace_786"`
	Retrace500 float64 `json:"retrace_500"`
	Extend272  float64 `json:"extend_272"`
	Extend618  float64 `json:"extend_618"`
}

// PivotLevels : full calculator output for one pair/timeframe
type PivotLevels struct {
	Pair      string       `json:"pair"`
	Timeframe string       `json:"timeframe"`
	RangeHigh float64      `json:"range_high"`
	RangeLow  float64      `json:"range_low"`
	Bullish   bool         `json:"bullish"`
	Pivots    []PivotPoint `json:"pivots"`
	Targets   []FibTarget  `json:"targets"`
	BullSide  HiddenPivots `json:"bull_side"`
	BearSide  HiddenPivots `json:"bear_side"`
}

// IndicatorSnapshot : the panel values that produced a signal
type IndicatorSnapshot struct {
	EMAFast    float64 `json:"ema_fast"`
	EMASlow    float64 `json:"ema_slow"`
	RSI        float64 `json:"rsi"`
	MACD       float64 `json:"macd"`
	MACDSignal float64 `json:"macd_signal"`
	BBUpper    float64 `json:"bb_upper"`
	BBLower    float64 `json:"bb_lower"`
}

type Signal struct {
	ID         string            `json:"id"`
	Pair       string            `json:"pair"`
	Timeframe  string            `json:"timeframe"`
	Direction  SignalDirection   `json:"direction"`
	Confidence float64           `json:"confidence"`
	Entry      float64           `json:"entry"`
	Targets    []FibTarget       `json:"targets"`
	Stop       float64           `json:"stop"`
	Snapshot   IndicatorSnapshot `json:"snapshot"`
	CreatedAt  time.Time         `json:"created_at"`
}
