package indicator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pivotdash/model"
)

func TestDetectPivots_StrictExtrema(t *testing.T) {
	//        0   1    2    3   4    5   6
	prices := []float64{10, 12, 15, 11, 9, 13, 10}
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, len(prices))
	for i := range times {
		times[i] = base.Add(time.Duration(i) * time.Hour)
	}

	pivots := DetectPivots(prices, times, 2)
	require.Len(t, pivots, 2)

	require.Equal(t, 2, pivots[0].Index)
	require.Equal(t, model.PivotHigh, pivots[0].Kind)
	require.Equal(t, 15.0, pivots[0].Price)
	require.Equal(t, times[2], pivots[0].Time)

	require.Equal(t, 4, pivots[1].Index)
	require.Equal(t, model.PivotLow, pivots[1].Kind)
	require.Equal(t, 9.0, pivots[1].Price)
}

func TestDetectPivots_TieIsNotPivot(t *testing.T) {
	// 이웃과 같은 값이면 strict 조건 위반
	prices := []float64{10, 15, 15, 10, 10}
	pivots := DetectPivots(prices, nil, 1)
	require.Empty(t, pivots)
}

func TestDetectPivots_EdgesSkipped(t *testing.T) {
	// 양 끝은 윈도우가 모자라므로 피벗 불가
	prices := []float64{100, 50, 60, 55, 200}
	pivots := DetectPivots(prices, nil, 2)
	require.Empty(t, pivots)
}

func TestDetectPivots_TooShort(t *testing.T) {
	require.Nil(t, DetectPivots([]float64{1, 2, 3}, nil, 2))
	require.Nil(t, DetectPivots([]float64{1, 2, 3}, nil, 0))
}

func TestRecentRange(t *testing.T) {
	prices := []float64{5, 1, 9, 3, 7}

	low, high := RecentRange(prices, 3)
	require.Equal(t, 3.0, low)
	require.Equal(t, 9.0, high)

	// n이 길이보다 크면 전체 범위
	low, high = RecentRange(prices, 100)
	require.Equal(t, 1.0, low)
	require.Equal(t, 9.0, high)

	low, high = RecentRange(nil, 10)
	require.Equal(t, 0.0, low)
	require.Equal(t, 0.0, high)
}

func TestExtensions_BullishExactValues(t *testing.T) {
	targets := Extensions(100, 200, true)
	require.Len(t, targets, 7)

	expected := []struct {
		ratio    float64
		price    float64
		strength model.TargetStrength
	}{
		{0.618, 161.8, model.StrengthStrong},
		{1.0, 200.0, model.StrengthModerate},
		{1.272, 227.2, model.StrengthWeak},
		{1.414, 241.4, model.StrengthWeak},
		{1.618, 261.8, model.StrengthStrong},
		{2.0, 300.0, model.StrengthModerate},
		{2.618, 361.8, model.StrengthStrong},
	}
	for i, want := range expected {
		require.Equal(t, want.ratio, targets[i].Ratio)
		require.InDelta(t, want.price, targets[i].Price, 1e-9)
		require.Equal(t, want.strength, targets[i].Strength)
	}
}

func TestExtensions_BearishExactValues(t *testing.T) {
	targets := Extensions(100, 200, false)
	require.Len(t, targets, 7)

	// bearish는 low 기준으로 투영: low - range*(ratio-1)
	require.InDelta(t, 138.2, targets[0].Price, 1e-9) // ratio 0.618은 레인지 안쪽
	require.InDelta(t, 100.0, targets[1].Price, 1e-9) // ratio 1.0 = low
	require.InDelta(t, 72.8, targets[2].Price, 1e-9)
	require.InDelta(t, 58.6, targets[3].Price, 1e-9)
	require.InDelta(t, 38.2, targets[4].Price, 1e-9)
	require.InDelta(t, 0.0, targets[5].Price, 1e-9)
	require.InDelta(t, -61.8, targets[6].Price, 1e-9)
}

func TestHiddenLevels_ExactValues(t *testing.T) {
	bull, bear := HiddenLevels(100, 200)

	require.InDelta(t, 138.2, bull.Retrace618, 1e-9)
	require.InDelta(t, 121.4, bull.Retrace786, 1e-9)
	require.InDelta(t, 150.0, bull.Retrace500, 1e-9)
	require.InDelta(t, 227.2, bull.Extend272, 1e-9)
	require.InDelta(t, 261.8, bull.Extend618, 1e-9)

	// bear 쪽은 대칭
	require.InDelta(t, 161.8, bear.Retrace618, 1e-9)
	require.InDelta(t, 178.6, bear.Retrace786, 1e-9)
	require.InDelta(t, 150.0, bear.Retrace500, 1e-9)
	require.InDelta(t, 72.8, bear.Extend272, 1e-9)
	require.InDelta(t, 38.2, bear.Extend618, 1e-9)
}

func TestHiddenLevels_ZeroRange(t *testing.T) {
	bull, bear := HiddenLevels(150, 150)
	require.Equal(t, 150.0, bull.Retrace618)
	require.Equal(t, 150.0, bull.Extend618)
	require.Equal(t, 150.0, bear.Retrace786)
}

func TestRangeWindow(t *testing.T) {
	require.Equal(t, 96, RangeWindow("15m"))
	require.Equal(t, 48, RangeWindow("1h"))
	require.Equal(t, 42, RangeWindow("4h"))
	require.Equal(t, 30, RangeWindow("1d"))
	require.Equal(t, 50, RangeWindow("3m"))
}

func TestCalculatePivotLevels_Bias(t *testing.T) {
	prices := []float64{100, 120, 140, 160, 180, 200}

	// 현재가가 중앙값 이상이면 bullish
	levels := CalculatePivotLevels("KRW-BTC", "1h", prices, nil, 200, 1)
	require.True(t, levels.Bullish)
	require.Equal(t, 100.0, levels.RangeLow)
	require.Equal(t, 200.0, levels.RangeHigh)
	require.InDelta(t, 161.8, levels.Targets[0].Price, 1e-9) // 200 + 100*(0.618-1)
	require.InDelta(t, 300.0, levels.Targets[5].Price, 1e-9) // 200 + 100*(2.0-1)

	// 중앙값 미만이면 bearish
	levels = CalculatePivotLevels("KRW-BTC", "1h", prices, nil, 110, 1)
	require.False(t, levels.Bullish)
	require.InDelta(t, 138.2, levels.Targets[0].Price, 1e-9) // 100 - 100*(0.618-1)
	require.InDelta(t, 0.0, levels.Targets[5].Price, 1e-9)
}

func TestCalculatePivotLevels_EmptyInput(t *testing.T) {
	levels := CalculatePivotLevels("KRW-BTC", "1h", nil, nil, 123.45, 5)
	require.Equal(t, 123.45, levels.RangeHigh)
	require.Equal(t, 123.45, levels.RangeLow)
	require.True(t, levels.Bullish)
	require.Empty(t, levels.Pivots)
	// 레인지가 0이므로 모든 타겟이 현재가 위에 붙음
	for _, target := range levels.Targets {
		require.Equal(t, 123.45, target.Price)
	}
}
