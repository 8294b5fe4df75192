package chartview

import (
	"sort"
	"sync"

	"pivotdash/model"
)

// ChartDataStore : 한 pair의 봉(Candle) + 지표 + 피벗 레벨 저장
type ChartDataStore struct {
	mu sync.Mutex

	// 실시간으로 추가되는 완성봉
	candles []model.Candle

	// 지표 이벤트: 이름 -> 시계열 (봉과 느슨히 정렬)
	indicatorOrder []string
	indicators     map[string][]float64

	pivots    model.PivotLevels
	hasPivots bool
}

func NewChartDataStore() *ChartDataStore {
	return &ChartDataStore{
		indicators: make(map[string][]float64),
	}
}

// AppendCandle : 신규 완성봉 저장
func (ds *ChartDataStore) AppendCandle(candle model.Candle) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	n := len(ds.candles)
	if n > 0 && ds.candles[n-1].Time.Equal(candle.Time) {
		ds.candles[n-1] = candle
		return
	}
	ds.candles = append(ds.candles, candle)
}

// GetCandles : 현재 저장된 모든 봉 복사 반환 (시간 오름차순)
func (ds *ChartDataStore) GetCandles() []model.Candle {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	out := make([]model.Candle, len(ds.candles))
	copy(out, ds.candles)

	sort.Slice(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})
	return out
}

// AppendIndicator : 지표 이벤트 한 시점 값 추가
func (ds *ChartDataStore) AppendIndicator(name string, value float64) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if _, ok := ds.indicators[name]; !ok {
		ds.indicatorOrder = append(ds.indicatorOrder, name)
	}
	ds.indicators[name] = append(ds.indicators[name], value)
}

// GetIndicators : 이름 순서 + 시계열 맵 반환
func (ds *ChartDataStore) GetIndicators() ([]string, map[string][]float64) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	names := make([]string, len(ds.indicatorOrder))
	copy(names, ds.indicatorOrder)

	out := make(map[string][]float64, len(ds.indicators))
	for name, series := range ds.indicators {
		cp := make([]float64, len(series))
		copy(cp, series)
		out[name] = cp
	}
	return names, out
}

// UpdatePivots : 최신 피벗 계산 반영
func (ds *ChartDataStore) UpdatePivots(levels model.PivotLevels) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.pivots = levels
	ds.hasPivots = true
}

func (ds *ChartDataStore) GetPivots() (model.PivotLevels, bool) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.pivots, ds.hasPivots
}
