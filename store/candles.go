package store

import (
	"sync"

	"pivotdash/model"
)

const defaultCandleCapacity = 500

// CandleBoard keeps a bounded window of recent candles per (pair, timeframe).
type CandleBoard struct {
	mu       sync.RWMutex
	candles  map[string][]model.Candle
	capacity int
}

func NewCandleBoard(capacity int) *CandleBoard {
	if capacity <= 0 {
		capacity = defaultCandleCapacity
	}
	return &CandleBoard{
		candles:  make(map[string][]model.Candle),
		capacity: capacity,
	}
}

func (b *CandleBoard) Add(timeframe string, candle model.Candle) {
	key := candle.Pair + "_" + timeframe
	b.mu.Lock()
	defer b.mu.Unlock()

	window := b.candles[key]
	// 같은 시각의 봉이면 교체 (파셜 업데이트)
	if n := len(window); n > 0 && window[n-1].Time.Equal(candle.Time) {
		window[n-1] = candle
	} else {
		window = append(window, candle)
	}
	if len(window) > b.capacity {
		window = window[len(window)-b.capacity:]
	}
	b.candles[key] = window
}

// Window returns up to limit most recent candles in chronological order.
func (b *CandleBoard) Window(pair, timeframe string, limit int) []model.Candle {
	b.mu.RLock()
	defer b.mu.RUnlock()
	window := b.candles[pair+"_"+timeframe]
	if limit <= 0 || limit > len(window) {
		limit = len(window)
	}
	out := make([]model.Candle, limit)
	copy(out, window[len(window)-limit:])
	return out
}
