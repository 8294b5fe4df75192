package store

import (
	"sync"

	"pivotdash/model"
)

// PivotBoard holds the latest pivot calculation per (pair, timeframe).
type PivotBoard struct {
	mu     sync.RWMutex
	levels map[string]model.PivotLevels
}

func NewPivotBoard() *PivotBoard {
	return &PivotBoard{levels: make(map[string]model.PivotLevels)}
}

func (b *PivotBoard) Update(levels model.PivotLevels) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.levels[levels.Pair+"_"+levels.Timeframe] = levels
}

func (b *PivotBoard) Get(pair, timeframe string) (model.PivotLevels, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	l, ok := b.levels[pair+"_"+timeframe]
	return l, ok
}
