package store

import (
	"sync"
	"time"

	"pivotdash/model"
)

// IndicatorBoard holds the latest indicator snapshot per (pair, timeframe).
type IndicatorBoard struct {
	mu        sync.RWMutex
	snapshots map[string]SnapshotEntry
}

type SnapshotEntry struct {
	Pair      string                  `json:"pair"`
	Timeframe string                  `json:"timeframe"`
	Snapshot  model.IndicatorSnapshot `json:"snapshot"`
	At        time.Time               `json:"at"`
}

func NewIndicatorBoard() *IndicatorBoard {
	return &IndicatorBoard{snapshots: make(map[string]SnapshotEntry)}
}

func (b *IndicatorBoard) Update(pair, timeframe string, snapshot model.IndicatorSnapshot, at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snapshots[pair+"_"+timeframe] = SnapshotEntry{
		Pair:      pair,
		Timeframe: timeframe,
		Snapshot:  snapshot,
		At:        at,
	}
}

func (b *IndicatorBoard) Get(pair, timeframe string) (SnapshotEntry, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.snapshots[pair+"_"+timeframe]
	return e, ok
}
