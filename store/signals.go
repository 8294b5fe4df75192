package store

import (
	"sync"

	"pivotdash/model"
)

const defaultSignalCapacity = 200

// SignalLog is a bounded ring of recent signals, newest first on read.
type SignalLog struct {
	mu       sync.RWMutex
	signals  []model.Signal
	capacity int
}

func NewSignalLog(capacity int) *SignalLog {
	if capacity <= 0 {
		capacity = defaultSignalCapacity
	}
	return &SignalLog{capacity: capacity}
}

func (l *SignalLog) Add(signal model.Signal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.signals = append(l.signals, signal)
	if len(l.signals) > l.capacity {
		l.signals = l.signals[len(l.signals)-l.capacity:]
	}
}

// Recent returns up to limit signals, newest first.
func (l *SignalLog) Recent(limit int) []model.Signal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if limit <= 0 || limit > len(l.signals) {
		limit = len(l.signals)
	}
	out := make([]model.Signal, 0, limit)
	for i := len(l.signals) - 1; i >= len(l.signals)-limit; i-- {
		out = append(out, l.signals[i])
	}
	return out
}

// ByPair returns up to limit signals for one pair, newest first.
func (l *SignalLog) ByPair(pair string, limit int) []model.Signal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.Signal, 0)
	for i := len(l.signals) - 1; i >= 0; i-- {
		if l.signals[i].Pair != pair {
			continue
		}
		out = append(out, l.signals[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
