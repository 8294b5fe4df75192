package store

import (
	"sync"

	"pivotdash/model"
)

// TickerBoard holds the latest 24h snapshot per pair.
type TickerBoard struct {
	mu      sync.RWMutex
	tickers map[string]model.Ticker
	order   []string
}

func NewTickerBoard(pairs []string) *TickerBoard {
	return &TickerBoard{
		tickers: make(map[string]model.Ticker),
		order:   append([]string(nil), pairs...),
	}
}

func (b *TickerBoard) Update(ticker model.Ticker) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.tickers[ticker.Pair]; !ok {
		b.order = appendIfMissing(b.order, ticker.Pair)
	}
	b.tickers[ticker.Pair] = ticker
}

// All returns tickers in the registration order of their pairs.
func (b *TickerBoard) All() []model.Ticker {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]model.Ticker, 0, len(b.order))
	for _, pair := range b.order {
		if t, ok := b.tickers[pair]; ok {
			out = append(out, t)
		}
	}
	return out
}

func (b *TickerBoard) Get(pair string) (model.Ticker, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, ok := b.tickers[pair]
	return t, ok
}

func appendIfMissing(list []string, v string) []string {
	for _, item := range list {
		if item == v {
			return list
		}
	}
	return append(list, v)
}
