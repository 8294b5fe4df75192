package news

import (
	"context"
	"strings"
	"sync"
	"time"

	"pivotdash/model"
	"pivotdash/utils/collection"
	"pivotdash/utils/log"
)

const defaultCacheTTL = 5 * time.Minute

// Service caches headlines per currency and keeps serving the previous
// snapshot when the upstream API fails.
type Service struct {
	client   *Client
	cacheTTL time.Duration

	mu    sync.RWMutex
	cache map[string]cacheEntry // key=currency ("" = all)
}

type cacheEntry struct {
	items     []model.NewsItem
	fetchedAt time.Time
}

func NewService(client *Client, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	return &Service{
		client:   client,
		cacheTTL: cacheTTL,
		cache:    make(map[string]cacheEntry),
	}
}

// Latest returns cached headlines for the currency, refreshing when stale.
// On upstream failure the stale snapshot is returned instead of an error,
// as long as one exists.
func (s *Service) Latest(ctx context.Context, currency string) ([]model.NewsItem, error) {
	currency = strings.ToUpper(currency)

	s.mu.RLock()
	entry, ok := s.cache[currency]
	s.mu.RUnlock()

	if ok && time.Since(entry.fetchedAt) < s.cacheTTL {
		return entry.items, nil
	}

	items, err := s.client.FetchPosts(ctx, currency)
	if err != nil {
		if ok {
			log.Warnf("[NEWS] refresh failed, serving stale snapshot: %v", err)
			return entry.items, nil
		}
		return nil, err
	}

	s.mu.Lock()
	s.cache[currency] = cacheEntry{items: items, fetchedAt: time.Now()}
	s.mu.Unlock()
	return items, nil
}

// Regulatory filters the latest headlines down to regulation-related ones.
func (s *Service) Regulatory(ctx context.Context, currency string) ([]model.NewsItem, error) {
	items, err := s.Latest(ctx, currency)
	if err != nil {
		return nil, err
	}
	return collection.Filter(items, func(item model.NewsItem) bool {
		title := strings.ToLower(item.Title)
		for _, kw := range []string{"sec", "regulation", "regulatory", "lawsuit", "ban", "etf"} {
			if strings.Contains(title, kw) {
				return true
			}
		}
		return false
	}), nil
}
