package store

import (
	"context"
	"strings"
	"sync"

	"pivotdash/errors"
	"pivotdash/model"
)

// InMemoryUserStore keeps accounts in a map. Default when no DATABASE_URL
// is configured.
type InMemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]model.User // key=email (lowercased)
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[string]model.User)}
}

func (s *InMemoryUserStore) Create(ctx context.Context, user model.User) error {
	key := strings.ToLower(user.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[key]; ok {
		return errors.NewConflict(errors.ErrDuplicateEmail)
	}
	s.users[key] = user
	return nil
}

func (s *InMemoryUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	return &user, nil
}
