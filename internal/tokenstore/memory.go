package tokenstore

import (
	"context"
	"iter"
	"sync"
)

// MemoryStore is an in-process Store for development and tests.
// Records are copied on the way in and out so callers cannot alias stored state.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]TenantToken
}

// Compile-time check to ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tokens: make(map[string]TenantToken),
	}
}

// Get returns the merchant's record, or (nil, nil) if no record exists.
func (s *MemoryStore) Get(ctx context.Context, merchant string) (*TenantToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[merchant]
	if !ok {
		return nil, nil
	}
	return &token, nil
}

// Put replaces the merchant's record.
func (s *MemoryStore) Put(ctx context.Context, merchant string, token *TenantToken) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[merchant] = *token
	return nil
}

// Merchants yields the merchants present when enumeration starts.
func (s *MemoryStore) Merchants(ctx context.Context) iter.Seq2[string, error] {
	s.mu.RLock()
	merchants := make([]string, 0, len(s.tokens))
	for merchant := range s.tokens {
		merchants = append(merchants, merchant)
	}
	s.mu.RUnlock()

	return func(yield func(string, error) bool) {
		for _, merchant := range merchants {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if !yield(merchant, nil) {
				return
			}
		}
	}
}
