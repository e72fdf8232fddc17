// Package customers holds the in-memory customer record store and the feed
// sources it loads from.
package customers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/solatis/bulkmsg/internal/types"
)

// Store is the process-wide customer collection. It is read-mostly: Load
// swaps the whole slice and readers get the slice current at call time.
type Store struct {
	mu        sync.RWMutex
	customers []types.Customer
	logger    *zap.Logger
}

// NewStore creates an empty store.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{logger: logger}
}

// Load fetches and parses the feed and replaces the collection. On any
// failure the store is left empty and the error wraps ErrFeedUnavailable.
func (s *Store) Load(ctx context.Context, src Source) ([]types.Customer, error) {
	customers, err := fetch(ctx, src)
	if err != nil {
		s.logger.Warn("customer feed load failed",
			zap.String("source", src.Name()),
			zap.Error(err),
		)
		s.Replace(nil)
		return nil, fmt.Errorf("%w: %v", types.ErrFeedUnavailable, err)
	}

	s.Replace(customers)
	s.logger.Info("loaded customers",
		zap.String("source", src.Name()),
		zap.Int("count", len(customers)),
	)
	return customers, nil
}

func fetch(ctx context.Context, src Source) ([]types.Customer, error) {
	data, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := ParseFeed(data)
	if err != nil {
		return nil, err
	}
	return MapRows(rows), nil
}

// Replace swaps the collection.
func (s *Store) Replace(customers []types.Customer) {
	s.mu.Lock()
	s.customers = customers
	s.mu.Unlock()
}

// All returns the current snapshot. Callers must not modify it.
func (s *Store) All() []types.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.customers
}

// Len returns the number of loaded customers.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.customers)
}

// Get returns the customer with the given id.
func (s *Store) Get(id string) (types.Customer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.customers {
		if s.customers[i].ID == id {
			return s.customers[i], true
		}
	}
	return types.Customer{}, false
}

// ByIDs returns the customers whose ids are in ids, in store order.
func (s *Store) ByIDs(ids []string) []types.Customer {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[strings.TrimSpace(id)] = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Customer, 0, len(ids))
	for i := range s.customers {
		if want[s.customers[i].ID] {
			out = append(out, s.customers[i])
		}
	}
	return out
}
