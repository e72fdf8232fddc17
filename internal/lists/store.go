// Package lists stores named customer lists and resolves their members.
package lists

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/solatis/bulkmsg/internal/filter"
	"github.com/solatis/bulkmsg/internal/types"
)

// NewList is the input to Save.
type NewList struct {
	Name        string
	Description string
	MemberIDs   []string
	Filter      *types.Node
	Search      string
}

// Store is the mutable list collection. Every mutation is written to the
// slot afterwards; write failures are logged and the mutation stands.
type Store struct {
	mu     sync.Mutex
	lists  []types.CustomerList
	slot   Slot
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for default names.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open reads the collection from slot. An absent, unreadable or corrupt
// slot yields the seeded lists.
func Open(ctx context.Context, slot Slot, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if slot == nil {
		slot = &MemorySlot{}
	}
	s := &Store{slot: slot, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.lists = s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) []types.CustomerList {
	data, ok, err := s.slot.Read(ctx)
	if err != nil {
		s.logger.Warn("list slot read failed, using seeded lists", zap.Error(err))
		return Seeds()
	}
	if !ok {
		return Seeds()
	}

	var lists []types.CustomerList
	if err := json.Unmarshal(data, &lists); err != nil {
		s.logger.Warn("list slot is corrupt, using seeded lists", zap.Error(err))
		return Seeds()
	}
	if lists == nil {
		lists = []types.CustomerList{}
	}
	s.logger.Debug("restored customer lists", zap.Int("count", len(lists)))
	return lists
}

// persist writes the collection. Caller holds mu.
func (s *Store) persist(ctx context.Context) {
	data, err := json.Marshal(s.lists)
	if err != nil {
		s.logger.Error("encode customer lists", zap.Error(err))
		return
	}
	if err := s.slot.Write(ctx, data); err != nil {
		s.logger.Warn("list slot write failed", zap.Error(err))
	}
}

// All returns a copy of the collection in insertion order.
func (s *Store) All() []types.CustomerList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.CustomerList(nil), s.lists...)
}

// Search returns lists whose name contains query, case-insensitively.
func (s *Store) Search(query string) []types.CustomerList {
	q := strings.ToLower(strings.TrimSpace(query))
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.CustomerList, 0, len(s.lists))
	for _, l := range s.lists {
		if q == "" || strings.Contains(strings.ToLower(l.Name), q) {
			out = append(out, l)
		}
	}
	return out
}

// Get returns the list with id.
func (s *Store) Get(id int) (types.CustomerList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.lists {
		if l.ID == id {
			return l, nil
		}
	}
	return types.CustomerList{}, fmt.Errorf("%w: %d", types.ErrListNotFound, id)
}

// Save appends a Custom list with id max+1 (1 for an empty collection).
// Count snapshots len(MemberIDs) and a nil MemberIDs saves as an empty
// membership. A blank name gets a timestamped default.
func (s *Store) Save(ctx context.Context, in NewList) (types.CustomerList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = fmt.Sprintf("Customer List (%s)", s.now().Format("15:04:05"))
	}
	for _, l := range s.lists {
		if l.IsSystem() && strings.EqualFold(l.Name, name) {
			return types.CustomerList{}, fmt.Errorf("%w: %q", types.ErrDuplicateList, name)
		}
	}

	nextID := 0
	for _, l := range s.lists {
		nextID = max(nextID, l.ID)
	}

	list := types.CustomerList{
		ID:          nextID + 1,
		Name:        name,
		Count:       len(in.MemberIDs),
		Type:        types.ListCustom,
		LastUpdated: "Just now",
		Description: strings.TrimSpace(in.Description),
		Search:      strings.TrimSpace(in.Search),
		MemberIDs:   append(make([]string, 0, len(in.MemberIDs)), in.MemberIDs...),
	}
	if in.Filter != nil {
		f := *in.Filter
		list.Filter = &f
	}

	s.lists = append(s.lists, list)
	s.persist(ctx)
	s.logger.Info("saved customer list",
		zap.Int("list_id", list.ID),
		zap.String("name", list.Name),
		zap.Int("count", list.Count),
	)
	return list, nil
}

// Delete removes a Custom list. System lists and unknown ids are rejected
// and leave the collection unchanged.
func (s *Store) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.lists {
		if l.ID != id {
			continue
		}
		if l.IsSystem() {
			return fmt.Errorf("%w: %q", types.ErrSystemList, l.Name)
		}
		s.lists = append(s.lists[:i:i], s.lists[i+1:]...)
		s.persist(ctx)
		s.logger.Info("deleted customer list", zap.Int("list_id", id))
		return nil
	}
	return fmt.Errorf("%w: %d", types.ErrListNotFound, id)
}

// Members resolves the customers of l against the current customers.
// Stored member ids win, even when empty, then the stored filter with its
// search. Lists carrying neither fall back to the first Count customers.
func Members(l types.CustomerList, customers []types.Customer) []types.Customer {
	switch {
	case l.MemberIDs != nil:
		want := make(map[string]bool, len(l.MemberIDs))
		for _, id := range l.MemberIDs {
			want[id] = true
		}
		return filter.Apply(customers, nil, filter.Query{SelectedOnly: true, SelectedIDs: want})
	case l.Filter != nil:
		return filter.Apply(customers, filter.Compile(*l.Filter), filter.Query{Search: l.Search})
	default:
		n := min(max(l.Count, 0), len(customers))
		return append([]types.Customer(nil), customers[:n]...)
	}
}
