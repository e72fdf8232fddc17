// Package session holds the per-operator recipient selection state: the
// filter tree being edited, the search box, the selected customers and the
// view mode. Every UI action is one method call on a Session.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/solatis/bulkmsg/internal/filter"
	"github.com/solatis/bulkmsg/internal/lists"
	"github.com/solatis/bulkmsg/internal/types"
)

// Customers supplies the current customer snapshot.
type Customers interface {
	All() []types.Customer
}

// FilterInput is a condition to add. An empty Operator picks the field's
// default; a null Value on a binary operator starts as empty text.
type FilterInput struct {
	Parent      types.NodeID   `json:"parent,omitempty"`
	Field       string         `json:"field"`
	Operator    types.Operator `json:"operator,omitempty"`
	Value       types.Value    `json:"value"`
	SecondValue *types.Value   `json:"secondValue,omitempty"`
	Category    string         `json:"category,omitempty"`
}

// State is a read-only snapshot of a session.
type State struct {
	ID               types.SessionID `json:"id"`
	Filter           types.Node      `json:"filter"`
	Search           string          `json:"search"`
	SelectedIDs      []string        `json:"selectedIds"`
	ShowSelectedOnly bool            `json:"showSelectedOnly"`
	ResultCount      int             `json:"resultCount"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// Session is safe for concurrent use; methods serialize on one mutex.
type Session struct {
	mu               sync.Mutex
	id               types.SessionID
	tree             *filter.Tree
	search           string
	selected         map[string]bool
	showSelectedOnly bool
	updatedAt        time.Time // last mutation
	usedAt           time.Time // last mutation or read

	customers Customers
	lists     *lists.Store
	logger    *zap.Logger
}

// New creates a session with an empty AND filter and no selection.
func New(customers Customers, store *lists.Store, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := types.NewSessionID()
	now := time.Now()
	return &Session{
		id:        id,
		tree:      filter.NewTree(),
		selected:  make(map[string]bool),
		updatedAt: now,
		usedAt:    now,
		customers: customers,
		lists:     store,
		logger:    logger.With(zap.String("session_id", string(id))),
	}
}

// ID returns the session id.
func (s *Session) ID() types.SessionID { return s.id }

func (s *Session) touch() {
	s.updatedAt = time.Now()
	s.usedAt = s.updatedAt
}

// use marks a read. Caller holds mu.
func (s *Session) use() { s.usedAt = time.Now() }

// LastActive returns the time of the last mutation or read. Registry.Sweep
// expires sessions by it.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usedAt
}

// State returns a snapshot including the current result count.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.use()
	return State{
		ID:               s.id,
		Filter:           s.tree.Node(),
		Search:           s.search,
		SelectedIDs:      s.selectedIDs(s.customers.All()),
		ShowSelectedOnly: s.showSelectedOnly,
		ResultCount:      len(s.apply()),
		UpdatedAt:        s.updatedAt,
	}
}

// AddFilter appends a condition and returns its id. The operator must
// apply to the field.
func (s *Session) AddFilter(in FilterInput) (types.NodeID, error) {
	op := in.Operator
	if op == "" {
		def, err := filter.DefaultOperator(in.Field)
		if err != nil {
			return "", err
		}
		op = def
	}
	if err := filter.CheckOperator(in.Field, op); err != nil {
		return "", err
	}

	value := in.Value
	if value.IsNull() && !op.Unary() {
		value = types.Text("")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.tree.AddCondition(in.Parent, types.Condition{
		Field:       in.Field,
		Operator:    op,
		Value:       value,
		SecondValue: in.SecondValue,
		Category:    in.Category,
	})
	if err != nil {
		return "", err
	}
	s.touch()
	s.logger.Debug("filter added", zap.String("node_id", string(id)), zap.String("field", in.Field), zap.String("operator", string(op)))
	return id, nil
}

// AddGroup appends an empty group under parent ("" for root).
func (s *Session) AddGroup(parent types.NodeID, op types.LogicalOperator) (types.NodeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.tree.AddGroup(parent, op)
	if err != nil {
		return "", err
	}
	s.touch()
	return id, nil
}

// RemoveFilter deletes a condition or group with its subtree.
func (s *Session) RemoveFilter(id types.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tree.Remove(id); err != nil {
		return err
	}
	s.touch()
	return nil
}

// ClearFilters removes every condition. The root operator is kept.
func (s *Session) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.Clear()
	s.touch()
}

// UpdateFilterOperator changes a condition's operator after checking it
// applies to the condition's field.
func (s *Session) UpdateFilterOperator(id types.NodeID, op types.Operator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.tree.Condition(id)
	if err != nil {
		return err
	}
	if err := filter.CheckOperator(c.Field, op); err != nil {
		return err
	}
	if err := s.tree.UpdateOperator(id, op); err != nil {
		return err
	}
	s.touch()
	return nil
}

// UpdateFilterValue replaces a condition's operands.
func (s *Session) UpdateFilterValue(id types.NodeID, value types.Value, second *types.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tree.UpdateValue(id, value, second); err != nil {
		return err
	}
	s.touch()
	return nil
}

// SetRootOperator switches the top-level combination between AND and OR.
func (s *Session) SetRootOperator(op types.LogicalOperator) error {
	return s.SetGroupOperator("", op)
}

// SetGroupOperator switches the operator of a group ("" for root).
func (s *Session) SetGroupOperator(id types.NodeID, op types.LogicalOperator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tree.SetLogicalOperator(id, op); err != nil {
		return err
	}
	s.touch()
	return nil
}

// LoadFilter replaces the whole filter tree.
func (s *Session) LoadFilter(n types.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tree.Load(n); err != nil {
		return err
	}
	s.touch()
	return nil
}

// SetSearch sets the free-text query.
func (s *Session) SetSearch(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = q
	s.touch()
}

// SetShowSelectedOnly restricts results to the selection.
func (s *Session) SetShowSelectedOnly(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showSelectedOnly = on
	s.touch()
}

// SetSelection replaces the selection. Unknown ids are dropped.
func (s *Session) SetSelection(ids []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = s.known(ids)
	s.touch()
	return len(s.selected)
}

// ToggleSelected adds or removes one customer from the selection.
func (s *Session) ToggleSelected(id string, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !on {
		delete(s.selected, id)
		s.touch()
		return nil
	}
	if len(s.known([]string{id})) == 0 {
		return fmt.Errorf("%w: customer %s", types.ErrInvalidValue, id)
	}
	s.selected[id] = true
	s.touch()
	return nil
}

// SelectResults selects every customer in the current result set.
func (s *Session) SelectResults() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.apply() {
		s.selected[c.ID] = true
	}
	s.touch()
	return len(s.selected)
}

// SelectSavedList replaces the selection with the members of a saved list.
func (s *Session) SelectSavedList(id int) (types.CustomerList, int, error) {
	l, err := s.lists.Get(id)
	if err != nil {
		return types.CustomerList{}, 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	members := lists.Members(l, s.customers.All())
	s.selected = make(map[string]bool, len(members))
	for _, c := range members {
		s.selected[c.ID] = true
	}
	s.touch()
	return l, len(members), nil
}

// ApplyFilters returns search, filter and view restriction applied to the
// current customers.
func (s *Session) ApplyFilters() []types.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.use()
	return s.apply()
}

// Problems reports conditions that cannot be evaluated and so never match.
func (s *Session) Problems() []filter.Problem {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.use()
	return filter.Compile(s.tree.Node()).Problems()
}

func (s *Session) apply() []types.Customer {
	prog := filter.Compile(s.tree.Node())
	return filter.Apply(s.customers.All(), prog, filter.Query{
		Search:       s.search,
		SelectedOnly: s.showSelectedOnly,
		SelectedIDs:  s.selected,
	})
}

// SaveList saves the selected customers as a Custom list.
func (s *Session) SaveList(ctx context.Context, name, description string) (types.CustomerList, error) {
	s.mu.Lock()
	ids := s.selectedIDs(s.customers.All())
	s.mu.Unlock()

	return s.lists.Save(ctx, lists.NewList{Name: name, Description: description, MemberIDs: ids})
}

// SaveFilteredList saves the current result set together with the filter
// that produced it.
func (s *Session) SaveFilteredList(ctx context.Context, name, description string) (types.CustomerList, error) {
	s.mu.Lock()
	ids := filter.IDs(s.apply())
	root := s.tree.Node()
	search := s.search
	s.mu.Unlock()

	return s.lists.Save(ctx, lists.NewList{Name: name, Description: description, MemberIDs: ids, Filter: &root, Search: search})
}

// DeleteList deletes a Custom list.
func (s *Session) DeleteList(ctx context.Context, id int) error {
	return s.lists.Delete(ctx, id)
}

// SelectRecipients returns the selected customers in store order.
func (s *Session) SelectRecipients() []types.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.use()
	out := make([]types.Customer, 0, len(s.selected))
	for _, c := range s.customers.All() {
		if s.selected[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// selectedIDs lists selected ids in store order. Caller holds mu.
func (s *Session) selectedIDs(customers []types.Customer) []string {
	ids := make([]string, 0, len(s.selected))
	for i := range customers {
		if s.selected[customers[i].ID] {
			ids = append(ids, customers[i].ID)
		}
	}
	return ids
}

// known keeps the ids present in the customer snapshot. Caller holds mu.
func (s *Session) known(ids []string) map[string]bool {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make(map[string]bool, len(ids))
	for _, c := range s.customers.All() {
		if want[c.ID] {
			out[c.ID] = true
		}
	}
	return out
}
