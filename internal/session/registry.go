package session

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/solatis/bulkmsg/internal/lists"
	"github.com/solatis/bulkmsg/internal/types"
)

// Registry owns the live sessions by id.
type Registry struct {
	mu        sync.RWMutex
	sessions  map[types.SessionID]*Session
	customers Customers
	lists     *lists.Store
	logger    *zap.Logger
}

// NewRegistry creates an empty registry. Sessions share customers and store.
func NewRegistry(customers Customers, store *lists.Store, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sessions:  make(map[types.SessionID]*Session),
		customers: customers,
		lists:     store,
		logger:    logger,
	}
}

// Create starts a new session.
func (r *Registry) Create() *Session {
	s := New(r.customers, r.lists, r.logger)
	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	r.logger.Debug("session created", zap.String("session_id", string(s.ID())))
	return s
}

// Get looks up a session by id.
func (r *Registry) Get(id string) (*Session, error) {
	sid, err := types.ParseSessionID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", types.ErrSessionNotFound, id)
	}
	r.mu.RLock()
	s, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrSessionNotFound, id)
	}
	return s, nil
}

// Delete ends a session.
func (r *Registry) Delete(id string) error {
	s, err := r.Get(id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.sessions, s.ID())
	r.mu.Unlock()
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep ends sessions idle for longer than idle and returns how many.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		if s.LastActive().Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	if n > 0 {
		r.logger.Info("expired idle sessions", zap.Int("count", n))
	}
	return n
}
