package lists

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/solatis/bulkmsg/internal/core/db"
)

// DefaultSlotKey is the slot the list collection is persisted under.
const DefaultSlotKey = "customerLists"

// Slot is a single persisted document. Read reports ok=false when nothing
// has been written yet.
type Slot interface {
	Read(ctx context.Context) (data []byte, ok bool, err error)
	Write(ctx context.Context, data []byte) error
}

// MemorySlot keeps the document in process memory.
type MemorySlot struct {
	mu   sync.Mutex
	data []byte
}

func (s *MemorySlot) Read(ctx context.Context) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, false, nil
	}
	return append([]byte(nil), s.data...), true, nil
}

func (s *MemorySlot) Write(ctx context.Context, data []byte) error {
	s.mu.Lock()
	s.data = append([]byte(nil), data...)
	s.mu.Unlock()
	return nil
}

// SQLSlot stores the document in the kv_slots table.
type SQLSlot struct {
	q   *db.Queries
	key string
}

// NewSQLSlot creates a slot backed by named queries.
func NewSQLSlot(q *db.Queries, key string) *SQLSlot {
	if key == "" {
		key = DefaultSlotKey
	}
	return &SQLSlot{q: q, key: key}
}

func (s *SQLSlot) Read(ctx context.Context) ([]byte, bool, error) {
	return s.q.GetSlot(ctx, s.key)
}

func (s *SQLSlot) Write(ctx context.Context, data []byte) error {
	return s.q.PutSlot(ctx, s.key, data)
}

// RedisSlot stores the document as a plain Redis string.
type RedisSlot struct {
	client redis.Cmdable
	key    string
}

// NewRedisSlot creates a slot under key on client.
func NewRedisSlot(client redis.Cmdable, key string) *RedisSlot {
	if key == "" {
		key = DefaultSlotKey
	}
	return &RedisSlot{client: client, key: key}
}

func (s *RedisSlot) Read(ctx context.Context) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *RedisSlot) Write(ctx context.Context, data []byte) error {
	return s.client.Set(ctx, s.key, data, 0).Err()
}
