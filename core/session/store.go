package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// errors
	ErrKeyNotFound = errors.New("key not found in session")
	ErrNotCounter  = errors.New("session value is not a counter")
)

// Store is the per-browser-session key-value map shared by all lesson demos.
// Values are arbitrary JSON; last write wins. Data lives only as long as the
// process (or the backend's TTL).
type Store interface {
	// Ensure returns id if it is non-empty, otherwise a fresh session ID.
	// Unknown IDs are accepted as-is: a vanished session simply comes back
	// empty, the way the host framework resets state.
	Ensure(ctx context.Context, id string) (string, error)
	Keys(ctx context.Context, id string) ([]string, error)
	Get(ctx context.Context, id, key string) (interface{}, error)
	Set(ctx context.Context, id, key string, val interface{}) error
	Delete(ctx context.Context, id, key string) error
	Clear(ctx context.Context, id string) error

	// Increment adjusts a numeric value by delta, creating it at delta when
	// absent, and returns the new value.
	Increment(ctx context.Context, id, name string, delta int64) (int64, error)
	ResetCounter(ctx context.Context, id, name string) error

	// Sweep drops sessions idle for longer than the store's TTL and reports
	// how many were dropped. A no-op for backends with native expiry.
	Sweep(ctx context.Context) int
}

type (
	memorySession struct {
		values   map[string]interface{}
		lastSeen time.Time
	}

	memoryStore struct {
		mu       sync.RWMutex
		sessions map[string]*memorySession
		ttl      time.Duration
		nowFunc  func() time.Time // mockable
	}
)

var _ Store = (*memoryStore)(nil)

// NewMemoryStore returns the default in-process Store. ttl bounds how long an
// idle session survives between sweeps; ttl <= 0 disables expiry.
func NewMemoryStore(ttl time.Duration) Store {
	return &memoryStore{
		sessions: make(map[string]*memorySession),
		ttl:      ttl,
		nowFunc:  time.Now,
	}
}

func (s *memoryStore) Ensure(_ context.Context, id string) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(id)
	return id, nil
}

// touch must be called with the write lock held.
func (s *memoryStore) touch(id string) *memorySession {
	sess, ok := s.sessions[id]
	if !ok {
		sess = &memorySession{values: make(map[string]interface{})}
		s.sessions[id] = sess
	}
	sess.lastSeen = s.nowFunc()
	return sess
}

func (s *memoryStore) Keys(_ context.Context, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.touch(id)
	keys := make([]string, 0, len(sess.values))
	for k := range sess.values {
		keys = append(keys, k)
	}
	return keys, nil
}

func (s *memoryStore) Get(_ context.Context, id, key string) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.touch(id)
	val, ok := sess.values[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return val, nil
}

func (s *memoryStore) Set(_ context.Context, id, key string, val interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(id).values[key] = val
	return nil
}

func (s *memoryStore) Delete(_ context.Context, id, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.touch(id)
	if _, ok := sess.values[key]; !ok {
		return ErrKeyNotFound
	}
	delete(sess.values, key)
	return nil
}

func (s *memoryStore) Clear(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *memoryStore) Increment(_ context.Context, id, name string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.touch(id)
	cur, ok := sess.values[name]
	if !ok {
		sess.values[name] = delta
		return delta, nil
	}
	n, ok := asInt64(cur)
	if !ok {
		return 0, ErrNotCounter
	}
	n += delta
	sess.values[name] = n
	return n, nil
}

func (s *memoryStore) ResetCounter(_ context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.touch(id)
	if cur, ok := sess.values[name]; ok {
		if _, isNum := asInt64(cur); !isNum {
			return ErrNotCounter
		}
	}
	sess.values[name] = int64(0)
	return nil
}

func (s *memoryStore) Sweep(_ context.Context) int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.nowFunc().Add(-s.ttl)
	var dropped int
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			dropped++
		}
	}
	return dropped
}

// asInt64 accepts the numeric shapes a JSON round-trip can produce.
func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}
