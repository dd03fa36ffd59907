package board

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrSessionNotFound = errors.New("board session not found")
	ErrConflict        = errors.New("board session changed concurrently")
)

// Store persists live sessions.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context, id string) (*Session, error)
	// Update loads the session, applies fn and writes it back atomically. An error from
	// fn aborts the write and is returned unchanged.
	Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error)
	Delete(ctx context.Context, id string) error
}

type memEntry struct {
	raw     []byte
	expires time.Time
}

// MemoryStore is the in-process Store used when REDIS_URL is unset and in tests.
type MemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]memEntry
	now   func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, items: make(map[string]memEntry), now: time.Now}
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	raw, err := encodeSession(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(s.ID, raw)
	return nil
}

func (m *MemoryStore) put(id string, raw []byte) {
	e := memEntry{raw: raw}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}
	m.items[id] = e
}

// get must be called with mu held.
func (m *MemoryStore) get(id string) (*Session, error) {
	e, ok := m.items[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.items, id)
		return nil, ErrSessionNotFound
	}
	return decodeSession(e.raw)
}

func (m *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(id)
}

func (m *MemoryStore) Update(_ context.Context, id string, fn func(*Session) error) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.get(id)
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	raw, err := encodeSession(s)
	if err != nil {
		return nil, err
	}
	m.put(id, raw)
	return s, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}
