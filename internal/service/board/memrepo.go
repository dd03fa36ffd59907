package board

import (
	"context"
	"strings"
	"sync"

	"github.com/park285/cheese-board/internal/domain"
)

// memrepo is the in-memory history used when no database is configured.
type memrepo struct {
	mu     sync.RWMutex
	nextID int64
	bySess map[string][]*domain.MoveRecord
}

func NewMemoryRepository() Repository {
	return &memrepo{bySess: make(map[string][]*domain.MoveRecord)}
}

func (m *memrepo) AppendMove(_ context.Context, rec *domain.MoveRecord) error {
	if rec == nil {
		return nil
	}
	key := strings.TrimSpace(rec.SessionID)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.bySess[key] {
		if existing.Ply == rec.Ply {
			return nil
		}
	}
	m.nextID++
	cp := *rec
	cp.ID = m.nextID
	rec.ID = cp.ID
	m.bySess[key] = append(m.bySess[key], &cp)
	return nil
}

func (m *memrepo) ListMoves(_ context.Context, sessionID string, limit int) ([]*domain.MoveRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.bySess[strings.TrimSpace(sessionID)]
	if limit > 0 && len(list) > limit {
		list = list[len(list)-limit:]
	}
	out := make([]*domain.MoveRecord, 0, len(list))
	for _, rec := range list {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}
