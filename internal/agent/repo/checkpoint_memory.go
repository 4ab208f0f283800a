package repo

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/noteapp-chat/server/internal/agent/model"
)

// MemoryCheckpointer keeps checkpoints in process. Entries older than ttl
// are treated as missing; ttl <= 0 keeps them forever.
type MemoryCheckpointer struct {
	mu    sync.RWMutex
	items map[string]*model.Checkpoint
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryCheckpointer(ttl time.Duration) *MemoryCheckpointer {
	return &MemoryCheckpointer{
		items: map[string]*model.Checkpoint{},
		ttl:   ttl,
		now:   time.Now,
	}
}

func (m *MemoryCheckpointer) Load(_ context.Context, threadID string) (*model.Checkpoint, error) {
	m.mu.RLock()
	cp, ok := m.items[threadID]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if m.ttl > 0 && m.now().Sub(cp.UpdatedAt) > m.ttl {
		m.mu.Lock()
		delete(m.items, threadID)
		m.mu.Unlock()
		return nil, nil
	}
	return cloneCheckpoint(cp), nil
}

func (m *MemoryCheckpointer) Save(_ context.Context, cp *model.Checkpoint) error {
	if cp == nil || cp.ThreadID == "" {
		return errMissingThread
	}
	c := cloneCheckpoint(cp)
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = m.now()
	}
	m.mu.Lock()
	m.items[cp.ThreadID] = c
	m.mu.Unlock()
	return nil
}

func (m *MemoryCheckpointer) Clear(_ context.Context, threadID string) error {
	m.mu.Lock()
	delete(m.items, threadID)
	m.mu.Unlock()
	return nil
}

func cloneCheckpoint(cp *model.Checkpoint) *model.Checkpoint {
	c := *cp
	c.Messages = slices.Clone(cp.Messages)
	c.FetchedContent = maps.Clone(cp.FetchedContent)
	return &c
}
