package category

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pantrypal/pantrypal/backend/go-services/pkg/stream"
)

// MemoryRepo is the in-memory Repository used by unit tests and as a
// fallback when no MongoDB is configured.
type MemoryRepo struct {
	mu      sync.RWMutex
	store   map[string]*Category
	seq     int
	subs    map[int]*memorySub
	nextSub int
	now     func() time.Time
}

type memorySub struct {
	userID string
	s      *stream.Stream[[]*Category]
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		store: make(map[string]*Category),
		subs:  make(map[int]*memorySub),
		now:   time.Now,
	}
}

func (m *MemoryRepo) SetClock(now func() time.Time) { m.now = now }

func (m *MemoryRepo) Create(ctx context.Context, c *Category) (string, error) {
	m.mu.Lock()
	if c.ID == "" {
		m.seq++
		c.ID = fmt.Sprintf("cat_%d", m.seq)
	}
	c.normalize(m.now())
	cp := *c
	m.store[cp.ID] = &cp
	m.notifyLocked(c.UserID)
	m.mu.Unlock()
	return c.ID, nil
}

func (m *MemoryRepo) Get(ctx context.Context, userID, id string) (*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[id]
	if !ok || c.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MemoryRepo) List(ctx context.Context, userID string) ([]*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked(userID), nil
}

func (m *MemoryRepo) Rename(ctx context.Context, userID, id, name string) error {
	m.mu.Lock()
	c, ok := m.store[id]
	if !ok || c.UserID != userID {
		m.mu.Unlock()
		return ErrNotFound
	}
	c.Name = NormalizeName(name)
	m.notifyLocked(userID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepo) Delete(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	c, ok := m.store[id]
	if !ok || c.UserID != userID {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.store, id)
	m.notifyLocked(c.UserID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepo) FindByName(ctx context.Context, userID, name string) (*Category, error) {
	want := NormalizeName(name)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.store {
		if c.UserID == userID && c.Name == want {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) Watch(ctx context.Context, userID string) (*stream.Stream[[]*Category], error) {
	s := stream.New[[]*Category]()

	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = &memorySub{userID: userID, s: s}
	s.Publish(m.listLocked(userID))
	m.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			s.Unsubscribe()
		case <-s.Done():
		}
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}()

	return s, nil
}

// notifyLocked runs with mu held so concurrent mutations cannot deliver
// their snapshots out of order. Publish never blocks.
func (m *MemoryRepo) notifyLocked(userID string) {
	list := m.listLocked(userID)
	for _, sub := range m.subs {
		if sub.userID == userID {
			sub.s.Publish(list)
		}
	}
}

func (m *MemoryRepo) listLocked(userID string) []*Category {
	out := []*Category{}
	for _, c := range m.store {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
