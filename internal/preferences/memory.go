package preferences

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pantrypal/pantrypal/backend/go-services/pkg/stream"
)

// MemoryRepo is the in-memory Repository for tests and the no-Mongo
// fallback.
type MemoryRepo struct {
	mu      sync.RWMutex
	store   map[string]map[string]*Doc // userID -> key -> doc
	subs    map[int]*memorySub
	nextSub int
	now     func() time.Time
}

type memorySub struct {
	userID string
	s      *stream.Stream[[]*Doc]
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		store: make(map[string]map[string]*Doc),
		subs:  make(map[int]*memorySub),
		now:   time.Now,
	}
}

func (m *MemoryRepo) List(ctx context.Context, userID string) ([]*Doc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked(userID), nil
}

func (m *MemoryRepo) Get(ctx context.Context, userID, key string) (*Doc, error) {
	if !IsKnown(key) {
		return nil, ErrUnknownKey
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.store[userID][key]; ok {
		return cloneDoc(d), nil
	}
	return &Doc{UserID: userID, Key: key, Items: []string{}}, nil
}

func (m *MemoryRepo) AddValue(ctx context.Context, userID, key, value string) error {
	if !IsKnown(key) {
		return ErrUnknownKey
	}
	m.mu.Lock()
	byKey, ok := m.store[userID]
	if !ok {
		byKey = make(map[string]*Doc)
		m.store[userID] = byKey
	}
	d, ok := byKey[key]
	if !ok {
		d = &Doc{UserID: userID, Key: key, Items: []string{}}
		byKey[key] = d
	}
	// set semantics, like $addToSet
	exists := false
	for _, v := range d.Items {
		if v == value {
			exists = true
			break
		}
	}
	if !exists {
		d.Items = append(d.Items, value)
	}
	d.UpdatedAt = m.now()
	m.notifyLocked(userID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepo) RemoveValue(ctx context.Context, userID, key, value string) error {
	if !IsKnown(key) {
		return ErrUnknownKey
	}
	m.mu.Lock()
	if d, ok := m.store[userID][key]; ok {
		out := d.Items[:0]
		for _, v := range d.Items {
			if v != value {
				out = append(out, v)
			}
		}
		d.Items = out
		d.UpdatedAt = m.now()
	}
	m.notifyLocked(userID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepo) Watch(ctx context.Context, userID string) (*stream.Stream[[]*Doc], error) {
	s := stream.New[[]*Doc]()

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
	docs := m.listLocked(userID)
	for _, sub := range m.subs {
		if sub.userID == userID {
			sub.s.Publish(docs)
		}
	}
}

func (m *MemoryRepo) listLocked(userID string) []*Doc {
	out := []*Doc{}
	for _, d := range m.store[userID] {
		out = append(out, cloneDoc(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func cloneDoc(d *Doc) *Doc {
	cp := *d
	cp.Items = append([]string(nil), d.Items...)
	return &cp
}
