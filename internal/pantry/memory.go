package pantry

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pantrypal/pantrypal/backend/go-services/pkg/stream"
)

// MemoryRepo is an in-memory Repository used by unit tests and as a fallback
// when no MongoDB is configured. Watch is implemented as a subscriber
// fan-out: every mutation pushes a fresh per-user snapshot to each live
// subscriber.
type MemoryRepo struct {
	mu      sync.RWMutex
	store   map[string]*Item
	seq     int
	subs    map[int]*memorySub
	nextSub int
	now     func() time.Time
}

type memorySub struct {
	userID string
	s      *stream.Stream[Snapshot]
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		store: make(map[string]*Item),
		subs:  make(map[int]*memorySub),
		now:   time.Now,
	}
}

// SetClock overrides the wall clock, for tests that exercise age-dependent
// behavior.
func (m *MemoryRepo) SetClock(now func() time.Time) { m.now = now }

func (m *MemoryRepo) Create(ctx context.Context, item *Item) (string, error) {
	m.mu.Lock()
	if item.ID == "" {
		m.seq++
		item.ID = fmt.Sprintf("itm_%d", m.seq)
	}
	item.normalize(m.now())
	cp := cloneItem(item)
	m.store[cp.ID] = cp
	m.notifyLocked(item.UserID)
	m.mu.Unlock()
	return item.ID, nil
}

func (m *MemoryRepo) Get(ctx context.Context, userID, id string) (*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.store[id]
	if !ok || it.UserID != userID {
		return nil, ErrNotFound
	}
	return cloneItem(it), nil
}

func (m *MemoryRepo) List(ctx context.Context, userID string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked(userID), nil
}

func (m *MemoryRepo) Update(ctx context.Context, userID, id string, upd Update) error {
	m.mu.Lock()
	it, ok := m.store[id]
	if !ok || it.UserID != userID {
		m.mu.Unlock()
		return ErrNotFound
	}
	if upd.Name != nil {
		if n := strings.TrimSpace(*upd.Name); n != "" {
			it.Name = n
		}
	}
	if upd.Category != nil {
		it.Category = NormalizeCategories(*upd.Category)
	}
	// optional fields: pointer-to-empty removes the stored value
	if upd.Quantity != nil {
		it.Quantity = strings.TrimSpace(*upd.Quantity)
	}
	if upd.Unit != nil {
		it.Unit = strings.TrimSpace(*upd.Unit)
	}
	if upd.ExpireDate != nil {
		it.ExpireDate = strings.TrimSpace(*upd.ExpireDate)
	}
	m.notifyLocked(userID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepo) Delete(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	it, ok := m.store[id]
	if !ok || it.UserID != userID {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.store, id)
	m.notifyLocked(it.UserID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepo) FindByCategory(ctx context.Context, userID, name string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := Snapshot{}
	for _, it := range m.store {
		if it.UserID != userID {
			continue
		}
		for _, c := range it.Category {
			if c == name {
				out = append(out, cloneItem(it))
				break
			}
		}
	}
	sortSnapshot(out)
	return out, nil
}

func (m *MemoryRepo) ReplaceCategories(ctx context.Context, userID, id string, categories []string) error {
	m.mu.Lock()
	it, ok := m.store[id]
	if !ok || it.UserID != userID {
		m.mu.Unlock()
		return ErrNotFound
	}
	it.Category = append([]string(nil), categories...)
	m.notifyLocked(userID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepo) Watch(ctx context.Context, userID string) (*stream.Stream[Snapshot], error) {
	s := stream.New[Snapshot]()

	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = &memorySub{userID: userID, s: s}
	s.Publish(m.snapshotLocked(userID))
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

// notifyLocked pushes a fresh snapshot to every subscriber of the user.
// Called with mu held, which serializes the snapshot with its delivery:
// publishing outside the lock would let two concurrent mutations deliver
// snapshots in inverted order, leaving a subscriber on the stale one.
// Publish never blocks, so holding the lock here is safe.
func (m *MemoryRepo) notifyLocked(userID string) {
	snap := m.snapshotLocked(userID)
	for _, sub := range m.subs {
		if sub.userID == userID {
			sub.s.Publish(snap)
		}
	}
}

func (m *MemoryRepo) snapshotLocked(userID string) Snapshot {
	out := Snapshot{}
	for _, it := range m.store {
		if it.UserID == userID {
			out = append(out, cloneItem(it))
		}
	}
	sortSnapshot(out)
	return out
}

func sortSnapshot(s Snapshot) {
	sort.Slice(s, func(i, j int) bool {
		if !s[i].AddedAt.Equal(s[j].AddedAt) {
			return s[i].AddedAt.Before(s[j].AddedAt)
		}
		return s[i].ID < s[j].ID
	})
}

func cloneItem(it *Item) *Item {
	cp := *it
	cp.Category = append([]string(nil), it.Category...)
	return &cp
}
