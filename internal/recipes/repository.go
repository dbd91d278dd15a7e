package recipes

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pantrypal/pantrypal/backend/go-services/pkg/logger"
)

var ErrNotFound = errors.New("saved recipe not found")

// Repository persists one user's liked or saved recipe entries. The two
// collections share a shape, so one repository type serves both.
type Repository interface {
	Add(ctx context.Context, entry *Saved) error
	Remove(ctx context.Context, userID, recipeID string) error
	List(ctx context.Context, userID string) ([]*Saved, error)
}

// MongoRepo implements Repository on one MongoDB collection.
type MongoRepo struct {
	col *mongo.Collection
	now func() time.Time
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	if _, err := col.Indexes().CreateOne(context.Background(),
		mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "recipeId", Value: 1}}, Options: options.Index().SetUnique(true)}); err != nil {
		logger.Warnf("recipes: failed to create userId/recipeId index: %v", err)
	}
	return &MongoRepo{col: col, now: time.Now}
}

func (r *MongoRepo) Add(ctx context.Context, entry *Saved) error {
	if entry.AddedAt.IsZero() {
		entry.AddedAt = r.now()
	}
	// upsert keeps re-liking idempotent
	_, err := r.col.UpdateOne(ctx,
		bson.M{"userId": entry.UserID, "recipeId": entry.RecipeID},
		bson.M{"$set": bson.M{"title": entry.Title, "image": entry.Image}, "$setOnInsert": bson.M{"addedAt": entry.AddedAt}},
		options.Update().SetUpsert(true))
	return err
}

func (r *MongoRepo) Remove(ctx context.Context, userID, recipeID string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"userId": userID, "recipeId": recipeID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepo) List(ctx context.Context, userID string) ([]*Saved, error) {
	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "addedAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*Saved{}
	for cur.Next(ctx) {
		var s Saved
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, cur.Err()
}

// MemoryRepo is the in-memory Repository for tests and the no-Mongo
// fallback.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]map[string]*Saved // userID -> recipeID -> entry
	now   func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]map[string]*Saved), now: time.Now}
}

func (m *MemoryRepo) Add(ctx context.Context, entry *Saved) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byID, ok := m.store[entry.UserID]
	if !ok {
		byID = make(map[string]*Saved)
		m.store[entry.UserID] = byID
	}
	cp := *entry
	if prev, ok := byID[entry.RecipeID]; ok {
		cp.AddedAt = prev.AddedAt
	} else if cp.AddedAt.IsZero() {
		cp.AddedAt = m.now()
	}
	byID[entry.RecipeID] = &cp
	return nil
}

func (m *MemoryRepo) Remove(ctx context.Context, userID, recipeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[userID][recipeID]; !ok {
		return ErrNotFound
	}
	delete(m.store[userID], recipeID)
	return nil
}

func (m *MemoryRepo) List(ctx context.Context, userID string) ([]*Saved, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*Saved{}
	for _, s := range m.store[userID] {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.After(out[j].AddedAt) })
	return out, nil
}
