package pantry

import (
	"context"
	"errors"

	"github.com/pantrypal/pantrypal/backend/go-services/pkg/stream"
)

var ErrNotFound = errors.New("pantry item not found")

// Snapshot is a full view of one user's pantry, as delivered by Watch.
type Snapshot []*Item

// Repository defines persistence operations for pantry items. All reads and
// writes are scoped to a single user.
type Repository interface {
	Create(ctx context.Context, item *Item) (string, error)
	Get(ctx context.Context, userID, id string) (*Item, error)
	List(ctx context.Context, userID string) (Snapshot, error)
	Update(ctx context.Context, userID, id string, upd Update) error
	Delete(ctx context.Context, userID, id string) error

	// FindByCategory returns every item whose category array contains name
	// (names are stored lowercase, so the lookup is exact).
	FindByCategory(ctx context.Context, userID, name string) (Snapshot, error)

	// ReplaceCategories rewrites one item's category array. Used by the
	// category cascades; bypasses the empty-array fallback on purpose so the
	// caller controls the rewrite.
	ReplaceCategories(ctx context.Context, userID, id string, categories []string) error

	// Watch delivers a full snapshot after every change to the user's
	// pantry, starting with the current state. The caller must Unsubscribe
	// on teardown.
	Watch(ctx context.Context, userID string) (*stream.Stream[Snapshot], error)
}
