package category

import (
	"context"
	"errors"

	"github.com/pantrypal/pantrypal/backend/go-services/pkg/stream"
)

var ErrNotFound = errors.New("category not found")

// Repository defines persistence operations for categories, scoped per user.
type Repository interface {
	Create(ctx context.Context, c *Category) (string, error)
	Get(ctx context.Context, userID, id string) (*Category, error)
	List(ctx context.Context, userID string) ([]*Category, error)
	Rename(ctx context.Context, userID, id, name string) error
	Delete(ctx context.Context, userID, id string) error

	// FindByName does a case-insensitive lookup; returns ErrNotFound when no
	// category has that name.
	FindByName(ctx context.Context, userID, name string) (*Category, error)

	// Watch delivers the user's full category list after every change,
	// starting with the current state.
	Watch(ctx context.Context, userID string) (*stream.Stream[[]*Category], error)
}
