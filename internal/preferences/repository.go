package preferences

import (
	"context"
	"errors"

	"github.com/pantrypal/pantrypal/backend/go-services/pkg/stream"
)

var ErrUnknownKey = errors.New("unknown preference key")

// Repository defines persistence for the per-user preference documents.
type Repository interface {
	// List returns every stored preference document for the user, known
	// keys or not; Fold decides what to keep.
	List(ctx context.Context, userID string) ([]*Doc, error)

	// Get performs a one-shot fetch of a single key's document; a missing
	// document comes back as an empty Doc for that key, not an error.
	Get(ctx context.Context, userID, key string) (*Doc, error)

	// AddValue / RemoveValue are targeted array-union / array-remove
	// operations on the one affected document.
	AddValue(ctx context.Context, userID, key, value string) error
	RemoveValue(ctx context.Context, userID, key, value string) error

	// Watch delivers the user's full document set after every change.
	Watch(ctx context.Context, userID string) (*stream.Stream[[]*Doc], error)
}
