package preferences

import (
	"context"

	"github.com/pantrypal/pantrypal/backend/go-services/pkg/stream"
)

// Aggregator merges the per-key preference documents into one in-memory
// Preferences view: many small documents, one shape for consumers.
type Aggregator struct {
	repo Repository
}

func NewAggregator(repo Repository) *Aggregator {
	return &Aggregator{repo: repo}
}

// Refresh performs a one-shot multi-get across the fixed key set and folds
// the result. Used for manual refresh paths that bypass the subscription.
func (a *Aggregator) Refresh(ctx context.Context, userID string) (Preferences, error) {
	docs := make([]*Doc, 0, len(knownKeys))
	for _, key := range knownKeys {
		d, err := a.repo.Get(ctx, userID, key)
		if err != nil {
			return Preferences{}, err
		}
		docs = append(docs, d)
	}
	return Fold(docs), nil
}

// Subscribe folds every incoming document snapshot into the fixed-shape
// record and republishes it. Unsubscribing the returned stream tears down
// the underlying repository subscription.
func (a *Aggregator) Subscribe(ctx context.Context, userID string) (*stream.Stream[Preferences], error) {
	inner, err := a.repo.Watch(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := stream.New[Preferences]()
	go func() {
		defer inner.Unsubscribe()
		for {
			select {
			case docs := <-inner.Next():
				out.Publish(Fold(docs))
			case err := <-inner.Err():
				out.Fail(err)
				return
			case <-inner.Done():
				out.Unsubscribe()
				return
			case <-out.Done():
				return
			}
		}
	}()
	return out, nil
}

// AddValue appends a single preference value to one key's document.
func (a *Aggregator) AddValue(ctx context.Context, userID, key, value string) error {
	return a.repo.AddValue(ctx, userID, key, value)
}

// RemoveValue drops a single preference value from one key's document.
func (a *Aggregator) RemoveValue(ctx context.Context, userID, key, value string) error {
	return a.repo.RemoveValue(ctx, userID, key, value)
}
