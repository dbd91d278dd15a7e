// Package catalog keeps the category collection and the denormalized
// category arrays on pantry items consistent with each other. The two
// collections are independently mutable and the store offers no cross-
// collection transactions, so every cascade here is a two-step sequence:
// the category document write first, then a batch of per-item rewrites.
// A crash between the two steps leaves stale item references; SyncFromPantry
// is the idempotent repair that converges the system back toward the
// invariant (every referenced name has a backing category document, or is
// the reserved "other" fallback).
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/pantrypal/pantrypal/backend/go-services/internal/category"
	"github.com/pantrypal/pantrypal/backend/go-services/internal/pantry"
	"github.com/pantrypal/pantrypal/backend/go-services/pkg/logger"
	"github.com/pantrypal/pantrypal/backend/go-services/pkg/metrics"
)

// Validation errors, raised before any write is issued.
var (
	ErrEmptyName     = errors.New("category name is empty")
	ErrDuplicateName = errors.New("a category with this name already exists")
)

// Engine orchestrates cross-collection category operations. Both
// repositories are constructor-supplied so tests can run it against the
// in-memory implementations.
type Engine struct {
	items pantry.Repository
	cats  category.Repository
}

func NewEngine(items pantry.Repository, cats category.Repository) *Engine {
	return &Engine{items: items, cats: cats}
}

// AddCategory validates and creates a new category document. The name is
// stored lowercase; duplicates are rejected case-insensitively.
func (e *Engine) AddCategory(ctx context.Context, userID, name string, agingDays, urgentDays int) (*category.Category, error) {
	norm := category.NormalizeName(name)
	if norm == "" {
		return nil, ErrEmptyName
	}
	if _, err := e.cats.FindByName(ctx, userID, norm); err == nil {
		return nil, ErrDuplicateName
	} else if !errors.Is(err, category.ErrNotFound) {
		return nil, err
	}
	c := &category.Category{
		UserID:     userID,
		Name:       norm,
		AgingDays:  agingDays,
		UrgentDays: urgentDays,
	}
	if _, err := e.cats.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RenameCategory renames the category document, then rewrites every item
// referencing the old name. The two steps are not atomic: an interruption
// after the first leaves items pointing at the old name until the next
// repair. Renaming a category to its own name in a different case is
// allowed; colliding with a different category is rejected before any write.
func (e *Engine) RenameCategory(ctx context.Context, userID, id, newName string) error {
	norm := category.NormalizeName(newName)
	if norm == "" {
		return ErrEmptyName
	}
	cur, err := e.cats.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if existing, err := e.cats.FindByName(ctx, userID, norm); err == nil {
		if existing.ID != id {
			return ErrDuplicateName
		}
	} else if !errors.Is(err, category.ErrNotFound) {
		return err
	}

	oldName := cur.Name
	if err := e.cats.Rename(ctx, userID, id, norm); err != nil {
		return err
	}
	if oldName == norm {
		return nil
	}

	affected, err := e.items.FindByCategory(ctx, userID, oldName)
	if err != nil {
		return fmt.Errorf("rename cascade query: %w", err)
	}
	var firstErr error
	rewritten := 0
	for _, it := range affected {
		next := replaceName(it.Category, oldName, norm)
		if err := e.items.ReplaceCategories(ctx, userID, it.ID, next); err != nil {
			metrics.CascadeFailures.WithLabelValues("rename").Inc()
			if firstErr == nil {
				firstErr = fmt.Errorf("rename cascade item %s: %w", it.ID, err)
			}
			continue
		}
		rewritten++
	}
	metrics.CascadeItemRewrites.WithLabelValues("rename").Add(float64(rewritten))
	logger.Infof("renamed category %q -> %q: rewrote %d/%d items", oldName, norm, rewritten, len(affected))
	return firstErr
}

// DeleteCategory deletes the category document, then removes its name from
// every referencing item. An item left with an empty array falls back to
// ["other"]. Items are never deleted by this cascade.
func (e *Engine) DeleteCategory(ctx context.Context, userID, id string) error {
	cur, err := e.cats.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	name := cur.Name
	if err := e.cats.Delete(ctx, userID, id); err != nil {
		return err
	}

	affected, err := e.items.FindByCategory(ctx, userID, name)
	if err != nil {
		return fmt.Errorf("delete cascade query: %w", err)
	}
	var firstErr error
	rewritten := 0
	for _, it := range affected {
		next := removeName(it.Category, name)
		if len(next) == 0 {
			next = []string{pantry.FallbackCategory}
		}
		if err := e.items.ReplaceCategories(ctx, userID, it.ID, next); err != nil {
			metrics.CascadeFailures.WithLabelValues("delete").Inc()
			if firstErr == nil {
				firstErr = fmt.Errorf("delete cascade item %s: %w", it.ID, err)
			}
			continue
		}
		rewritten++
	}
	metrics.CascadeItemRewrites.WithLabelValues("delete").Add(float64(rewritten))
	logger.Infof("deleted category %q: rewrote %d/%d items", name, rewritten, len(affected))
	return firstErr
}

// SyncFromPantry re-derives missing category documents from the names
// actually referenced by items. It is idempotent: running it twice creates
// nothing the second time. It only adds — it never removes unused categories
// and never touches item arrays. Returns the names it created.
func (e *Engine) SyncFromPantry(ctx context.Context, userID string) ([]string, error) {
	items, err := e.items.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	used := map[string]bool{}
	for _, it := range items {
		for _, n := range it.Category {
			used[n] = true
		}
	}
	existing, err := e.cats.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	have := map[string]bool{}
	for _, c := range existing {
		have[c.Name] = true
	}

	created := []string{}
	for n := range used {
		if have[n] {
			continue
		}
		if _, err := e.cats.Create(ctx, &category.Category{UserID: userID, Name: n}); err != nil {
			return created, fmt.Errorf("sync create %q: %w", n, err)
		}
		created = append(created, n)
		metrics.SyncCategoriesCreated.Inc()
	}
	if len(created) > 0 {
		logger.Infof("pantry sync created %d missing categories", len(created))
	}
	return created, nil
}

// CategoriesWithCounts joins each category with the number of items whose
// array references its name. Two full scans, one name->count map; categories
// nothing references get count 0.
func (e *Engine) CategoriesWithCounts(ctx context.Context, userID string) ([]*category.WithCount, error) {
	cats, err := e.cats.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := e.items.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, it := range items {
		for _, n := range it.Category {
			counts[n]++
		}
	}
	out := make([]*category.WithCount, 0, len(cats))
	for _, c := range cats {
		out = append(out, &category.WithCount{Category: *c, ItemCount: counts[c.Name]})
	}
	return out, nil
}

// CategoryExists is the cheap case-insensitive duplicate guard.
func (e *Engine) CategoryExists(ctx context.Context, userID, name string) (bool, error) {
	_, err := e.cats.FindByName(ctx, userID, name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, category.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// replaceName substitutes new for old positionally, then drops duplicate
// names keeping the first occurrence, so a rename onto an already-present
// name does not introduce duplicates.
func replaceName(names []string, old, new string) []string {
	out := make([]string, 0, len(names))
	seen := map[string]bool{}
	for _, n := range names {
		if n == old {
			n = new
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func removeName(names []string, drop string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != drop {
			out = append(out, n)
		}
	}
	return out
}
