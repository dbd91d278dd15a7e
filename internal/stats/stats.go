// Package stats computes aggregate pantry statistics from a one-shot item
// snapshot. Nothing is persisted; callers recompute on every refresh, so the
// numbers can transiently lag a live subscription.
package stats

import (
	"github.com/pantrypal/pantrypal/backend/go-services/internal/freshness"
	"github.com/pantrypal/pantrypal/backend/go-services/internal/pantry"
)

type Summary struct {
	TotalItems    int `json:"totalItems"`
	CategoryCount int `json:"categoryCount"`
	LowStockCount int `json:"lowStockCount"`
}

// Aggregate reduces an item snapshot in a single pass. CategoryCount is the
// number of distinct names across all items' category arrays.
func Aggregate(items pantry.Snapshot) Summary {
	s := Summary{TotalItems: len(items)}
	names := map[string]bool{}
	for _, it := range items {
		for _, n := range it.Category {
			names[n] = true
		}
		if freshness.LowStock(it.Quantity) {
			s.LowStockCount++
		}
	}
	s.CategoryCount = len(names)
	return s
}
