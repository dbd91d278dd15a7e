package pantry

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FallbackCategory is the reserved category name an item falls back to when
// it is created without a category or loses its last one. It needs no backing
// category document.
const FallbackCategory = "other"

// Item is the typed pantry item. Category is never empty once normalized.
// Quantity and Unit are independent at this layer: either may be present
// without the other.
type Item struct {
	ID         string    `json:"id" bson:"id"`
	UserID     string    `json:"-" bson:"userId"`
	Name       string    `json:"name" bson:"name"`
	Category   []string  `json:"category" bson:"category"`
	Quantity   string    `json:"quantity,omitempty" bson:"quantity,omitempty"`
	Unit       string    `json:"unit,omitempty" bson:"unit,omitempty"`
	ExpireDate string    `json:"expireDate,omitempty" bson:"expireDate,omitempty"`
	AddedAt    time.Time `json:"addedAt" bson:"addedAt"`
}

// HasQuantity distinguishes "field absent" from "field present and zero".
func (i *Item) HasQuantity() bool { return i.Quantity != "" }

// Update is a partial item update. A nil field is left untouched; a pointer
// to the zero value removes the stored field (delete-marker semantics) so the
// storage layer keeps "absent" distinguishable from "empty".
type Update struct {
	Name       *string
	Category   *[]string
	Quantity   *string
	Unit       *string
	ExpireDate *string
}

// NormalizeCategories lowercases and trims every name, drops empties and
// duplicates (the array is a set of memberships; case-variant inputs collapse
// to one entry), and falls back to FallbackCategory when nothing is left.
// First-occurrence order is preserved.
func NormalizeCategories(names []string) []string {
	out := make([]string, 0, len(names))
	seen := map[string]bool{}
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	if len(out) == 0 {
		return []string{FallbackCategory}
	}
	return out
}

// NormalizeQuantity maps the raw stored quantity (a string or any numeric
// type, depending on which client wrote the document) onto the typed string
// form. Unknown shapes are dropped.
func NormalizeQuantity(raw interface{}) string {
	switch q := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(q)
	case float64:
		return strconv.FormatFloat(q, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(q), 'g', -1, 64)
	case int:
		return fmt.Sprintf("%d", q)
	case int32:
		return fmt.Sprintf("%d", q)
	case int64:
		return fmt.Sprintf("%d", q)
	default:
		return ""
	}
}

// normalize fills the item's invariants in place: trimmed name, normalized
// category array, and a wall-clock AddedAt when the record carried none.
func (i *Item) normalize(now time.Time) {
	i.Name = strings.TrimSpace(i.Name)
	i.Category = NormalizeCategories(i.Category)
	if i.AddedAt.IsZero() {
		i.AddedAt = now
	}
}
