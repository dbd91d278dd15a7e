package category

import (
	"strings"
	"time"

	"github.com/pantrypal/pantrypal/backend/go-services/internal/freshness"
)

// Category is a user-managed pantry category. Name is stored lowercase and
// is unique case-insensitively within one user's set; identity lives in ID,
// not in the name, so a rename keeps the document.
type Category struct {
	ID         string    `json:"id" bson:"id"`
	UserID     string    `json:"-" bson:"userId"`
	Name       string    `json:"name" bson:"name"`
	AgingDays  int       `json:"agingDays" bson:"agingDays,omitempty"`
	UrgentDays int       `json:"urgentDays" bson:"urgentDays,omitempty"`
	AddedAt    time.Time `json:"addedAt" bson:"addedAt"`
}

// WithCount is a Category joined with the number of items referencing it.
type WithCount struct {
	Category
	ItemCount int `json:"itemCount"`
}

// NormalizeName is the canonical matching form of a category name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// normalize fills defaults in place: lowercased trimmed name, default aging
// thresholds, wall-clock AddedAt when missing.
func (c *Category) normalize(now time.Time) {
	c.Name = NormalizeName(c.Name)
	if c.AgingDays <= 0 {
		c.AgingDays = freshness.DefaultAgingDays
	}
	if c.UrgentDays <= c.AgingDays {
		c.UrgentDays = freshness.DefaultUrgentDays
		if c.UrgentDays <= c.AgingDays {
			c.UrgentDays = c.AgingDays + 1
		}
	}
	if c.AddedAt.IsZero() {
		c.AddedAt = now
	}
}
