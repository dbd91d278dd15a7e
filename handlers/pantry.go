package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pantrypal/pantrypal/backend/go-services/internal/freshness"
	"github.com/pantrypal/pantrypal/backend/go-services/internal/pantry"
	"github.com/pantrypal/pantrypal/backend/go-services/internal/stats"
	"github.com/pantrypal/pantrypal/backend/go-services/pkg/middleware"
)

// ItemView is an item plus the derived state the app renders: age, freshness
// status, badge text, and the low-stock flag. Derived fields are computed at
// response time from the stored item; freshness uses the global default
// thresholds.
type ItemView struct {
	*pantry.Item
	AgeDays  int    `json:"ageDays"`
	Status   string `json:"status"`
	Badge    string `json:"badge,omitempty"`
	LowStock bool   `json:"lowStock"`
}

func viewOf(it *pantry.Item, now time.Time) ItemView {
	st := freshness.StatusOf(it.AddedAt, now, freshness.DefaultAgingDays, freshness.DefaultUrgentDays)
	return ItemView{
		Item:     it,
		AgeDays:  freshness.AgeDays(it.AddedAt, now),
		Status:   string(st),
		Badge:    freshness.Badge(st),
		LowStock: freshness.LowStock(it.Quantity),
	}
}

func viewsOf(items pantry.Snapshot) []ItemView {
	now := time.Now()
	out := make([]ItemView, 0, len(items))
	for _, it := range items {
		out = append(out, viewOf(it, now))
	}
	return out
}

// RegisterPantryRoutes registers the item CRUD, derived-stats, and live
// snapshot endpoints.
func RegisterPantryRoutes(rg *gin.RouterGroup, items pantry.Repository) {
	rg.GET("/pantry", func(c *gin.Context) {
		list, err := items.List(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, viewsOf(list))
	})

	rg.POST("/pantry", func(c *gin.Context) {
		var req struct {
			Name       string      `json:"name"`
			Category   []string    `json:"category"`
			Quantity   interface{} `json:"quantity"` // string or number, per the stored form
			Unit       string      `json:"unit"`
			ExpireDate string      `json:"expireDate"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "item name is required"})
			return
		}
		it := &pantry.Item{
			UserID:     middleware.UserID(c),
			Name:       req.Name,
			Category:   req.Category,
			Quantity:   pantry.NormalizeQuantity(req.Quantity),
			Unit:       req.Unit,
			ExpireDate: req.ExpireDate,
		}
		if _, err := items.Create(c.Request.Context(), it); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, viewOf(it, time.Now()))
	})

	rg.GET("/pantry/stats", func(c *gin.Context) {
		list, err := items.List(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats.Aggregate(list))
	})

	rg.GET("/pantry/watch", func(c *gin.Context) {
		s, err := items.Watch(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer s.Unsubscribe()

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Stream(func(w io.Writer) bool {
			select {
			case snap := <-s.Next():
				c.SSEvent("snapshot", viewsOf(snap))
				return true
			case err := <-s.Err():
				c.SSEvent("error", gin.H{"error": err.Error()})
				return false
			case <-c.Request.Context().Done():
				return false
			}
		})
	})

	rg.GET("/pantry/:id", func(c *gin.Context) {
		it, err := items.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
		if err != nil {
			writeItemErr(c, err)
			return
		}
		c.JSON(http.StatusOK, viewOf(it, time.Now()))
	})

	rg.PATCH("/pantry/:id", func(c *gin.Context) {
		var req struct {
			Name       *string   `json:"name,omitempty"`
			Category   *[]string `json:"category,omitempty"`
			Quantity   *string   `json:"quantity,omitempty"`
			Unit       *string   `json:"unit,omitempty"`
			ExpireDate *string   `json:"expireDate,omitempty"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		upd := pantry.Update{
			Name:       req.Name,
			Category:   req.Category,
			Quantity:   req.Quantity,
			Unit:       req.Unit,
			ExpireDate: req.ExpireDate,
		}
		if err := items.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), upd); err != nil {
			writeItemErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})

	rg.DELETE("/pantry/:id", func(c *gin.Context) {
		if err := items.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
			writeItemErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func writeItemErr(c *gin.Context, err error) {
	if errors.Is(err, pantry.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
