package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pantrypal/pantrypal/backend/go-services/internal/preferences"
	"github.com/pantrypal/pantrypal/backend/go-services/pkg/middleware"
)

// RegisterPreferenceRoutes registers the merged preferences view and the
// per-key value add/remove operations.
func RegisterPreferenceRoutes(rg *gin.RouterGroup, agg *preferences.Aggregator) {
	rg.GET("/preferences", func(c *gin.Context) {
		p, err := agg.Refresh(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, p)
	})

	rg.GET("/preferences/watch", func(c *gin.Context) {
		s, err := agg.Subscribe(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer s.Unsubscribe()

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Stream(func(w io.Writer) bool {
			select {
			case p := <-s.Next():
				c.SSEvent("preferences", p)
				return true
			case err := <-s.Err():
				c.SSEvent("error", gin.H{"error": err.Error()})
				return false
			case <-c.Request.Context().Done():
				return false
			}
		})
	})

	rg.POST("/preferences/:key", func(c *gin.Context) {
		var req struct {
			Value string `json:"value"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Value == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
			return
		}
		if err := agg.AddValue(c.Request.Context(), middleware.UserID(c), c.Param("key"), req.Value); err != nil {
			writePrefErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	rg.DELETE("/preferences/:key", func(c *gin.Context) {
		value := c.Query("value")
		if value == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
			return
		}
		if err := agg.RemoveValue(c.Request.Context(), middleware.UserID(c), c.Param("key"), value); err != nil {
			writePrefErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func writePrefErr(c *gin.Context, err error) {
	if errors.Is(err, preferences.ErrUnknownKey) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
