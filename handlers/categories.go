package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pantrypal/pantrypal/backend/go-services/internal/catalog"
	"github.com/pantrypal/pantrypal/backend/go-services/internal/category"
	"github.com/pantrypal/pantrypal/backend/go-services/pkg/middleware"
)

// RegisterCategoryRoutes registers category management: list-with-counts,
// add, rename, delete (with their item cascades), the existence probe, and
// the sync repair.
func RegisterCategoryRoutes(rg *gin.RouterGroup, engine *catalog.Engine) {
	rg.GET("/categories", func(c *gin.Context) {
		out, err := engine.CategoriesWithCounts(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, out)
	})

	rg.POST("/categories", func(c *gin.Context) {
		var req struct {
			Name       string `json:"name"`
			AgingDays  int    `json:"agingDays"`
			UrgentDays int    `json:"urgentDays"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		created, err := engine.AddCategory(c.Request.Context(), middleware.UserID(c), req.Name, req.AgingDays, req.UrgentDays)
		if err != nil {
			writeCategoryErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	})

	rg.GET("/categories/exists", func(c *gin.Context) {
		name := c.Query("name")
		ok, err := engine.CategoryExists(c.Request.Context(), middleware.UserID(c), name)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"name": name, "exists": ok})
	})

	rg.POST("/categories/sync", func(c *gin.Context) {
		created, err := engine.SyncFromPantry(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "created": created})
			return
		}
		c.JSON(http.StatusOK, gin.H{"created": created})
	})

	rg.PATCH("/categories/:id", func(c *gin.Context) {
		var req struct {
			Name string `json:"name"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := engine.RenameCategory(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Name); err != nil {
			writeCategoryErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})

	rg.DELETE("/categories/:id", func(c *gin.Context) {
		if err := engine.DeleteCategory(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
			writeCategoryErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func writeCategoryErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrEmptyName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrDuplicateName):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, category.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
