package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pantrypal/pantrypal/backend/go-services/internal/pantry"
	"github.com/pantrypal/pantrypal/backend/go-services/internal/recipes"
	"github.com/pantrypal/pantrypal/backend/go-services/pkg/middleware"
)

// RegisterRecipeRoutes registers recipe search (matched against the user's
// pantry item names), recipe detail, and the liked/saved collections.
func RegisterRecipeRoutes(rg *gin.RouterGroup, client *recipes.Client, items pantry.Repository, liked, saved recipes.Repository) {
	rg.GET("/recipes/suggest", func(c *gin.Context) {
		list, err := items.List(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		names := make([]string, 0, len(list))
		for _, it := range list {
			names = append(names, strings.ToLower(it.Name))
		}
		if len(names) == 0 {
			c.JSON(http.StatusOK, []recipes.Summary{})
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		out, err := client.SearchByIngredients(c.Request.Context(), names, limit)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, out)
	})

	rg.GET("/recipes/:id", func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "recipe id must be an integer"})
			return
		}
		detail, err := client.Detail(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, detail)
	})

	registerSavedRoutes(rg, "liked", liked)
	registerSavedRoutes(rg, "saved", saved)
}

func registerSavedRoutes(rg *gin.RouterGroup, kind string, repo recipes.Repository) {
	rg.GET("/recipes/"+kind, func(c *gin.Context) {
		list, err := repo.List(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, list)
	})

	rg.POST("/recipes/"+kind, func(c *gin.Context) {
		var req struct {
			RecipeID string `json:"recipeId"`
			Title    string `json:"title"`
			Image    string `json:"image"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.RecipeID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "recipeId is required"})
			return
		}
		entry := &recipes.Saved{
			UserID:   middleware.UserID(c),
			RecipeID: req.RecipeID,
			Title:    req.Title,
			Image:    req.Image,
		}
		if err := repo.Add(c.Request.Context(), entry); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, entry)
	})

	rg.DELETE("/recipes/"+kind+"/:recipeId", func(c *gin.Context) {
		err := repo.Remove(c.Request.Context(), middleware.UserID(c), c.Param("recipeId"))
		if err != nil {
			if errors.Is(err, recipes.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "recipe not in list"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	})
}
