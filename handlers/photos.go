package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pantrypal/pantrypal/backend/go-services/internal/storage"
	"github.com/pantrypal/pantrypal/backend/go-services/pkg/middleware"
)

// RegisterPhotoRoutes registers item photo upload and display-URL lookup.
// Only mounted when object storage is configured.
func RegisterPhotoRoutes(rg *gin.RouterGroup, photos *storage.PhotoStore) {
	rg.PUT("/pantry/:id/photo", func(c *gin.Context) {
		file, header, err := c.Request.FormFile("photo")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "photo form file is required"})
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		err = photos.UploadItemPhoto(c.Request.Context(), middleware.UserID(c), c.Param("id"), file, header.Size, contentType)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	})

	rg.GET("/pantry/:id/photo", func(c *gin.Context) {
		url, err := photos.ItemPhotoURL(c.Request.Context(), middleware.UserID(c), c.Param("id"), 15*time.Minute)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": url})
	})

	rg.DELETE("/pantry/:id/photo", func(c *gin.Context) {
		if err := photos.DeleteItemPhoto(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	})
}
