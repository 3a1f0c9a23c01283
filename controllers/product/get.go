package productcontroller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/MilanKumarMishra/ecommerce-platform/cache"
	"github.com/MilanKumarMishra/ecommerce-platform/models"
)

// GetProducts lists the whole catalog, newest first. Category and search
// filtering happen client-side, so the listing is a single cacheable payload.
func GetProducts(db *gorm.DB, pc *cache.ProductCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		if products, ok := pc.Get(c.Request.Context()); ok {
			c.JSON(http.StatusOK, products)
			return
		}

		products := []models.Product{}
		if err := db.Order("created_at DESC").Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve products"})
			return
		}
		pc.Set(c.Request.Context(), products)
		c.JSON(http.StatusOK, products)
	}
}

// GetProductByID returns a single product.
// URL param: /products/:id
func GetProductByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product ID is required"})
			return
		}

		var product models.Product
		if err := db.First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve product"})
			}
			return
		}
		c.JSON(http.StatusOK, product)
	}
}
