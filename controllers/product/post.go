package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MilanKumarMishra/ecommerce-platform/cache"
	"github.com/MilanKumarMishra/ecommerce-platform/models"
)

type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Price       float64 `json:"price" binding:"gte=0"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
}

// CreateProduct adds a catalog entry. Admin-only; the route wires the admin
// guard in front of this handler.
func CreateProduct(db *gorm.DB, pc *cache.ProductCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		product := models.Product{
			ID:          uuid.NewString(),
			Name:        req.Name,
			Price:       req.Price,
			Description: req.Description,
			Image:       req.Image,
			Category:    req.Category,
		}
		if err := db.Create(&product).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}

		pc.Invalidate(c.Request.Context())
		c.JSON(http.StatusCreated, product)
	}
}
