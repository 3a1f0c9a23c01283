package cartControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MilanKumarMishra/ecommerce-platform/models"
)

type CartItemInput struct {
	ID       string  `json:"id" binding:"required"`
	Name     string  `json:"name"`
	Price    float64 `json:"price" binding:"gte=0"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity"`
}

type SaveCartRequest struct {
	Items []CartItemInput `json:"items"`
}

// requireSelf ensures the :userId path segment matches the verified token
// subject. Claims decoded client-side are never trusted here; RequireAuth
// already re-verified the signature.
func requireSelf(c *gin.Context) (string, bool) {
	userID := c.Param("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return "", false
	}
	if c.GetString("user_id") != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot access another user's cart"})
		return "", false
	}
	return userID, true
}

// findOrCreatePending returns the user's single pending order, creating an
// empty one when absent. Two first requests can race here; the partial unique
// index on (user_id) where status='pending' makes the insert conflict, and
// the loser reads back the winner's row instead of creating a duplicate cart.
func findOrCreatePending(tx *gorm.DB, userID string) (models.Order, error) {
	var pending models.Order
	err := tx.Preload("Items").
		Where("user_id = ? AND status = ?", userID, models.OrderStatusPending).
		First(&pending).Error
	if err == nil || !errors.Is(err, gorm.ErrRecordNotFound) {
		return pending, err
	}

	fresh := models.Order{UserID: userID, Status: models.OrderStatusPending}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh)
	if res.Error != nil {
		return pending, res.Error
	}
	if res.RowsAffected == 1 {
		return fresh, nil
	}

	err = tx.Preload("Items").
		Where("user_id = ? AND status = ?", userID, models.OrderStatusPending).
		First(&pending).Error
	return pending, err
}

// GET /api/cart/:userId
// A missing pending record is not an error: an empty one is created so the
// first save has a row to replace.
func GetCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireSelf(c)
		if !ok {
			return
		}

		pending, err := findOrCreatePending(db, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		items := pending.Items
		if items == nil {
			items = []models.OrderItem{}
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

// POST /api/cart/:userId
// Replaces the pending record's items wholesale with the submitted cart.
// Duplicate ids are merged and quantities below one are dropped before the
// write, so the stored cart always satisfies the one-row-per-product rule.
func SaveCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireSelf(c)
		if !ok {
			return
		}

		var req SaveCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		items := make([]models.OrderItem, 0, len(req.Items))
		for _, in := range req.Items {
			items = append(items, models.OrderItem{
				ProductID: in.ID,
				Name:      in.Name,
				Price:     in.Price,
				Image:     in.Image,
				Quantity:  in.Quantity,
			})
		}
		items = models.MergeItems(items)

		err := db.Transaction(func(tx *gorm.DB) error {
			pending, err := findOrCreatePending(tx, userID)
			if err != nil {
				return err
			}
			if err := tx.Where("order_id = ?", pending.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			if len(items) == 0 {
				return nil
			}
			for i := range items {
				items[i].OrderID = pending.ID
			}
			return tx.Create(&items).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save cart"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

// DELETE /api/cart/:userId/item/:itemId
func DeleteCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireSelf(c)
		if !ok {
			return
		}
		itemID := c.Param("itemId")

		var pending models.Order
		if err := db.Where("user_id = ? AND status = ?", userID, models.OrderStatusPending).
			First(&pending).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
			return
		}

		result := db.Where("order_id = ? AND product_id = ?", pending.ID, itemID).
			Delete(&models.OrderItem{})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
			return
		}

		items := []models.OrderItem{}
		if err := db.Where("order_id = ?", pending.ID).Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}
