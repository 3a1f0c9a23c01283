package orderControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MilanKumarMishra/ecommerce-platform/events"
	"github.com/MilanKumarMishra/ecommerce-platform/models"
)

type OrderItemInput struct {
	ID       string  `json:"id" binding:"required"`
	Name     string  `json:"name"`
	Price    float64 `json:"price" binding:"gte=0"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity" binding:"required,min=1"`
}

type DeliveryInput struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address" binding:"required"`
	City    string `json:"city" binding:"required"`
	Zip     string `json:"zip" binding:"required"`
	Phone   string `json:"phone"`
}

type PlaceOrderRequest struct {
	UserID   string           `json:"userId" binding:"required"`
	Items    []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	Total    float64          `json:"total"`
	Delivery DeliveryInput    `json:"delivery" binding:"required"`
}

// POST /api/orders
// Creates the completed order and deletes the user's pending record in the
// same transaction, so a later cart load cannot resurrect checked-out items.
// The total is recomputed from the submitted items; the client's figure is
// display-only.
func PlaceOrder(db *gorm.DB, feed *Feed, producer *events.Producer, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if c.GetString("user_id") != req.UserID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot place an order for another user"})
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
		if len(items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
			return
		}

		order := models.Order{
			UserID: req.UserID,
			Items:  items,
			Total:  models.ItemsTotal(items),
			Delivery: models.Delivery{
				Name:    req.Delivery.Name,
				Address: req.Delivery.Address,
				City:    req.Delivery.City,
				Zip:     req.Delivery.Zip,
				Phone:   req.Delivery.Phone,
			},
			Status: models.OrderStatusCompleted,
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			// Delete by predicate, not by a single fetched row, so the cart
			// is gone even if a duplicate pending record ever slipped in.
			pendingIDs := tx.Model(&models.Order{}).Select("id").
				Where("user_id = ? AND status = ?", req.UserID, models.OrderStatusPending)
			if err := tx.Where("order_id IN (?)", pendingIDs).
				Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ? AND status = ?", req.UserID, models.OrderStatusPending).
				Delete(&models.Order{}).Error; err != nil {
				return err
			}
			return tx.Create(&order).Error
		})
		if err != nil {
			log.Error("order placement failed",
				zap.String("user_id", req.UserID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
			return
		}

		log.Info("order placed",
			zap.Uint("order_id", order.ID),
			zap.String("user_id", order.UserID),
			zap.Float64("total", order.Total))
		feed.Broadcast(order)
		producer.OrderPlaced(order)

		c.JSON(http.StatusCreated, order)
	}
}

// GET /api/orders/:userId
// Pending records are the cart, not history, so only completed orders are
// returned.
func GetUserOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userId")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
			return
		}
		if c.GetString("user_id") != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot access another user's orders"})
			return
		}

		orders := []models.Order{}
		if err := db.
			Where("user_id = ? AND status = ?", userID, models.OrderStatusCompleted).
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}
