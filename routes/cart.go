package routes

import (
	"github.com/gin-gonic/gin"

	cartControllers "github.com/MilanKumarMishra/ecommerce-platform/controllers/cart"
	"github.com/MilanKumarMishra/ecommerce-platform/middleware"
)

// SetupCartRoutes registers the pending-cart endpoints. All of them require a
// valid credential whose subject matches the :userId segment.
func SetupCartRoutes(api *gin.RouterGroup, d Deps) {
	secret := []byte(d.Cfg.JWTSecret)

	cart := api.Group("/cart")
	cart.Use(middleware.RequireAuth(secret))
	{
		cart.GET("/:userId", cartControllers.GetCart(d.DB))
		cart.POST("/:userId", cartControllers.SaveCart(d.DB))
		cart.DELETE("/:userId/item/:itemId", cartControllers.DeleteCartItem(d.DB))
	}
}
