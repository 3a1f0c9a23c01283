package routes

import (
	"github.com/gin-gonic/gin"

	orderControllers "github.com/MilanKumarMishra/ecommerce-platform/controllers/order"
	"github.com/MilanKumarMishra/ecommerce-platform/middleware"
)

// SetupOrderRoutes registers checkout and order history.
func SetupOrderRoutes(api *gin.RouterGroup, d Deps) {
	secret := []byte(d.Cfg.JWTSecret)

	orders := api.Group("/orders")
	{
		// websocket feed of newly completed orders
		orders.GET("/feed", d.Feed.Handler)

		orders.POST("",
			middleware.RequireAuth(secret),
			orderControllers.PlaceOrder(d.DB, d.Feed, d.Producer, d.Log))
		orders.GET("/:userId",
			middleware.RequireAuth(secret),
			orderControllers.GetUserOrders(d.DB))
	}
}
