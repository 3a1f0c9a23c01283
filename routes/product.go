package routes

import (
	"github.com/gin-gonic/gin"

	productcontroller "github.com/MilanKumarMishra/ecommerce-platform/controllers/product"
	"github.com/MilanKumarMishra/ecommerce-platform/middleware"
)

// SetupProductRoutes registers the catalog endpoints. Listing is public;
// creation requires an admin-flagged credential.
func SetupProductRoutes(api *gin.RouterGroup, d Deps) {
	secret := []byte(d.Cfg.JWTSecret)

	products := api.Group("/products")
	{
		products.GET("", productcontroller.GetProducts(d.DB, d.Cache))
		products.GET("/:id", productcontroller.GetProductByID(d.DB))
		products.POST("",
			middleware.RequireAuth(secret),
			middleware.RequireAdmin(),
			productcontroller.CreateProduct(d.DB, d.Cache))
	}
}
