package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MilanKumarMishra/ecommerce-platform/cache"
	"github.com/MilanKumarMishra/ecommerce-platform/config"
	orderControllers "github.com/MilanKumarMishra/ecommerce-platform/controllers/order"
	"github.com/MilanKumarMishra/ecommerce-platform/events"
)

// Deps bundles everything the route groups need to wire their handlers.
type Deps struct {
	DB       *gorm.DB
	Cfg      config.Config
	Log      *zap.Logger
	Cache    *cache.ProductCache
	Feed     *orderControllers.Feed
	Producer *events.Producer
}

// SetupRoutes is the single entry-point that wires up the /api surface.
func SetupRoutes(r *gin.Engine, d Deps) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "time": time.Now().UTC().Format(time.RFC3339)})
	})

	api := r.Group("/api")

	SetupAuthRoutes(api, d)
	SetupProductRoutes(api, d)
	SetupCartRoutes(api, d)
	SetupOrderRoutes(api, d)
}
