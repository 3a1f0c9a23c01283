package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/MilanKumarMishra/ecommerce-platform/auth"
)

// SetupAuthRoutes registers the public credential endpoints.
func SetupAuthRoutes(api *gin.RouterGroup, d Deps) {
	secret := []byte(d.Cfg.JWTSecret)
	api.POST("/register", auth.Register(d.DB, secret))
	api.POST("/login", auth.Login(d.DB, secret))
}
