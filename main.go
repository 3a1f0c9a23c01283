package main

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/MilanKumarMishra/ecommerce-platform/cache"
	"github.com/MilanKumarMishra/ecommerce-platform/config"
	orderControllers "github.com/MilanKumarMishra/ecommerce-platform/controllers/order"
	"github.com/MilanKumarMishra/ecommerce-platform/events"
	"github.com/MilanKumarMishra/ecommerce-platform/logging"
	"github.com/MilanKumarMishra/ecommerce-platform/models"
	"github.com/MilanKumarMishra/ecommerce-platform/routes"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := logging.New(cfg.Env)
	defer log.Sync()

	db := initDatabase(cfg, log)
	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		log.Fatal("automigrate failed", zap.Error(err))
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	producer := events.NewProducer(cfg.KafkaBrokers, log)
	producer.Start(context.Background())

	routes.SetupRoutes(r, routes.Deps{
		DB:       db,
		Cfg:      cfg,
		Log:      log,
		Cache:    cache.NewProductCache(cfg.RedisAddr, cfg.ProductCacheTTL, log),
		Feed:     orderControllers.NewFeed(log),
		Producer: producer,
	})

	log.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

// initDatabase sets up the GORM DB connection.
func initDatabase(cfg config.Config, log *zap.Logger) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatal("db connection failed", zap.Error(err))
	}
	return db
}
