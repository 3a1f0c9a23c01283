package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries everything the server reads from the environment.
type Config struct {
	Env             string
	Port            string
	DatabaseURL     string
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	JWTSecret       string
	RedisAddr       string
	KafkaBrokers    []string
	ProductCacheTTL time.Duration
}

func Load() Config {
	return Config{
		Env:             getenv("ENV", "development"),
		Port:            getenv("PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DBHost:          getenv("DB_HOST", "localhost"),
		DBPort:          getenv("DB_PORT", "5432"),
		DBUser:          getenv("DB_USER", "postgres"),
		DBPassword:      os.Getenv("DB_PASSWORD"),
		DBName:          getenv("DB_NAME", "shophub"),
		JWTSecret:       getenv("JWT_SECRET", "dev-secret-change-me"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		KafkaBrokers:    splitCSV(os.Getenv("KAFKA_BROKERS")),
		ProductCacheTTL: time.Duration(getenvInt("PRODUCT_CACHE_TTL_SECONDS", 60)) * time.Second,
	}
}

// DSN returns the postgres connection string, preferring DATABASE_URL when set.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
