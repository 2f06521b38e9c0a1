package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI           string
	DBName             string
	SiteURL            string
	SessionSecret      string
	SessionTTL         time.Duration
	GoogleClientID     string
	GoogleClientSecret string
	RedisAddr          string
	Port               string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:           getEnvOrDefault("MONGO_URI", ""),
		DBName:             getEnvOrDefault("DB_NAME", "storefront"),
		SiteURL:            getEnvOrDefault("SITE_URL", "http://localhost:3000"),
		SessionSecret:      getEnvOrDefault("SESSION_SECRET", ""),
		SessionTTL:         getDurationEnv("SESSION_TTL", 7, 24*time.Hour),
		GoogleClientID:     getEnvOrDefault("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnvOrDefault("GOOGLE_CLIENT_SECRET", ""),
		RedisAddr:          getEnvOrDefault("REDIS_ADDR", ""),
		Port:               getEnvOrDefault("PORT", "8080"),
	}

	if AppEnv.MongoURI == "" {
		log.Fatal("MONGO_URI is required")
	}
	if AppEnv.SessionSecret == "" {
		log.Fatal("SESSION_SECRET is required")
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
