package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string
	JWTSecret  string
	RedisAddr  string

	// Payment gateway (hosted pay-page flow)
	GatewayBaseURL     string
	GatewayMerchantID  string
	GatewaySaltKey     string
	GatewaySaltIndex   string
	GatewayRedirectURL string
	GatewayCallbackURL string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		AppPort:    getenvDefault("APP_PORT", "8080"),
		AppEnv:     os.Getenv("APP_ENV"),
		JWTSecret:  os.Getenv("SECRET_KEY"),
		RedisAddr:  getenvDefault("REDIS_ADDR", "localhost:6379"),

		GatewayBaseURL:     getenvDefault("PHONEPE_BASE_URL", "https://api.phonepe.com/apis/hermes"),
		GatewayMerchantID:  os.Getenv("PHONEPE_MERCHANT_ID"),
		GatewaySaltKey:     os.Getenv("PHONEPE_SALT_KEY"),
		GatewaySaltIndex:   getenvDefault("PHONEPE_SALT_INDEX", "1"),
		GatewayRedirectURL: os.Getenv("PHONEPE_REDIRECT_URL"),
		GatewayCallbackURL: os.Getenv("PHONEPE_CALLBACK_URL"),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
