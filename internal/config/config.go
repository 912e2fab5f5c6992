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
	MongoURI  string
	DBName    string
	JWTSecret string
	Port      string

	CheckoutTokenTTL time.Duration
	CodeTTL          time.Duration
	ResendGrace      time.Duration
	CartTTL          time.Duration

	DeliveryFeeMinor  int64
	FreeDeliveryMinor int64

	SMSEnabled bool
	SMSAPIURL  string
	SMSAPIKey  string
	SMSSender  string
	SMSTimeout time.Duration

	AdminTokenTTL time.Duration
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:  getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		DBName:    getEnvOrDefault("DB_NAME", "localmarket"),
		JWTSecret: getEnvOrDefault("JWT_SECRET", ""),
		Port:      getEnvOrDefault("PORT", "8080"),

		CheckoutTokenTTL: getDurationEnv("CHECKOUT_TOKEN_TTL_HOURS", 24, time.Hour),
		CodeTTL:          getDurationEnv("SMS_CODE_TTL_MINUTES", 5, time.Minute),
		ResendGrace:      getDurationEnv("SMS_RESEND_GRACE_SECONDS", 60, time.Second),
		CartTTL:          getDurationEnv("CART_TTL_HOURS", 24, time.Hour),

		DeliveryFeeMinor:  getInt64Env("DELIVERY_FEE_MINOR", 500),
		FreeDeliveryMinor: getInt64Env("FREE_DELIVERY_MINOR", 5000),

		SMSEnabled: getEnvOrDefault("SMS_ENABLED", "false") == "true",
		SMSAPIURL:  getEnvOrDefault("SMS_API_URL", ""),
		SMSAPIKey:  getEnvOrDefault("SMS_API_KEY", ""),
		SMSSender:  getEnvOrDefault("SMS_SENDER", "LocalMarket"),
		SMSTimeout: getDurationEnv("SMS_TIMEOUT_SECONDS", 5, time.Second),

		AdminTokenTTL: getDurationEnv("ADMIN_TOKEN_TTL_HOURS", 8, time.Hour),
	}

	// Tokens must never be signed with a guessable default.
	if AppEnv.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
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

func getInt64Env(key string, defaultValue int64) int64 {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return defaultValue
}
