package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/cart"
	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/domain"
)

// Config carries every external knob: tax rates, delivery policy and the
// OTP/polling timings are business configuration, not code.
type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	DBHost         string
	DBPort         int
	DBUser         string
	DBPassword     string
	DBName         string
	MigrationsPath string

	RedisAddr    string
	MongoURI     string
	MongoDB      string
	KafkaBrokers []string

	SweetTaxRate          float64
	SavouryTaxRate        float64
	FreeDeliveryThreshold float64
	DeliveryAreaLabel     string

	OTPEnabled      bool
	OTPTTL          time.Duration
	OTPRateWindow   time.Duration
	OTPMaxIssuances int

	AdminPollInterval time.Duration
}

func Load() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnvInt("DB_PORT", 5432),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "feast"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      getEnv("MONGO_DB", "feast"),
		KafkaBrokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),

		SweetTaxRate:          getEnvFloat("SWEET_TAX_RATE", 0.05),
		SavouryTaxRate:        getEnvFloat("SAVOURY_TAX_RATE", 0.12),
		FreeDeliveryThreshold: getEnvFloat("FREE_DELIVERY_THRESHOLD", 2000),
		DeliveryAreaLabel:     getEnv("DELIVERY_AREA_LABEL", "Coimbatore city limits"),

		OTPEnabled:      getEnvBool("OTP_ENABLED", true),
		OTPTTL:          getEnvDuration("OTP_TTL", 5*time.Minute),
		OTPRateWindow:   getEnvDuration("OTP_RATE_WINDOW", 5*time.Minute),
		OTPMaxIssuances: getEnvInt("OTP_MAX_ISSUANCES", 3),

		AdminPollInterval: getEnvDuration("ADMIN_POLL_INTERVAL", 10*time.Second),
	}
}

// TaxRates exposes the per-category rates in the shape the cart engine
// takes.
func (c *Config) TaxRates() cart.TaxRates {
	return cart.TaxRates{
		domain.CategorySweet:   c.SweetTaxRate,
		domain.CategorySavoury: c.SavouryTaxRate,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
