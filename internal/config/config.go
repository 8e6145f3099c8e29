package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Cart      CartConfig
	Checkout  CheckoutConfig
	Events    EventsConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
	Seed  bool
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	Timezone     string
	MaxIdleConns int
	MaxOpenConns int
}

// JWTConfig configures validation of tokens issued by the identity provider
type JWTConfig struct {
	Secret string
	Issuer string
	Expiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// CartConfig selects the local durable mirror for carts
type CartConfig struct {
	MirrorDriver  string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	MirrorTTL     time.Duration
}

type CheckoutConfig struct {
	// CashierID is recorded on sales records. Empty means the customer checks
	// themselves out.
	CashierID            string
	ProfileUpdateTimeout time.Duration
}

// EventsConfig configures order event publishing. No brokers disables it.
type EventsConfig struct {
	KafkaBrokers []string
	Topic        string
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		slog.Warn(".env file not found, using environment variables", "error", err)
	}

	viper.SetDefault("APP_NAME", "storefront-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("APP_SEED", false)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "storefront")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "UTC")
	viper.SetDefault("DB_MAX_IDLE_CONNS", 10)
	viper.SetDefault("DB_MAX_OPEN_CONNS", 100)
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_ISSUER", "storefront-identity")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	viper.SetDefault("CORS_ALLOWED_METHODS", "")
	viper.SetDefault("CORS_ALLOWED_HEADERS", "")
	viper.SetDefault("RATE_LIMIT_RPS", 10)
	viper.SetDefault("RATE_LIMIT_BURST", 20)
	viper.SetDefault("CART_MIRROR_DRIVER", "sqlite")
	viper.SetDefault("CART_SQLITE_PATH", "./storage/cart_mirror.db")
	viper.SetDefault("CART_REDIS_ADDR", "localhost:6379")
	viper.SetDefault("CART_REDIS_PASSWORD", "")
	viper.SetDefault("CART_REDIS_DB", 0)
	viper.SetDefault("CART_MIRROR_TTL_HOURS", 720)
	viper.SetDefault("CHECKOUT_CASHIER_ID", "")
	viper.SetDefault("CHECKOUT_PROFILE_UPDATE_TIMEOUT_SECONDS", 10)
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_ORDER_TOPIC", "orders.placed")

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
			Seed:  viper.GetBool("APP_SEED"),
		},
		Database: DatabaseConfig{
			Host:         viper.GetString("DB_HOST"),
			Port:         viper.GetString("DB_PORT"),
			Name:         viper.GetString("DB_NAME"),
			User:         viper.GetString("DB_USER"),
			Password:     viper.GetString("DB_PASSWORD"),
			SSLMode:      viper.GetString("DB_SSL_MODE"),
			Timezone:     viper.GetString("DB_TIMEZONE"),
			MaxIdleConns: viper.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns: viper.GetInt("DB_MAX_OPEN_CONNS"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
			Issuer: viper.GetString("JWT_ISSUER"),
			Expiry: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
			AllowedMethods: splitList(viper.GetString("CORS_ALLOWED_METHODS")),
			AllowedHeaders: splitList(viper.GetString("CORS_ALLOWED_HEADERS")),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             viper.GetInt("RATE_LIMIT_BURST"),
		},
		Cart: CartConfig{
			MirrorDriver:  viper.GetString("CART_MIRROR_DRIVER"),
			SQLitePath:    viper.GetString("CART_SQLITE_PATH"),
			RedisAddr:     viper.GetString("CART_REDIS_ADDR"),
			RedisPassword: viper.GetString("CART_REDIS_PASSWORD"),
			RedisDB:       viper.GetInt("CART_REDIS_DB"),
			MirrorTTL:     time.Duration(viper.GetInt("CART_MIRROR_TTL_HOURS")) * time.Hour,
		},
		Checkout: CheckoutConfig{
			CashierID:            viper.GetString("CHECKOUT_CASHIER_ID"),
			ProfileUpdateTimeout: time.Duration(viper.GetInt("CHECKOUT_PROFILE_UPDATE_TIMEOUT_SECONDS")) * time.Second,
		},
		Events: EventsConfig{
			KafkaBrokers: splitList(viper.GetString("KAFKA_BROKERS")),
			Topic:        viper.GetString("KAFKA_ORDER_TOPIC"),
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

// splitList parses a comma separated env value, dropping empty items
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
