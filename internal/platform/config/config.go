package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	JWTSecret string

	// Rate oracle
	RedisAddr        string
	RedisDB          int
	RatesFeedURL     string
	RatesRefreshSpec string // cron spec, e.g. "@every 10m"

	// Payment provider
	ProviderBaseURL   string
	ProviderShopID    string
	ProviderSecretKey string
	ProviderReturnURL string
	ProviderTimeout   time.Duration

	// Notifications
	SMSProviderURL string

	// API rate limiting, e.g. "100-M" for 100 requests per minute
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CURRENCY_RATES_URL", "https://www.cbr-xml-daily.ru/daily_json.js")
	viper.SetDefault("RATES_REFRESH_SPEC", "@every 10m")
	viper.SetDefault("PROVIDER_BASE_URL", "https://api.yookassa.ru/v3")
	viper.SetDefault("PROVIDER_SHOP_ID", "")
	viper.SetDefault("PROVIDER_SECRET_KEY", "")
	viper.SetDefault("PROVIDER_RETURN_URL", "http://localhost:3000/payments/return")
	viper.SetDefault("PROVIDER_TIMEOUT", "10s")
	viper.SetDefault("SMS_PROVIDER_URL", "")
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}

	cfg.RedisAddr = viper.GetString("REDIS_ADDR")
	cfg.RedisDB = viper.GetInt("REDIS_DB")
	cfg.RatesFeedURL = viper.GetString("CURRENCY_RATES_URL")
	cfg.RatesRefreshSpec = viper.GetString("RATES_REFRESH_SPEC")

	cfg.ProviderBaseURL = viper.GetString("PROVIDER_BASE_URL")
	cfg.ProviderShopID = viper.GetString("PROVIDER_SHOP_ID")
	cfg.ProviderSecretKey = viper.GetString("PROVIDER_SECRET_KEY")
	cfg.ProviderReturnURL = viper.GetString("PROVIDER_RETURN_URL")
	if cfg.ProviderShopID == "" || cfg.ProviderSecretKey == "" {
		log.Println("Warning: payment provider credentials not set; application creation will fail upstream.")
	}

	providerTimeoutStr := viper.GetString("PROVIDER_TIMEOUT")
	providerTimeout, err := time.ParseDuration(providerTimeoutStr)
	if err != nil {
		providerTimeout = 10 * time.Second
		if providerTimeoutStr != "" {
			log.Printf("Warning: Invalid value for PROVIDER_TIMEOUT ('%s'). Defaulting to %s.\n", providerTimeoutStr, providerTimeout)
		}
	}
	cfg.ProviderTimeout = providerTimeout

	cfg.SMSProviderURL = viper.GetString("SMS_PROVIDER_URL")
	if cfg.SMSProviderURL == "" {
		log.Println("Warning: SMS_PROVIDER_URL not set; transfer notifications will be skipped.")
	}

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}
