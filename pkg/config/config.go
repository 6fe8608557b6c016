package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Payment  PaymentConfig  `mapstructure:"payment"`
	Currency CurrencyConfig `mapstructure:"currency"`
	OTel     OTelConfig     `mapstructure:"otel"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"` // development, staging, production
	Debug       bool   `mapstructure:"debug"`
	Version     string `mapstructure:"version"`
	LogLevel    string `mapstructure:"log_level"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the Redis address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// KafkaConfig holds Kafka connection settings
type KafkaConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Brokers  []string `mapstructure:"brokers"`
	ClientID string   `mapstructure:"client_id"`
	Topic    string   `mapstructure:"topic"`
}

// PaymentConfig holds payment gateway settings
type PaymentConfig struct {
	// CardGateway selects the card processor implementation: stripe or mock
	CardGateway     string `mapstructure:"card_gateway"`
	StripeSecretKey string `mapstructure:"stripe_secret_key"`
	StripeEnv       string `mapstructure:"stripe_env"` // test or live

	WalletEndpoint    string `mapstructure:"wallet_endpoint"`
	WalletMerchantID  string `mapstructure:"wallet_merchant_id"`
	LocalCardEndpoint string `mapstructure:"local_card_endpoint"`
	LocalCardStoreID  string `mapstructure:"local_card_store_id"`
	LocalCardSecret   string `mapstructure:"local_card_secret"`

	// BankTransferReference is rendered into the manual-payment instruction
	BankTransferReference string `mapstructure:"bank_transfer_reference"`

	MockSuccessRate float64 `mapstructure:"mock_success_rate"`
	MockDelayMs     int     `mapstructure:"mock_delay_ms"`
}

// CurrencyConfig holds the conversion rate table settings
type CurrencyConfig struct {
	// Base is the currency every rate is expressed relative to
	Base string `mapstructure:"base"`
	// Rates maps currency code to its rate relative to Base
	Rates map[string]float64 `mapstructure:"rates"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	ServiceName   string  `mapstructure:"service_name"`
	CollectorAddr string  `mapstructure:"collector_addr"`
	SampleRatio   float64 `mapstructure:"sample_ratio"`
}

// Load loads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")

	// .env is optional; environment variables alone are enough
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{}
	if err := bindConfig(v, cfg); err != nil {
		return nil, fmt.Errorf("failed to bind config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "booking-engine")
	v.SetDefault("APP_ENVIRONMENT", "development")
	v.SetDefault("APP_DEBUG", true)
	v.SetDefault("APP_VERSION", "1.0.0")
	v.SetDefault("APP_LOG_LEVEL", "info")

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "30s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "30s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "120s")

	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "")
	v.SetDefault("DATABASE_DBNAME", "booking_engine")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("DATABASE_CONN_MAX_IDLE_TIME", "30m")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 100)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 10)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
	v.SetDefault("REDIS_READ_TIMEOUT", "3s")
	v.SetDefault("REDIS_WRITE_TIMEOUT", "3s")

	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_CLIENT_ID", "booking-engine")
	v.SetDefault("KAFKA_TOPIC", "booking.events")

	v.SetDefault("PAYMENT_CARD_GATEWAY", "mock")
	v.SetDefault("PAYMENT_STRIPE_ENV", "test")
	v.SetDefault("PAYMENT_MOCK_SUCCESS_RATE", 1.0)
	v.SetDefault("PAYMENT_MOCK_DELAY_MS", 0)
	v.SetDefault("PAYMENT_BANK_TRANSFER_REFERENCE", "ATLAS-VOYAGES")

	v.SetDefault("CURRENCY_BASE", "MAD")

	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "booking-engine")
	v.SetDefault("OTEL_COLLECTOR_ADDR", "localhost:4317")
	v.SetDefault("OTEL_SAMPLE_RATIO", 1.0)
}

func bindConfig(v *viper.Viper, cfg *Config) error {
	cfg.App = AppConfig{
		Name:        v.GetString("APP_NAME"),
		Environment: v.GetString("APP_ENVIRONMENT"),
		Debug:       v.GetBool("APP_DEBUG"),
		Version:     v.GetString("APP_VERSION"),
		LogLevel:    v.GetString("APP_LOG_LEVEL"),
	}
	cfg.Server = ServerConfig{
		Host:         v.GetString("SERVER_HOST"),
		Port:         v.GetInt("SERVER_PORT"),
		ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
		WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
		IdleTimeout:  v.GetDuration("SERVER_IDLE_TIMEOUT"),
	}
	cfg.Database = DatabaseConfig{
		Host:            v.GetString("DATABASE_HOST"),
		Port:            v.GetInt("DATABASE_PORT"),
		User:            v.GetString("DATABASE_USER"),
		Password:        v.GetString("DATABASE_PASSWORD"),
		DBName:          v.GetString("DATABASE_DBNAME"),
		SSLMode:         v.GetString("DATABASE_SSLMODE"),
		MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
		MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
		ConnMaxLifetime: v.GetDuration("DATABASE_CONN_MAX_LIFETIME"),
		ConnMaxIdleTime: v.GetDuration("DATABASE_CONN_MAX_IDLE_TIME"),
	}
	cfg.Redis = RedisConfig{
		Host:         v.GetString("REDIS_HOST"),
		Port:         v.GetInt("REDIS_PORT"),
		Password:     v.GetString("REDIS_PASSWORD"),
		DB:           v.GetInt("REDIS_DB"),
		PoolSize:     v.GetInt("REDIS_POOL_SIZE"),
		MinIdleConns: v.GetInt("REDIS_MIN_IDLE_CONNS"),
		DialTimeout:  v.GetDuration("REDIS_DIAL_TIMEOUT"),
		ReadTimeout:  v.GetDuration("REDIS_READ_TIMEOUT"),
		WriteTimeout: v.GetDuration("REDIS_WRITE_TIMEOUT"),
	}
	cfg.Kafka = KafkaConfig{
		Enabled:  v.GetBool("KAFKA_ENABLED"),
		Brokers:  strings.Split(v.GetString("KAFKA_BROKERS"), ","),
		ClientID: v.GetString("KAFKA_CLIENT_ID"),
		Topic:    v.GetString("KAFKA_TOPIC"),
	}
	cfg.Payment = PaymentConfig{
		CardGateway:           v.GetString("PAYMENT_CARD_GATEWAY"),
		StripeSecretKey:       v.GetString("PAYMENT_STRIPE_SECRET_KEY"),
		StripeEnv:             v.GetString("PAYMENT_STRIPE_ENV"),
		WalletEndpoint:        v.GetString("PAYMENT_WALLET_ENDPOINT"),
		WalletMerchantID:      v.GetString("PAYMENT_WALLET_MERCHANT_ID"),
		LocalCardEndpoint:     v.GetString("PAYMENT_LOCAL_CARD_ENDPOINT"),
		LocalCardStoreID:      v.GetString("PAYMENT_LOCAL_CARD_STORE_ID"),
		LocalCardSecret:       v.GetString("PAYMENT_LOCAL_CARD_SECRET"),
		BankTransferReference: v.GetString("PAYMENT_BANK_TRANSFER_REFERENCE"),
		MockSuccessRate:       v.GetFloat64("PAYMENT_MOCK_SUCCESS_RATE"),
		MockDelayMs:           v.GetInt("PAYMENT_MOCK_DELAY_MS"),
	}
	rates := make(map[string]float64)
	for k, val := range v.GetStringMap("CURRENCY_RATES") {
		rates[k] = cast.ToFloat64(val)
	}
	cfg.Currency = CurrencyConfig{
		Base:  v.GetString("CURRENCY_BASE"),
		Rates: rates,
	}
	cfg.OTel = OTelConfig{
		Enabled:       v.GetBool("OTEL_ENABLED"),
		ServiceName:   v.GetString("OTEL_SERVICE_NAME"),
		CollectorAddr: v.GetString("OTEL_COLLECTOR_ADDR"),
		SampleRatio:   v.GetFloat64("OTEL_SAMPLE_RATIO"),
	}
	return nil
}

// Validate checks required configuration values
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Currency.Base == "" {
		return fmt.Errorf("currency base is required")
	}
	if c.Payment.CardGateway == "stripe" && c.Payment.StripeSecretKey == "" {
		return fmt.Errorf("stripe secret key is required when card gateway is stripe")
	}
	return nil
}

// IsDevelopment returns true in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
