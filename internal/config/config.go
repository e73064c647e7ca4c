package config

import (
	"github.com/roomhive/service-reservation/internal/common/config"
)

// PricingConfig holds the rates applied on top of the nightly subtotal.
// Rates are in basis points (100 bps = 1%).
type PricingConfig struct {
	TaxRateBps           int64
	ServiceChargeRateBps int64
	Currency             string
}

// PaymentConfig holds settings for the downstream payment service. An empty
// BaseURL disables refund dispatch.
type PaymentConfig struct {
	BaseURL string
}

// ServiceConfig holds all configuration for the reservation service.
type ServiceConfig struct {
	Port           string
	AppEnv         string
	MigrationsPath string
	DBConfig       config.DatabaseConfig
	KafkaConfig    config.KafkaConfig
	RedisConfig    config.RedisConfig
	PricingConfig  PricingConfig
	PaymentConfig  PaymentConfig
}

// Load reads configuration from environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("RESERVATION")
	if err != nil {
		return nil, err
	}

	v.SetDefault("DB_NAME", "reservations")
	v.SetDefault("MIGRATIONS_PATH", "migrations")
	v.SetDefault("TAX_RATE_BPS", 1000)
	v.SetDefault("SERVICE_CHARGE_BPS", 500)
	v.SetDefault("CURRENCY", "USD")
	v.SetDefault("PAYMENT_BASE_URL", "")

	return &ServiceConfig{
		Port:           config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:         config.GetAppEnv(v),
		MigrationsPath: v.GetString("MIGRATIONS_PATH"),
		DBConfig:       config.LoadDatabaseConfig(v, "DB_NAME"),
		KafkaConfig:    config.LoadKafkaConfig(v),
		RedisConfig:    config.LoadRedisConfig(v),
		PricingConfig: PricingConfig{
			TaxRateBps:           v.GetInt64("TAX_RATE_BPS"),
			ServiceChargeRateBps: v.GetInt64("SERVICE_CHARGE_BPS"),
			Currency:             v.GetString("CURRENCY"),
		},
		PaymentConfig: PaymentConfig{
			BaseURL: v.GetString("PAYMENT_BASE_URL"),
		},
	}, nil
}
