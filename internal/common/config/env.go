package config

import (
	"os"

	"github.com/joho/godotenv"
)

// applyEnvOverrides 用环境变量覆盖配置中的敏感字段。
// 密钥不进配置文件/Consul，只从环境（或 .env）读取。
func applyEnvOverrides(cfg *Config) {
	// .env 不存在时静默忽略
	_ = godotenv.Load()

	setIfPresent(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setIfPresent(&cfg.Gateway.SecretKey, "PAYSTACK_SECRET_KEY")
	setIfPresent(&cfg.Gateway.WebhookSecret, "PAYSTACK_WEBHOOK_SECRET")
	setIfPresent(&cfg.Gateway.BaseURL, "PAYSTACK_BASE_URL")
	setIfPresent(&cfg.Gateway.Currency, "PAYSTACK_DEFAULT_CURRENCY")
	setIfPresent(&cfg.Database.Password, "DB_PASSWORD")
	setIfPresent(&cfg.Redis.Password, "REDIS_PASSWORD")
	setIfPresent(&cfg.Pricing.ExternalURL, "COST_CALCULATOR_API_URL")
	setIfPresent(&cfg.Pricing.ExternalAPIKey, "COST_CALCULATOR_API_KEY")
}

func setIfPresent(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
