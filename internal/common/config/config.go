package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Redis    RedisConfig    `json:"redis"`
	Consul   ConsulConfig   `json:"consul"`
	Jaeger   JaegerConfig   `json:"jaeger"`
	Auth     AuthConfig     `json:"auth"`
	Gateway  GatewayConfig  `json:"gateway"`
	Pricing  PricingConfig  `json:"pricing"`
	Log      LogConfig      `json:"log"`
}

// ServerConfig 服务配置
type ServerConfig struct {
	Name     string `json:"name"`      // 服务名称
	Host     string `json:"host"`      // 服务地址
	GRPCPort int    `json:"grpc_port"` // gRPC端口（health/consul check）
	HTTPPort int    `json:"http_port"` // HTTP端口（业务 API + webhook）
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver   string `json:"driver"`   // 数据库驱动
	Host     string `json:"host"`     // 数据库地址
	Port     int    `json:"port"`     // 数据库端口
	User     string `json:"user"`     // 用户名
	Password string `json:"password"` // 密码
	Database string `json:"database"` // 数据库名
	MaxIdle  int    `json:"max_idle"` // 最大空闲连接
	MaxOpen  int    `json:"max_open"` // 最大打开连接
}

// RedisConfig Redis配置（OTP 存储）
type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
}

// ConsulConfig Consul配置
type ConsulConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// JaegerConfig Jaeger配置
type JaegerConfig struct {
	Endpoint string  `json:"endpoint"`
	Sampler  float64 `json:"sampler"` // 采样率 0.0-1.0
}

// AuthConfig JWT 鉴权配置
type AuthConfig struct {
	Enabled        bool   `json:"enabled"`
	JWTSecret      string `json:"jwt_secret"`
	Issuer         string `json:"issuer"`
	Audience       string `json:"audience"`
	AccessTTLHours int    `json:"access_ttl_hours"` // access token 有效期（小时）
}

// GatewayConfig 外部支付网关（Paystack）配置
type GatewayConfig struct {
	BaseURL        string `json:"base_url"`
	SecretKey      string `json:"secret_key"`
	WebhookSecret  string `json:"webhook_secret"` // 为空时回退到 SecretKey
	Currency       string `json:"currency"`       // 默认币种（如 KES）
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// ResolveWebhookSecret webhook 校验密钥（未单独配置则复用 SecretKey）。
func (g GatewayConfig) ResolveWebhookSecret() string {
	if g.WebhookSecret != "" {
		return g.WebhookSecret
	}
	return g.SecretKey
}

// PricingConfig 行程费用估算配置。
// 金额字段为字符串，由 pricing 包解析为精确十进制，避免浮点误差。
type PricingConfig struct {
	BaseFare        string `json:"base_fare"`        // 起步价
	CostPerKM       string `json:"cost_per_km"`      // 每公里单价
	MinimumFare     string `json:"minimum_fare"`     // 保底价
	SurgeMultiplier string `json:"surge_multiplier"` // 默认溢价倍数（空=1）
	ExternalURL     string `json:"external_url"`     // 外部计价服务（可选）
	ExternalAPIKey  string `json:"external_api_key"`
	TimeoutSeconds  int    `json:"timeout_seconds"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level   string `json:"level"`   // debug, info, warn, error
	Format  string `json:"format"`  // json, text
	Output  string `json:"output"`  // stdout, file
	Path    string `json:"path"`    // 日志文件路径
	Backend string `json:"backend"` // logrus / zap
}

var (
	globalConfig *Config
	configOnce   sync.Once
)

// LoadConfig 加载配置：JSON 文件 -> 环境变量覆盖（密钥类字段见 env.go）。
func LoadConfig(configPath string) (*Config, error) {
	var err error
	configOnce.Do(func() {
		globalConfig = defaultConfig()
		// 配置文件不存在时使用默认配置（开发环境）
		if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
			logrus.Warnf("Config file not found: %s, using default config", configPath)
		} else {
			data, readErr := os.ReadFile(configPath)
			if readErr != nil {
				err = fmt.Errorf("failed to read config file: %w", readErr)
				return
			}
			if unmarshalErr := json.Unmarshal(data, globalConfig); unmarshalErr != nil {
				err = fmt.Errorf("failed to parse config file: %w", unmarshalErr)
				return
			}
		}
		applyEnvOverrides(globalConfig)
		err = globalConfig.validate()
	})

	if err != nil {
		return nil, err
	}

	return globalConfig, nil
}

// validate 启动前的基本检查。密钥类缺失不在这里报错（网关/认证按需启用），
// 只拦截明显配置错误。
func (c *Config) validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.Server.HTTPPort)
	}
	if c.Server.GRPCPort <= 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc_port: %d", c.Server.GRPCPort)
	}
	if c.Server.HTTPPort == c.Server.GRPCPort {
		return fmt.Errorf("http_port and grpc_port must differ: %d", c.Server.HTTPPort)
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		logrus.Warn("auth enabled but jwt_secret is empty, token issuance will fail")
	}
	return nil
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	if globalConfig == nil {
		return defaultConfig()
	}
	return globalConfig
}

// defaultConfig 默认配置（开发环境）
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:     "marketplace-service",
			Host:     "0.0.0.0",
			GRPCPort: 50051,
			HTTPPort: 8080,
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "root",
			Database: "swiftsoko",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			Password: "",
			DB:       0,
			PoolSize: 10,
		},
		Consul: ConsulConfig{
			Host: "localhost",
			Port: 8500,
		},
		Jaeger: JaegerConfig{
			Endpoint: "localhost:6831",
			Sampler:  1.0,
		},
		Auth: AuthConfig{
			Enabled:        true,
			Issuer:         "swiftsoko",
			Audience:       "swiftsoko",
			AccessTTLHours: 24,
		},
		Gateway: GatewayConfig{
			BaseURL:        "https://api.paystack.co",
			Currency:       "KES",
			TimeoutSeconds: 15,
		},
		Pricing: PricingConfig{
			BaseFare:       "150",
			CostPerKM:      "60",
			MinimumFare:    "200",
			TimeoutSeconds: 5,
		},
		Log: LogConfig{
			Level:  "debug",
			Format: "text",
			Output: "stdout",
			Path:   "logs/app.log",
		},
	}
}
