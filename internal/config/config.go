package config

import (
	"fmt"
	"strings"

	"github.com/bloom-miniapp/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Log          LogConfig          `mapstructure:"log"`
	Database     DatabaseConfig     `mapstructure:"database"`
	UserJWT      JWTConfig          `mapstructure:"user_jwt"`
	AdminJWT     JWTConfig          `mapstructure:"admin_jwt"`
	Admin        AdminConfig        `mapstructure:"admin"`
	Captcha      CaptchaConfig      `mapstructure:"captcha"`
	TelegramAuth TelegramAuthConfig `mapstructure:"telegram_auth"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Queue        QueueConfig        `mapstructure:"queue"`
	CORS         CORSConfig         `mapstructure:"cors"`
	Security     SecurityConfig     `mapstructure:"security"`
	Cart         CartConfig         `mapstructure:"cart"`
	Checkout     CheckoutConfig     `mapstructure:"checkout"`
	Order        OrderConfig        `mapstructure:"order"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// JWTConfig JWT 配置
type JWTConfig struct {
	SecretKey   string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// AdminConfig 管理后台配置
// 库中没有任何管理员时，以 bootstrap_username / bootstrap_password 创建超级管理员。
type AdminConfig struct {
	BootstrapUsername string `mapstructure:"bootstrap_username"`
	BootstrapPassword string `mapstructure:"bootstrap_password"`
	PasswordMinLength int    `mapstructure:"password_min_length"`
}

// CaptchaConfig 管理员登录图片验证码配置
type CaptchaConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	Length        int  `mapstructure:"length"`
	Width         int  `mapstructure:"width"`
	Height        int  `mapstructure:"height"`
	NoiseCount    int  `mapstructure:"noise_count"`
	ExpireSeconds int  `mapstructure:"expire_seconds"`
	MaxStore      int  `mapstructure:"max_store"`
}

// TelegramAuthConfig Telegram Mini App 登录配置
type TelegramAuthConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	BotUsername        string `mapstructure:"bot_username"`
	BotToken           string `mapstructure:"bot_token"`
	LoginExpireSeconds int    `mapstructure:"login_expire_seconds"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AuthRateLimit       RateLimitConfig `mapstructure:"auth_rate_limit"`
	AdminLoginRateLimit RateLimitConfig `mapstructure:"admin_login_rate_limit"`
	CheckoutRateLimit   RateLimitConfig `mapstructure:"checkout_rate_limit"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
}

// CartConfig 购物车配置
type CartConfig struct {
	StorageDriver         string `mapstructure:"storage_driver"` // memory / file / redis / database
	FileDir               string `mapstructure:"file_dir"`
	KeyPrefix             string `mapstructure:"key_prefix"`
	PersistTimeoutSeconds int    `mapstructure:"persist_timeout_seconds"`
	MaxQuantity           int    `mapstructure:"max_quantity"`
	IdleTTLSeconds        int    `mapstructure:"idle_ttl_seconds"` // 常驻购物车空闲回收时间，<= 0 不回收
}

// CheckoutConfig 结算配置
type CheckoutConfig struct {
	Mode             string `mapstructure:"mode"` // local / remote
	RemoteBaseURL    string `mapstructure:"remote_base_url"`
	RemoteToken      string `mapstructure:"remote_token"`
	RemoteTimeoutSec int    `mapstructure:"remote_timeout_seconds"`
}

// OrderConfig 订单配置
type OrderConfig struct {
	Currency             string `mapstructure:"currency"`
	PaymentExpireMinutes int    `mapstructure:"payment_expire_minutes"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")     // 从当前目录查找
	v.AddConfigPath("../")   // 如果从 cmd/server 运行
	v.AddConfigPath("./etc") // etc 文件夹

	SetDefaults(v)

	// 环境变量支持（例如 server.port -> SERVER_PORT）
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	}

	cfg, err := Decode(v)
	if err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(err)
	}
	return cfg
}

// Decode 将 viper 内容解析为配置
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("配置解析失败: %w", err)
	}
	cfg.Cart.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.Cart.StorageDriver))
	cfg.Checkout.Mode = strings.ToLower(strings.TrimSpace(cfg.Checkout.Mode))
	return &cfg, nil
}

// SetDefaults 设置默认值
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "bloom.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/bloom.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("user_jwt.secret", "user-change-me-in-production")
	v.SetDefault("user_jwt.expire_hours", 168)
	v.SetDefault("admin_jwt.secret", "admin-change-me-in-production")
	v.SetDefault("admin_jwt.expire_hours", 12)
	v.SetDefault("admin.bootstrap_username", "admin")
	v.SetDefault("admin.bootstrap_password", "")
	v.SetDefault("admin.password_min_length", 8)
	v.SetDefault("captcha.enabled", true)
	v.SetDefault("captcha.length", 5)
	v.SetDefault("captcha.width", 240)
	v.SetDefault("captcha.height", 80)
	v.SetDefault("captcha.noise_count", 2)
	v.SetDefault("captcha.expire_seconds", 300)
	v.SetDefault("captcha.max_store", 10240)
	v.SetDefault("telegram_auth.enabled", true)
	v.SetDefault("telegram_auth.bot_username", "")
	v.SetDefault("telegram_auth.bot_token", "")
	v.SetDefault("telegram_auth.login_expire_seconds", 86400)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "bloom")
	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.queues", map[string]int{
		"default":  10,
		"critical": 5,
	})
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Accept-Language",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.auth_rate_limit.window_seconds", 300)
	v.SetDefault("security.auth_rate_limit.max_attempts", 20)
	v.SetDefault("security.admin_login_rate_limit.window_seconds", 300)
	v.SetDefault("security.admin_login_rate_limit.max_attempts", 10)
	v.SetDefault("security.checkout_rate_limit.window_seconds", 60)
	v.SetDefault("security.checkout_rate_limit.max_attempts", 5)
	v.SetDefault("cart.storage_driver", "file")
	v.SetDefault("cart.file_dir", "./db/carts")
	v.SetDefault("cart.key_prefix", "cart")
	v.SetDefault("cart.persist_timeout_seconds", 3)
	v.SetDefault("cart.max_quantity", 99)
	v.SetDefault("cart.idle_ttl_seconds", 1800)
	v.SetDefault("checkout.mode", "local")
	v.SetDefault("checkout.remote_base_url", "")
	v.SetDefault("checkout.remote_token", "")
	v.SetDefault("checkout.remote_timeout_seconds", 15)
	v.SetDefault("order.currency", "RUB")
	v.SetDefault("order.payment_expire_minutes", 30)
}
