package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/bloom-miniapp/internal/app"
	"github.com/bloom-miniapp/internal/config"
	"github.com/bloom-miniapp/internal/constants"
	"github.com/bloom-miniapp/internal/logger"
	"github.com/bloom-miniapp/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset   = "\033[0m"
	ansiBold    = "\033[1m"
	ansiDim     = "\033[2m"
	ansiMagenta = "\033[95m"
	ansiGreen   = "\033[32m"
)

func main() {
	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	printStartupBanner(mode)

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := validateConfig(cfg); err != nil {
		if cfg.Server.Mode == "release" {
			stdLog.Fatalf("配置校验失败: %v", err)
		}
		stdLog.Printf("警告: %v", err)
	}

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

// validateConfig 检查生产环境必需的配置项
func validateConfig(cfg *config.Config) error {
	var problems []string
	if isWeakSecret(cfg.UserJWT.SecretKey) {
		problems = append(problems, "user_jwt.secret 过弱或仍为默认值")
	}
	if isWeakSecret(cfg.AdminJWT.SecretKey) {
		problems = append(problems, "admin_jwt.secret 过弱或仍为默认值")
	}
	if cfg.AdminJWT.SecretKey == cfg.UserJWT.SecretKey {
		problems = append(problems, "admin_jwt.secret 不能与 user_jwt.secret 相同")
	}
	if cfg.TelegramAuth.Enabled && strings.TrimSpace(cfg.TelegramAuth.BotToken) == "" {
		problems = append(problems, "telegram_auth.bot_token 未配置，Mini App 登录将全部失败")
	}
	if cfg.Checkout.Mode == constants.CheckoutModeRemote && strings.TrimSpace(cfg.Checkout.RemoteBaseURL) == "" {
		problems = append(problems, "checkout.mode=remote 需要配置 checkout.remote_base_url")
	}
	if cfg.Cart.StorageDriver == constants.CartStorageRedis && !cfg.Redis.Enabled {
		problems = append(problems, "cart.storage_driver=redis 需要 redis.enabled=true")
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%s", strings.Join(problems, "; "))
}

func printStartupBanner(mode string) {
	fmt.Println(ansiMagenta + "  ___  _                        " + ansiReset)
	fmt.Println(ansiMagenta + " | _ )| | ___  ___  _ __        " + ansiReset)
	fmt.Println(ansiMagenta + " | _ \\| |/ _ \\/ _ \\| '  \\       " + ansiReset)
	fmt.Println(ansiMagenta + " |___/|_|\\___/\\___/|_|_|_| mini app" + ansiReset)
	fmt.Println(ansiGreen + ansiBold + "Telegram flower shop API" + ansiReset + ansiDim + " (mode: " + mode + ")" + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	return strings.Contains(normalized, "change-me") ||
		strings.Contains(normalized, "change-in-production") ||
		strings.Contains(normalized, "your-secret-key")
}
