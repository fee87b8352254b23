package provider

import (
	"github.com/bloom-miniapp/internal/authz"
	"github.com/bloom-miniapp/internal/cache"
	"github.com/bloom-miniapp/internal/cart"
	"github.com/bloom-miniapp/internal/config"
	"github.com/bloom-miniapp/internal/constants"
	"github.com/bloom-miniapp/internal/logger"
	"github.com/bloom-miniapp/internal/models"
	"github.com/bloom-miniapp/internal/orderclient"
	"github.com/bloom-miniapp/internal/queue"
	"github.com/bloom-miniapp/internal/repository"
	"github.com/bloom-miniapp/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	DB          *gorm.DB
	QueueClient *queue.Client
	OrderClient *orderclient.Client

	// Repositories
	UserRepo     repository.UserRepository
	CategoryRepo repository.CategoryRepository
	ProductRepo  repository.ProductRepository
	OrderRepo    repository.OrderRepository
	CartSlotRepo repository.CartSlotRepository
	AdminRepo    repository.AdminRepository

	// Services
	TelegramAuthService *service.TelegramAuthService
	CatalogService      *service.CatalogService
	OrderService        *service.OrderService
	CartService         *service.CartService
	AuthzService        *authz.Service
	AdminAuthService    *service.AdminAuthService
	CaptchaService      *service.CaptchaService
	UserAdminService    *service.UserAdminService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) (*Container, error) {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient = nil
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories(models.DB)

	// 2. 初始化 Services
	if err := c.initServices(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewContainerWithDB 使用指定数据库创建容器，不初始化 Redis 与队列
func NewContainerWithDB(cfg *config.Config, db *gorm.DB) (*Container, error) {
	c := &Container{Config: cfg}
	c.initRepositories(db)
	if err := c.initServices(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.DB = db
	c.UserRepo = repository.NewUserRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.CartSlotRepo = repository.NewCartSlotRepository(db)
	c.AdminRepo = repository.NewAdminRepository(db)
}

func (c *Container) initServices() error {
	c.TelegramAuthService = service.NewTelegramAuthService(c.Config, c.UserRepo)
	c.CatalogService = service.NewCatalogService(c.CategoryRepo, c.ProductRepo)
	c.OrderService = service.NewOrderService(c.Config.Order, c.OrderRepo, c.ProductRepo, c.UserRepo, c.QueueClient)
	c.UserAdminService = service.NewUserAdminService(c.UserRepo)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)

	authzService, err := authz.NewService(c.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		return err
	}
	c.AuthzService = authzService
	c.AdminAuthService = service.NewAdminAuthService(c.Config, c.AdminRepo, c.AuthzService)

	storages, err := service.NewCartStorageFactory(c.Config.Cart, c.CartSlotRepo)
	if err != nil {
		logger.Errorw("provider_init_cart_storage_failed", "driver", c.Config.Cart.StorageDriver, "error", err)
		return err
	}
	submitters, err := c.buildCartSubmitters()
	if err != nil {
		logger.Errorw("provider_init_checkout_failed", "mode", c.Config.Checkout.Mode, "error", err)
		return err
	}
	c.CartService = service.NewCartService(c.Config.Cart, c.CatalogService, storages, submitters)
	return nil
}

// buildCartSubmitters 按 checkout.mode 选择下单协作方
func (c *Container) buildCartSubmitters() (service.CartSubmitterFactory, error) {
	switch c.Config.Checkout.Mode {
	case constants.CheckoutModeRemote:
		client, err := orderclient.New(c.Config.Checkout)
		if err != nil {
			return nil, err
		}
		c.OrderClient = client
		logger.Infow("provider_checkout_remote", "base_url", c.Config.Checkout.RemoteBaseURL)
		return func(userID uint) cart.OrderSubmitter {
			return client.ForUser(userID)
		}, nil
	default:
		return c.OrderService.SubmitterFor, nil
	}
}
