package router

import (
	"fmt"
	"strings"

	"github.com/bloom-miniapp/internal/cache"
	"github.com/bloom-miniapp/internal/config"
	adminhandlers "github.com/bloom-miniapp/internal/http/handlers/admin"
	publichandlers "github.com/bloom-miniapp/internal/http/handlers/public"
	"github.com/bloom-miniapp/internal/logger"
	"github.com/bloom-miniapp/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	h := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "bloom"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:telegram_login", redisPrefix),
		WindowSeconds: cfg.Security.AuthRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.AuthRateLimit.MaxAttempts,
		MessageKey:    "error.login_too_many",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.AdminLoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.AdminLoginRateLimit.MaxAttempts,
		MessageKey:    "error.login_too_many",
	}
	checkoutRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:checkout", redisPrefix),
		WindowSeconds: cfg.Security.CheckoutRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CheckoutRateLimit.MaxAttempts,
		MessageKey:    "error.checkout_too_many",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 商品目录（公开）
		public := apiV1.Group("/public")
		{
			public.GET("/categories", h.GetCategories)
			public.GET("/products", h.GetProducts)
			public.GET("/products/:id", h.GetProduct)
		}

		auth := apiV1.Group("/auth")
		{
			auth.POST("/telegram/login", RateLimitMiddleware(redisClient, loginRule, KeyByIP), h.TelegramLogin)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", h.GetCurrentUser)

			user.GET("/cart", h.GetCart)
			user.DELETE("/cart", h.ClearCart)
			user.POST("/cart/items", h.AddCartItem)
			user.PUT("/cart/items/:product_id", h.UpdateCartItem)
			user.DELETE("/cart/items/:product_id", h.DeleteCartItem)
			user.POST("/cart/checkout", RateLimitMiddleware(redisClient, checkoutRule, KeyByIPAndJSONField("phone")), h.Checkout)

			user.POST("/orders", RateLimitMiddleware(redisClient, checkoutRule, KeyByUser), h.CreateOrder)
			user.GET("/orders", h.ListOrders)
			user.GET("/orders/:id", h.GetOrder)
		}

		// 管理后台
		adminGroup := apiV1.Group("/admin")
		{
			adminGroup.GET("/captcha", adminHandler.GetCaptcha)
			adminGroup.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.Login)

			// 仅需登录：个人信息与改密
			self := adminGroup.Group("")
			self.Use(AdminJWTAuthMiddleware(cfg.AdminJWT.SecretKey, c.AdminRepo))
			{
				self.GET("/me", adminHandler.GetMe)
				self.PUT("/password", adminHandler.ChangePassword)
				self.GET("/authz/me", adminHandler.GetAuthzMe)
			}

			authorized := adminGroup.Group("")
			authorized.Use(AdminJWTAuthMiddleware(cfg.AdminJWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.GET("/categories", adminHandler.ListCategories)
				authorized.POST("/categories", adminHandler.CreateCategory)
				authorized.PUT("/categories/:id", adminHandler.UpdateCategory)
				authorized.DELETE("/categories/:id", adminHandler.DeleteCategory)

				authorized.GET("/products", adminHandler.ListProducts)
				authorized.POST("/products", adminHandler.CreateProduct)
				authorized.GET("/products/:id", adminHandler.GetProduct)
				authorized.PUT("/products/:id", adminHandler.UpdateProduct)
				authorized.DELETE("/products/:id", adminHandler.DeleteProduct)

				authorized.GET("/orders", adminHandler.ListOrders)
				authorized.GET("/orders/:id", adminHandler.GetOrder)
				authorized.PATCH("/orders/:id", adminHandler.UpdateOrderStatus)

				authorized.GET("/users", adminHandler.ListUsers)
				authorized.GET("/users/:id", adminHandler.GetUser)
				authorized.PATCH("/users/:id", adminHandler.UpdateUserStatus)

				authorized.GET("/authz/roles", adminHandler.ListRoles)
				authorized.POST("/authz/roles", adminHandler.CreateRole)
				authorized.DELETE("/authz/roles/:role", adminHandler.DeleteRole)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetRolePolicies)
				authorized.POST("/authz/policies", adminHandler.GrantPolicy)
				authorized.DELETE("/authz/policies", adminHandler.RevokePolicy)
				authorized.GET("/authz/admins", adminHandler.ListAdmins)
				authorized.POST("/authz/admins", adminHandler.CreateAdmin)
				authorized.DELETE("/authz/admins/:id", adminHandler.DeleteAdmin)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAdminRoles)
			}
		}
	}

	// 健康检查
	r.GET("/health", h.Health)

	return r
}
