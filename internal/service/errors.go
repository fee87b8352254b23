package service

import "errors"

var (
	// ErrNotFound 资源不存在
	ErrNotFound = errors.New("not found")
	// ErrSlugExists slug 已存在
	ErrSlugExists = errors.New("slug already exists")
	// ErrSlugInvalid slug 为空或格式无效
	ErrSlugInvalid = errors.New("slug is invalid")

	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrProductNotAvailable 商品已下架
	ErrProductNotAvailable = errors.New("product is not available")
	// ErrCategoryNotFound 分类不存在
	ErrCategoryNotFound = errors.New("category not found")

	// ErrCartQuantityInvalid 购物车数量超出范围
	ErrCartQuantityInvalid = errors.New("cart quantity is out of range")
	// ErrCartItemNotFound 购物车中不存在该商品
	ErrCartItemNotFound = errors.New("cart item not found")
	// ErrCartStorageUnavailable 购物车存储不可用
	ErrCartStorageUnavailable = errors.New("cart storage unavailable")

	// ErrInvalidOrderItem 订单项无效
	ErrInvalidOrderItem = errors.New("invalid order item")
	// ErrOrderCustomerRequired 缺少收件人信息
	ErrOrderCustomerRequired = errors.New("customer name and phone are required")
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderCreateFailed 订单创建失败
	ErrOrderCreateFailed = errors.New("order create failed")
	// ErrOrderFetchFailed 订单读取失败
	ErrOrderFetchFailed = errors.New("order fetch failed")

	// ErrTelegramAuthDisabled Telegram 登录未启用
	ErrTelegramAuthDisabled = errors.New("telegram auth is disabled")
	// ErrTelegramInitDataInvalid initData 校验失败
	ErrTelegramInitDataInvalid = errors.New("telegram init data is invalid")
	// ErrTelegramInitDataExpired initData 已过期
	ErrTelegramInitDataExpired = errors.New("telegram init data is expired")
	// ErrUserDisabled 用户已禁用
	ErrUserDisabled = errors.New("user is disabled")
	// ErrInvalidToken 登录凭证无效
	ErrInvalidToken = errors.New("invalid token")

	// ErrCategoryInUse 分类下仍有商品
	ErrCategoryInUse = errors.New("category still has products")
	// ErrProductPriceInvalid 商品价格无效
	ErrProductPriceInvalid = errors.New("product price is invalid")
	// ErrOrderStatusInvalid 订单状态无效
	ErrOrderStatusInvalid = errors.New("order status is invalid")
	// ErrOrderStatusTransition 订单状态不允许流转
	ErrOrderStatusTransition = errors.New("order status transition not allowed")
	// ErrUserStatusInvalid 用户状态无效
	ErrUserStatusInvalid = errors.New("user status is invalid")

	// ErrInvalidCredentials 账号或密码错误
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidPassword 原密码错误
	ErrInvalidPassword = errors.New("invalid password")
	// ErrWeakPassword 密码强度不足
	ErrWeakPassword = errors.New("password is too weak")
	// ErrAdminUsernameInvalid 管理员账号格式无效
	ErrAdminUsernameInvalid = errors.New("admin username is invalid")
	// ErrAdminUsernameExists 管理员账号已存在
	ErrAdminUsernameExists = errors.New("admin username already exists")
	// ErrAdminNotFound 管理员不存在
	ErrAdminNotFound = errors.New("admin not found")
	// ErrAdminSelfDelete 不能删除自己
	ErrAdminSelfDelete = errors.New("cannot delete current admin")
	// ErrAdminLastSuper 至少保留一个超级管理员
	ErrAdminLastSuper = errors.New("cannot remove the last super admin")

	// ErrCaptchaRequired 缺少验证码
	ErrCaptchaRequired = errors.New("captcha is required")
	// ErrCaptchaInvalid 验证码错误或已过期
	ErrCaptchaInvalid = errors.New("captcha is invalid")
)
