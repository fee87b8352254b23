package constants

// 订单状态常量
const (
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusPaid           = "paid"
	OrderStatusDelivering     = "delivering"
	OrderStatusCompleted      = "completed"
	OrderStatusCanceled       = "canceled"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 购物车槽位驱动
const (
	CartStorageMemory   = "memory"
	CartStorageFile     = "file"
	CartStorageRedis    = "redis"
	CartStorageDatabase = "database"
)

// 结算模式
const (
	CheckoutModeLocal  = "local"
	CheckoutModeRemote = "remote"
)

// 队列名称
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型
const (
	TaskOrderCreated       = "order:created"
	TaskOrderTimeoutCancel = "order:timeout_cancel"
)

// 订单附加信息字段
const (
	OrderMetaCustomerName = "customer_name"
	OrderMetaPhone        = "phone"
	OrderMetaAddress      = "address"
	OrderMetaDeliveryDate = "delivery_date"
	OrderMetaComment      = "comment"
	OrderMetaClientIP     = "client_ip"
)
