package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bloom-miniapp/internal/cart"
	"github.com/bloom-miniapp/internal/config"
	"github.com/bloom-miniapp/internal/constants"
	"github.com/bloom-miniapp/internal/logger"
	"github.com/bloom-miniapp/internal/models"
	"github.com/bloom-miniapp/internal/queue"
	"github.com/bloom-miniapp/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 由订单字段直接承载的附加信息，其余键写入 extra
var orderMetaColumns = map[string]struct{}{
	constants.OrderMetaCustomerName: {},
	constants.OrderMetaPhone:        {},
	constants.OrderMetaAddress:      {},
	constants.OrderMetaDeliveryDate: {},
	constants.OrderMetaComment:      {},
	constants.OrderMetaClientIP:     {},
	"items":                         {},
}

// OrderService 订单服务
type OrderService struct {
	cfg         config.OrderConfig
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	queueClient *queue.Client
	now         func() time.Time
}

// NewOrderService 创建订单服务
func NewOrderService(cfg config.OrderConfig, orderRepo repository.OrderRepository, productRepo repository.ProductRepository, userRepo repository.UserRepository, queueClient *queue.Client) *OrderService {
	return &OrderService{
		cfg:         cfg,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		queueClient: queueClient,
		now:         time.Now,
	}
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	UserID   uint
	Request  cart.OrderRequest
	ClientIP string
}

type orderLinePlan struct {
	productID uint
	quantity  int
	price     models.Money
}

// CreateOrder 校验下单明细并在一个事务内写入订单与订单项
// 单价以商品目录为准；提交价格与目录不一致时记录日志。
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidToken
	}
	lines, err := mergeOrderLines(input.Request.Items)
	if err != nil {
		return nil, err
	}
	customerName := input.Request.MetaString(constants.OrderMetaCustomerName)
	phone := input.Request.MetaString(constants.OrderMetaPhone)
	if customerName == "" || phone == "" {
		return nil, ErrOrderCustomerRequired
	}

	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.productID)
	}
	products, err := s.productRepo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	productMap := make(map[uint]models.Product, len(products))
	for _, product := range products {
		productMap[product.ID] = product
	}

	currency := s.resolveCurrency()
	now := s.now()
	expiresAt := now.Add(time.Duration(s.resolveExpireMinutes()) * time.Minute)
	totalAmount := decimal.Zero
	totalItems := 0
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		product, ok := productMap[line.productID]
		if !ok || !product.IsActive {
			return nil, fmt.Errorf("%w: product %d", ErrProductNotAvailable, line.productID)
		}
		if !line.price.Decimal.IsZero() && !line.price.Decimal.Equal(product.PriceAmount.Decimal) {
			logger.Warnw("order_price_mismatch",
				"user_id", input.UserID,
				"product_id", product.ID,
				"submitted", line.price.String(),
				"catalog", product.PriceAmount.String(),
			)
		}
		lineTotal := product.PriceAmount.MulInt(line.quantity)
		totalAmount = totalAmount.Add(lineTotal.Decimal)
		totalItems += line.quantity
		items = append(items, models.OrderItem{
			ProductID:  product.ID,
			TitleJSON:  product.TitleJSON,
			Image:      product.Images.First(),
			UnitPrice:  product.PriceAmount,
			Quantity:   line.quantity,
			TotalPrice: lineTotal,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	clientIP := strings.TrimSpace(input.ClientIP)
	if clientIP == "" {
		clientIP = input.Request.MetaString(constants.OrderMetaClientIP)
	}
	order := &models.Order{
		OrderNo:      generateOrderNo(now),
		UserID:       input.UserID,
		Status:       constants.OrderStatusPendingPayment,
		Currency:     currency,
		TotalAmount:  models.NewMoneyFromDecimal(totalAmount),
		TotalItems:   totalItems,
		CustomerName: customerName,
		Phone:        phone,
		Address:      input.Request.MetaString(constants.OrderMetaAddress),
		DeliveryDate: input.Request.MetaString(constants.OrderMetaDeliveryDate),
		Comment:      input.Request.MetaString(constants.OrderMetaComment),
		ExtraJSON:    extraOrderMeta(input.Request.Meta),
		ClientIP:     clientIP,
		ExpiresAt:    &expiresAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.orderRepo.Transaction(func(tx *gorm.DB) error {
		return s.orderRepo.WithTx(tx).Create(order, items)
	})
	if err != nil {
		logger.Errorw("order_create_failed", "user_id", input.UserID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrOrderCreateFailed, err)
	}
	logger.Infow("order_created",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"user_id", order.UserID,
		"total_amount", order.TotalAmount.String(),
		"total_items", order.TotalItems,
	)

	if s.userRepo != nil {
		if err := s.userRepo.UpdatePhone(input.UserID, phone); err != nil {
			logger.Warnw("order_user_phone_update_failed", "user_id", input.UserID, "error", err)
		}
	}
	s.enqueueOrderTasks(order)
	return order, nil
}

// SubmitterFor 返回绑定用户的本地下单协作方
func (s *OrderService) SubmitterFor(userID uint) cart.OrderSubmitter {
	return cart.OrderSubmitterFunc(func(_ context.Context, req cart.OrderRequest) (*cart.OrderResult, error) {
		order, err := s.CreateOrder(CreateOrderInput{UserID: userID, Request: req})
		if err != nil {
			return nil, err
		}
		return OrderResultFrom(order), nil
	})
}

// OrderResultFrom 订单转换为下单结果
func OrderResultFrom(order *models.Order) *cart.OrderResult {
	if order == nil {
		return nil
	}
	return &cart.OrderResult{
		OrderID:     order.ID,
		OrderNo:     order.OrderNo,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Currency:    order.Currency,
	}
}

func (s *OrderService) enqueueOrderTasks(order *models.Order) {
	if s.queueClient == nil || !s.queueClient.Enabled() {
		return
	}
	if err := s.queueClient.EnqueueOrderCreated(queue.OrderCreatedPayload{
		OrderID: order.ID,
		OrderNo: order.OrderNo,
	}); err != nil {
		logger.Errorw("order_enqueue_created_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"error", err,
		)
	}
	delay := time.Duration(s.resolveExpireMinutes()) * time.Minute
	if err := s.queueClient.EnqueueOrderTimeoutCancel(queue.OrderTimeoutCancelPayload{
		OrderID: order.ID,
	}, delay); err != nil {
		// 读取订单时仍会懒取消过期订单
		logger.Errorw("order_enqueue_timeout_cancel_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"error", err,
		)
	}
}

func (s *OrderService) resolveExpireMinutes() int {
	if s.cfg.PaymentExpireMinutes > 0 {
		return s.cfg.PaymentExpireMinutes
	}
	return 30
}

func (s *OrderService) resolveCurrency() string {
	currency := strings.ToUpper(strings.TrimSpace(s.cfg.Currency))
	if currency == "" {
		return "RUB"
	}
	return currency
}

func generateOrderNo(now time.Time) string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
	return fmt.Sprintf("BL%s%s", now.Format("20060102"), fragment)
}

// mergeOrderLines 校验并合并重复商品的下单明细，保持首次出现顺序
func mergeOrderLines(lines []cart.OrderLine) ([]orderLinePlan, error) {
	if len(lines) == 0 {
		return nil, ErrInvalidOrderItem
	}
	index := make(map[uint]int, len(lines))
	plans := make([]orderLinePlan, 0, len(lines))
	for _, line := range lines {
		productID, ok := line.ProductID.Uint()
		if !ok || line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product_id=%s quantity=%d", ErrInvalidOrderItem, line.ProductID, line.Quantity)
		}
		if idx, exists := index[productID]; exists {
			plans[idx].quantity += line.Quantity
			continue
		}
		index[productID] = len(plans)
		plans = append(plans, orderLinePlan{
			productID: productID,
			quantity:  line.Quantity,
			price:     line.Price,
		})
	}
	return plans, nil
}

func extraOrderMeta(meta cart.OrderMeta) models.JSON {
	if len(meta) == 0 {
		return nil
	}
	extra := models.JSON{}
	for key, value := range meta {
		if _, known := orderMetaColumns[key]; known {
			continue
		}
		extra[key] = value
	}
	if len(extra) == 0 {
		return nil
	}
	return extra
}
