package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bloom-miniapp/internal/cache"
	"github.com/bloom-miniapp/internal/cart"
	"github.com/bloom-miniapp/internal/config"
	"github.com/bloom-miniapp/internal/constants"
	"github.com/bloom-miniapp/internal/logger"
	"github.com/bloom-miniapp/internal/models"
	"github.com/bloom-miniapp/internal/repository"
)

const (
	defaultCartMaxQuantity = 99
	maxCartSweepInterval   = time.Minute
)

// CartStorageFactory 为用户创建购物车槽位
type CartStorageFactory func(userID uint) (cart.Storage, error)

// CartSubmitterFactory 为用户创建下单协作方
type CartSubmitterFactory func(userID uint) cart.OrderSubmitter

// NewCartStorageFactory 按 cart.storage_driver 选择槽位实现
func NewCartStorageFactory(cfg config.CartConfig, slotRepo repository.CartSlotRepository) (CartStorageFactory, error) {
	prefix := strings.TrimSpace(cfg.KeyPrefix)
	if prefix == "" {
		prefix = "cart"
	}
	switch cfg.StorageDriver {
	case constants.CartStorageMemory:
		return func(uint) (cart.Storage, error) {
			return cart.NewMemoryStorage(nil), nil
		}, nil
	case "", constants.CartStorageFile:
		dir := strings.TrimSpace(cfg.FileDir)
		if dir == "" {
			dir = "./db/carts"
		}
		return func(userID uint) (cart.Storage, error) {
			return cart.NewFileStorage(dir, fmt.Sprintf("%s_%d", prefix, userID))
		}, nil
	case constants.CartStorageRedis:
		if !cache.Enabled() {
			return nil, fmt.Errorf("%w: redis driver requires redis.enabled", ErrCartStorageUnavailable)
		}
		return func(userID uint) (cart.Storage, error) {
			return cache.NewCartStorage(fmt.Sprintf("%s:%d", prefix, userID))
		}, nil
	case constants.CartStorageDatabase:
		if slotRepo == nil {
			return nil, fmt.Errorf("%w: database driver requires a slot repository", ErrCartStorageUnavailable)
		}
		return func(userID uint) (cart.Storage, error) {
			return repository.NewCartStorage(slotRepo, fmt.Sprintf("%s:%d", prefix, userID))
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrCartStorageUnavailable, cfg.StorageDriver)
	}
}

type userCart struct {
	mu    sync.Mutex
	store *cart.Store

	// 以下字段由 CartService.mu 保护
	refs     int
	lastUsed time.Time
}

// CartService 购物车服务
// 每个用户一个 cart.Store，首次访问时创建并从槽位恢复。
// 空闲超过 cart.idle_ttl_seconds 且无进行中请求的购物车被回收，下次访问时从槽位重新恢复；
// memory 驱动的槽位随 Store 一起存在，不回收。
type CartService struct {
	cfg        config.CartConfig
	catalog    *CatalogService
	storages   CartStorageFactory
	submitters CartSubmitterFactory
	now        func() time.Time

	mu        sync.Mutex
	carts     map[uint]*userCart
	lastSweep time.Time
}

// NewCartService 创建购物车服务
func NewCartService(cfg config.CartConfig, catalog *CatalogService, storages CartStorageFactory, submitters CartSubmitterFactory) *CartService {
	return &CartService{
		cfg:        cfg,
		catalog:    catalog,
		storages:   storages,
		submitters: submitters,
		now:        time.Now,
		carts:      make(map[uint]*userCart),
	}
}

// Resident 当前常驻内存的购物车数量
func (s *CartService) Resident() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

// Get 获取购物车快照
func (s *CartService) Get(userID uint) (cart.Snapshot, error) {
	entry, release, err := s.acquire(userID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	defer release()
	return entry.store.Snapshot(), nil
}

// Add 加入商品，结果数量必须在 1..max_quantity 之间
func (s *CartService) Add(userID, productID uint, quantity int) (cart.Snapshot, error) {
	maxQuantity := s.maxQuantity()
	if quantity < 1 || quantity > maxQuantity {
		return cart.Snapshot{}, ErrCartQuantityInvalid
	}
	product, err := s.catalog.GetActiveProductForSale(productID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	entry, release, err := s.acquire(userID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	defer release()

	entry.mu.Lock()
	defer entry.mu.Unlock()
	id := cart.UintID(product.ID)
	if existing, ok := entry.store.Item(id); ok && existing.Quantity+quantity > maxQuantity {
		return cart.Snapshot{}, ErrCartQuantityInvalid
	}
	entry.store.AddItem(buildCartProduct(product), quantity)
	return entry.store.Snapshot(), nil
}

// Update 设置数量；quantity <= 0 时移除，商品不在购物车中时返回 ErrCartItemNotFound
func (s *CartService) Update(userID, productID uint, quantity int) (cart.Snapshot, error) {
	if quantity > s.maxQuantity() {
		return cart.Snapshot{}, ErrCartQuantityInvalid
	}
	entry, release, err := s.acquire(userID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	defer release()
	entry.mu.Lock()
	defer entry.mu.Unlock()
	id := cart.UintID(productID)
	if _, ok := entry.store.Item(id); !ok && quantity > 0 {
		return cart.Snapshot{}, ErrCartItemNotFound
	}
	entry.store.UpdateQuantity(id, quantity)
	return entry.store.Snapshot(), nil
}

// Remove 移除商品，不存在时不做修改
func (s *CartService) Remove(userID, productID uint) (cart.Snapshot, error) {
	entry, release, err := s.acquire(userID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	defer release()
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.store.RemoveItem(cart.UintID(productID))
	return entry.store.Snapshot(), nil
}

// Clear 清空购物车
func (s *CartService) Clear(userID uint) (cart.Snapshot, error) {
	entry, release, err := s.acquire(userID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	defer release()
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.store.Clear()
	return entry.store.Snapshot(), nil
}

// Checkout 提交购物车生成订单
// 等待下单结果期间不持有用户锁，允许其他请求继续修改购物车。
func (s *CartService) Checkout(ctx context.Context, userID uint, meta cart.OrderMeta) (*cart.OrderResult, error) {
	entry, release, err := s.acquire(userID)
	if err != nil {
		return nil, err
	}
	defer release()
	if meta == nil {
		meta = cart.OrderMeta{}
	}
	return entry.store.Checkout(ctx, meta)
}

// acquire 取得用户购物车并标记为使用中，调用方结束后必须执行 release
func (s *CartService) acquire(userID uint) (*userCart, func(), error) {
	if userID == 0 {
		return nil, nil, ErrInvalidToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweepLocked(now)

	entry, ok := s.carts[userID]
	if !ok {
		var err error
		entry, err = s.newUserCart(userID)
		if err != nil {
			return nil, nil, err
		}
		s.carts[userID] = entry
	}
	entry.refs++
	entry.lastUsed = now

	release := func() {
		s.mu.Lock()
		entry.refs--
		entry.lastUsed = s.now()
		s.mu.Unlock()
	}
	return entry, release, nil
}

// sweepLocked 回收空闲购物车，调用方持有 s.mu
func (s *CartService) sweepLocked(now time.Time) {
	ttl := s.idleTTL()
	if ttl <= 0 || s.cfg.StorageDriver == constants.CartStorageMemory {
		return
	}
	interval := ttl
	if interval > maxCartSweepInterval {
		interval = maxCartSweepInterval
	}
	if now.Sub(s.lastSweep) < interval {
		return
	}
	s.lastSweep = now
	evicted := 0
	for userID, entry := range s.carts {
		if entry.refs > 0 || now.Sub(entry.lastUsed) < ttl {
			continue
		}
		delete(s.carts, userID)
		evicted++
	}
	if evicted > 0 {
		logger.Debugw("cart_idle_evicted", "evicted", evicted, "resident", len(s.carts))
	}
}

func (s *CartService) idleTTL() time.Duration {
	return time.Duration(s.cfg.IdleTTLSeconds) * time.Second
}

func (s *CartService) newUserCart(userID uint) (*userCart, error) {
	storage, err := s.storages(userID)
	if err != nil {
		logger.Errorw("cart_storage_create_failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrCartStorageUnavailable, err)
	}
	opts := []cart.Option{
		cart.WithLogger(logger.Component("cart").With("user_id", userID)),
	}
	if s.cfg.PersistTimeoutSeconds > 0 {
		opts = append(opts, cart.WithPersistTimeout(time.Duration(s.cfg.PersistTimeoutSeconds)*time.Second))
	}
	if s.submitters != nil {
		if submitter := s.submitters(userID); submitter != nil {
			opts = append(opts, cart.WithOrderSubmitter(submitter))
		}
	}
	return &userCart{store: cart.NewStore(storage, opts...)}, nil
}

func (s *CartService) maxQuantity() int {
	if s.cfg.MaxQuantity > 0 {
		return s.cfg.MaxQuantity
	}
	return defaultCartMaxQuantity
}

// buildCartProduct 商品展示字段随购物车项保存
func buildCartProduct(product *models.Product) cart.Product {
	fields := map[string]json.RawMessage{}
	put := func(key string, value interface{}) {
		raw, err := json.Marshal(value)
		if err != nil {
			return
		}
		fields[key] = raw
	}
	put("name", product.TitleJSON.Text("en-US"))
	put("title", product.TitleJSON)
	put("image", product.Images.First())
	put("category_id", product.CategoryID)
	put("slug", product.Slug)
	put("currency", product.PriceCurrency)
	return cart.Product{
		ID:     cart.UintID(product.ID),
		Price:  product.PriceAmount,
		Fields: fields,
	}
}
