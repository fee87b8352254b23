package cart

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/bloom-miniapp/internal/logger"
	"github.com/bloom-miniapp/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultPersistTimeout = 3 * time.Second

// Snapshot 购物车快照（含派生汇总）
type Snapshot struct {
	Items       []Item       `json:"items"`
	TotalItems  int          `json:"total_items"`
	TotalAmount models.Money `json:"total_amount"`
	IsEmpty     bool         `json:"is_empty"`
}

// Observer 购物车变更回调，在每次变更完成后以最新快照调用
type Observer func(Snapshot)

// Option Store 构造选项
type Option func(*Store)

// WithLogger 指定日志实例
func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithPersistTimeout 指定单次读写槽位的超时时间
func WithPersistTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		if timeout > 0 {
			s.persistTimeout = timeout
		}
	}
}

// WithObserver 注册变更回调
func WithObserver(observer Observer) Option {
	return func(s *Store) {
		if observer != nil {
			s.observers = append(s.observers, observer)
		}
	}
}

// WithOrderSubmitter 指定下单协作方
func WithOrderSubmitter(submitter OrderSubmitter) Option {
	return func(s *Store) {
		s.submitter = submitter
	}
}

// Store 购物车状态容器
// 所有变更串行执行，每次变更后整体写回槽位；持久化失败只记录日志，内存状态始终可用。
type Store struct {
	mu             sync.Mutex
	items          []Item
	storage        Storage
	submitter      OrderSubmitter
	observers      []Observer
	persistTimeout time.Duration
	log            *zap.SugaredLogger
}

// NewStore 创建购物车并从槽位恢复
// 槽位内容无法解析时清除该槽位并以空购物车启动，不向调用方返回错误。
func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{
		items:          []Item{},
		storage:        storage,
		persistTimeout: defaultPersistTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.S()
	}
	s.restore()
	return s
}

func (s *Store) restore() {
	if s.storage == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
	defer cancel()

	data, err := s.storage.Load(ctx)
	if err != nil {
		s.log.Warnw("cart_storage_load_failed", "error", err)
		return
	}
	if len(data) == 0 {
		return
	}
	items, err := decodeItems(data)
	if err != nil {
		s.log.Warnw("cart_storage_corrupted", "error", err, "size", len(data))
		if clearErr := s.storage.Clear(ctx); clearErr != nil {
			s.log.Warnw("cart_storage_clear_failed", "error", clearErr)
		}
		return
	}
	s.items = items
	s.log.Debugw("cart_restored", "items", len(items))
}

// AddItem 加入商品；已存在时累加数量（上限 math.MaxInt），否则追加到末尾
// quantity 非正数、标识为空或单价为负时不做任何修改。
func (s *Store) AddItem(product Product, quantity int) {
	product.ID = ItemID(strings.TrimSpace(string(product.ID)))
	if quantity <= 0 {
		s.log.Debugw("cart_add_item_skip_non_positive", "id", product.ID, "quantity", quantity)
		return
	}
	if err := validateItem(product.ID, product.Price, quantity); err != nil {
		s.log.Warnw("cart_add_item_rejected", "id", product.ID, "price", product.Price.String(), "error", err)
		return
	}
	s.mutate(func(items []Item) []Item {
		if idx := indexOf(items, product.ID); idx >= 0 {
			if items[idx].Quantity > math.MaxInt-quantity {
				items[idx].Quantity = math.MaxInt
			} else {
				items[idx].Quantity += quantity
			}
			return items
		}
		return append(items, newItem(product, quantity))
	})
}

// UpdateQuantity 设置数量；quantity <= 0 等同于 RemoveItem，id 不存在时不做修改
func (s *Store) UpdateQuantity(id ItemID, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(id)
		return
	}
	s.mutate(func(items []Item) []Item {
		if idx := indexOf(items, id); idx >= 0 {
			items[idx].Quantity = quantity
		}
		return items
	})
}

// RemoveItem 删除购物车项，id 不存在时不做修改
func (s *Store) RemoveItem(id ItemID) {
	s.mutate(func(items []Item) []Item {
		idx := indexOf(items, id)
		if idx < 0 {
			return items
		}
		return append(items[:idx], items[idx+1:]...)
	})
}

// Clear 清空购物车
func (s *Store) Clear() {
	s.mutate(func([]Item) []Item {
		return []Item{}
	})
}

// Items 返回购物车项副本（按加入顺序）
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// Item 按标识查找购物车项
func (s *Store) Item(id ItemID) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := indexOf(s.items, id); idx >= 0 {
		return s.items[idx].clone(), true
	}
	return Item{}, false
}

// Snapshot 返回购物车快照
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return buildSnapshot(s.items)
}

// TotalItems 商品总件数
func (s *Store) TotalItems() int {
	return s.Snapshot().TotalItems
}

// TotalAmount 商品总金额
func (s *Store) TotalAmount() models.Money {
	return s.Snapshot().TotalAmount
}

// IsEmpty 是否为空
func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

func (s *Store) mutate(fn func([]Item) []Item) {
	s.mu.Lock()
	s.items = fn(s.items)
	if s.items == nil {
		s.items = []Item{}
	}
	s.persistLocked()
	snapshot := buildSnapshot(s.items)
	s.mu.Unlock()

	s.notify(snapshot)
}

func (s *Store) persistLocked() {
	if s.storage == nil {
		return
	}
	data, err := encodeItems(s.items)
	if err != nil {
		s.log.Errorw("cart_storage_encode_failed", "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
	defer cancel()
	if err := s.storage.Save(ctx, data); err != nil {
		s.log.Warnw("cart_storage_save_failed", "error", err, "items", len(s.items))
	}
}

func (s *Store) notify(snapshot Snapshot) {
	for _, observer := range s.observers {
		observer(snapshot)
	}
}

// Totals 计算商品总件数与总金额
func Totals(items []Item) (int, models.Money) {
	count := 0
	amount := decimal.Zero
	for _, item := range items {
		if count > math.MaxInt-item.Quantity {
			count = math.MaxInt
		} else {
			count += item.Quantity
		}
		amount = amount.Add(item.Subtotal())
	}
	return count, models.NewMoneyFromDecimal(amount)
}

func buildSnapshot(items []Item) Snapshot {
	count, amount := Totals(items)
	return Snapshot{
		Items:       cloneItems(items),
		TotalItems:  count,
		TotalAmount: amount,
		IsEmpty:     len(items) == 0,
	}
}

func indexOf(items []Item, id ItemID) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i, item := range items {
		out[i] = item.clone()
	}
	return out
}
