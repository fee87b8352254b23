package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bloom-miniapp/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartSlotRepository 购物车槽位数据访问接口
type CartSlotRepository interface {
	Get(ctx context.Context, key string) (*models.CartSlot, error)
	Put(ctx context.Context, key string, payload []byte) error
	Delete(ctx context.Context, key string) error
}

// GormCartSlotRepository GORM 实现
type GormCartSlotRepository struct {
	db *gorm.DB
}

// NewCartSlotRepository 创建购物车槽位仓库
func NewCartSlotRepository(db *gorm.DB) *GormCartSlotRepository {
	return &GormCartSlotRepository{db: db}
}

// Get 读取槽位，不存在时返回 nil
func (r *GormCartSlotRepository) Get(ctx context.Context, key string) (*models.CartSlot, error) {
	var slot models.CartSlot
	if err := r.db.WithContext(ctx).Where("slot_key = ?", key).First(&slot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &slot, nil
}

// Put 写入或覆盖槽位
func (r *GormCartSlotRepository) Put(ctx context.Context, key string, payload []byte) error {
	slot := models.CartSlot{
		Key:       key,
		Payload:   string(payload),
		UpdatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&slot).Error
}

// Delete 删除槽位
func (r *GormCartSlotRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("slot_key = ?", key).Delete(&models.CartSlot{}).Error
}

// CartStorage 基于数据库行的购物车槽位，实现 cart.Storage
type CartStorage struct {
	repo CartSlotRepository
	key  string
}

// NewCartStorage 创建数据库槽位
func NewCartStorage(repo CartSlotRepository, key string) (*CartStorage, error) {
	key = strings.TrimSpace(key)
	if repo == nil || key == "" {
		return nil, errors.New("cart slot repository or key is empty")
	}
	return &CartStorage{repo: repo, key: key}, nil
}

// Load 读取槽位，行不存在时返回 nil, nil
func (s *CartStorage) Load(ctx context.Context) ([]byte, error) {
	slot, err := s.repo.Get(ctx, s.key)
	if err != nil || slot == nil {
		return nil, err
	}
	return []byte(slot.Payload), nil
}

// Save 覆盖槽位
func (s *CartStorage) Save(ctx context.Context, data []byte) error {
	return s.repo.Put(ctx, s.key, data)
}

// Clear 删除槽位
func (s *CartStorage) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, s.key)
}
