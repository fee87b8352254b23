package repository

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bloom-miniapp/internal/models"

	"gorm.io/gorm"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	GetByTelegramID(telegramID int64) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	TouchLogin(id uint, at time.Time) error
	UpdatePhone(id uint, phone string) error
	List(filter UserListFilter) ([]models.User, int64, error)
	ListByIDs(ids []uint) ([]models.User, error)
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// GetByID 根据 ID 获取用户
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByTelegramID 根据 Telegram 用户ID获取用户
func (r *GormUserRepository) GetByTelegramID(telegramID int64) (*models.User, error) {
	var user models.User
	if err := r.db.Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create 创建用户
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// Update 更新用户
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// TouchLogin 更新最后登录时间
func (r *GormUserRepository) TouchLogin(id uint, at time.Time) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Update("last_login_at", at).Error
}

// UpdatePhone 记录最近一次下单电话
func (r *GormUserRepository) UpdatePhone(id uint, phone string) error {
	if id == 0 || phone == "" {
		return nil
	}
	return r.db.Model(&models.User{}).Where("id = ?", id).Update("phone", phone).Error
}

// List 管理端用户列表，keyword 匹配用户名、姓名、电话或 Telegram ID
func (r *GormUserRepository) List(filter UserListFilter) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{})
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		like := "%" + keyword + "%"
		condition := "username LIKE ? OR first_name LIKE ? OR last_name LIKE ? OR phone LIKE ?"
		args := []interface{}{like, like, like, like}
		if telegramID, err := strconv.ParseInt(keyword, 10, 64); err == nil {
			condition += " OR telegram_id = ?"
			args = append(args, telegramID)
		}
		query = query.Where(condition, args...)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("id DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ListByIDs 批量获取用户
func (r *GormUserRepository) ListByIDs(ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
