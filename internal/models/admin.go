package models

import (
	"time"

	"gorm.io/gorm"
)

// Admin 后台管理员表
type Admin struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                         // 主键
	Username           string         `gorm:"uniqueIndex;not null" json:"username"`         // 登录账号
	PasswordHash       string         `gorm:"not null" json:"-"`                            // bcrypt 哈希
	IsSuper            bool           `gorm:"not null;default:false;index" json:"is_super"` // 超级管理员跳过 RBAC
	TokenVersion       uint64         `gorm:"not null;default:0" json:"-"`                  // 改密或禁用时递增，旧 Token 失效
	TokenInvalidBefore *time.Time     `json:"-"`                                            // 早于该时间签发的 Token 失效
	LastLoginAt        *time.Time     `json:"last_login_at"`
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Admin) TableName() string {
	return "admins"
}
