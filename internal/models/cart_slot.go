package models

import "time"

// CartSlot 购物车持久化槽位（database 驱动）
// 每个槽位保存一个购物车的完整 JSON 数组。
type CartSlot struct {
	Key       string    `gorm:"column:slot_key;primaryKey;type:varchar(191)" json:"key"` // 槽位 key
	Payload   string    `gorm:"type:text;not null" json:"payload"`                       // 购物车 JSON
	UpdatedAt time.Time `json:"updated_at"`                                              // 更新时间
}

// TableName 指定表名
func (CartSlot) TableName() string {
	return "cart_slots"
}
