package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                      // 主键
	OrderNo      string         `gorm:"uniqueIndex;not null" json:"order_no"`                      // 订单编号
	UserID       uint           `gorm:"index;not null" json:"user_id"`                             // 用户ID
	Status       string         `gorm:"index;not null" json:"status"`                              // 订单状态
	Currency     string         `gorm:"not null" json:"currency"`                                  // 币种
	TotalAmount  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"` // 实付金额
	TotalItems   int            `gorm:"not null;default:0" json:"total_items"`                     // 商品总件数
	CustomerName string         `gorm:"type:varchar(128)" json:"customer_name"`                    // 收件人
	Phone        string         `gorm:"type:varchar(32)" json:"phone"`                             // 联系电话
	Address      string         `gorm:"type:varchar(500)" json:"address"`                          // 配送地址
	DeliveryDate string         `gorm:"type:varchar(32)" json:"delivery_date"`                     // 期望配送日期
	Comment      string         `gorm:"type:varchar(1000)" json:"comment"`                         // 备注
	ExtraJSON    JSON           `gorm:"type:json" json:"extra,omitempty"`                          // 其余附加信息
	ClientIP     string         `gorm:"type:varchar(64)" json:"client_ip,omitempty"`               // 下单客户端IP
	ExpiresAt    *time.Time     `gorm:"index" json:"expires_at"`                                   // 支付过期时间
	NotifiedAt   *time.Time     `json:"notified_at"`                                               // 新订单通知时间
	CanceledAt   *time.Time     `gorm:"index" json:"canceled_at"`                                  // 取消时间
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                                   // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
