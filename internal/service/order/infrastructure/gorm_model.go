package infrastructure

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderModel 对应 orders 表，number 是对外订单号。
// 促销服务读取该表并回写 promo_total，表结构由订单服务迁移。
type OrderModel struct {
	ID          uint            `gorm:"primaryKey"`
	Number      string          `gorm:"size:64;uniqueIndex;not null"`
	Email       string          `gorm:"size:255"`
	Currency    string          `gorm:"size:3;not null"`
	State       string          `gorm:"size:32;index;not null"`
	ItemTotal   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	ShipTotal   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	PromoTotal  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Total       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	PromoCode   string          `gorm:"size:64"`
	ShipCountry string          `gorm:"size:2;not null"`
	ShipState   string          `gorm:"size:32"`
	ShipCity    string          `gorm:"size:128"`
	ShipZipcode string          `gorm:"size:16"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	// 关联关系
	Shipments []ShipmentModel `gorm:"foreignKey:OrderID"`
}

func (OrderModel) TableName() string {
	return "orders"
}

// ShipmentModel 对应 shipments 表，cost 为选中报价的运费
type ShipmentModel struct {
	ID                 uint            `gorm:"primaryKey"`
	OrderID            uint            `gorm:"index;not null"`
	Number             string          `gorm:"size:64;uniqueIndex;not null"`
	ShippingMethodID   int64           `gorm:"index"`
	ShippingMethodName string          `gorm:"size:128"`
	Cost               decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	LineItems          []LineItemModel `gorm:"foreignKey:ShipmentID"`
}

func (ShipmentModel) TableName() string {
	return "shipments"
}

type LineItemModel struct {
	ID         uint            `gorm:"primaryKey"`
	ShipmentID uint            `gorm:"index;not null"`
	VariantID  int64           `gorm:"not null"`
	Quantity   int             `gorm:"not null"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Weight     decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0"`
}

func (LineItemModel) TableName() string {
	return "line_items"
}

// Models 订单服务负责迁移的表
func Models() []any {
	return []any{&OrderModel{}, &ShipmentModel{}, &LineItemModel{}}
}
