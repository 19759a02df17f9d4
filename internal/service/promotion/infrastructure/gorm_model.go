package infrastructure

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PromotionModel 对应 promotions 表
type PromotionModel struct {
	gorm.Model
	Name         string `gorm:"size:128;not null"`
	Description  string `gorm:"type:text"`
	CreditsCount int64  `gorm:"not null;default:0"`
	Rule         string `gorm:"type:text"` // CEL 表达式
	StartsAt     sql.NullTime
	ExpiresAt    sql.NullTime
	// 关联关系
	Codes   []PromotionCodeModel   `gorm:"foreignKey:PromotionID"`
	Actions []PromotionActionModel `gorm:"foreignKey:PromotionID"`
}

func (PromotionModel) TableName() string {
	return "promotions"
}

// PromotionCodeModel 对应 promotion_codes 表，value 统一小写
type PromotionCodeModel struct {
	gorm.Model
	PromotionID uint   `gorm:"index;not null"`
	Value       string `gorm:"size:64;uniqueIndex;not null"`
}

func (PromotionCodeModel) TableName() string {
	return "promotion_codes"
}

// PromotionActionModel 对应 promotion_actions 表
type PromotionActionModel struct {
	gorm.Model
	PromotionID uint   `gorm:"index;not null"`
	Type        string `gorm:"size:32;not null"`
}

func (PromotionActionModel) TableName() string {
	return "promotion_actions"
}

// AdjustmentModel 对应 adjustments 表。
// 撤销时物理删除，(shipment_id, source_action_id) 唯一，保证一个动作对一个 shipment 只调整一次。
type AdjustmentModel struct {
	ID              uint            `gorm:"primaryKey"`
	OrderID         uint            `gorm:"index;not null"`
	ShipmentID      uint            `gorm:"not null;uniqueIndex:idx_adjustment_shipment_action"`
	SourceActionID  uint            `gorm:"not null;uniqueIndex:idx_adjustment_shipment_action"`
	PromotionCodeID *uint           `gorm:"index"`
	Amount          decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Label           string          `gorm:"size:255"`
	Eligible        bool            `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	// 关联关系
	PromotionCode *PromotionCodeModel `gorm:"foreignKey:PromotionCodeID"`
}

func (AdjustmentModel) TableName() string {
	return "adjustments"
}

// OrderRecord 是订单服务维护的 orders 表在促销侧的只读视图，促销只回写 promo_total
type OrderRecord struct {
	ID          uint
	Number      string
	Currency    string
	ItemTotal   decimal.Decimal
	PromoTotal  decimal.Decimal
	ShipCountry string
	ShipState   string
	Shipments   []ShipmentRecord `gorm:"foreignKey:OrderID"`
}

func (OrderRecord) TableName() string {
	return "orders"
}

// ShipmentRecord shipments 表的只读视图
type ShipmentRecord struct {
	ID          uint
	OrderID     uint
	Number      string
	Cost        decimal.Decimal
	Adjustments []AdjustmentModel `gorm:"foreignKey:ShipmentID"`
}

func (ShipmentRecord) TableName() string {
	return "shipments"
}

// Models 促销服务负责迁移的表，orders 和 shipments 由订单服务迁移
func Models() []any {
	return []any{&PromotionModel{}, &PromotionCodeModel{}, &PromotionActionModel{}, &AdjustmentModel{}}
}
