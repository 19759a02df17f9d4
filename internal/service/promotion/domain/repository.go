// promotion-service/internal/domain/repository.go
package domain

import (
	"context"
	"strings"
)

// PromotionRepository 促销仓储，返回的促销已装配好动作
type PromotionRepository interface {
	// FindByCode 促销码不区分大小写
	FindByCode(ctx context.Context, code string) (*Promotion, *PromotionCode, error)
	// AddCredits 原子地累加 CreditsCount
	AddCredits(ctx context.Context, promotionID int64, delta int64) error
}

// OrderRepository 订单仓储
type OrderRepository interface {
	FindByID(ctx context.Context, id string) (*Order, error)
	// SaveAdjustments 插入新调整、删除已移除的调整，并更新订单的 AdjustmentTotal
	SaveAdjustments(ctx context.Context, order *Order) error
}

// Fact 是规则引擎的输入，表达式里通过 order.<key> 访问
type Fact map[string]any

// NewFact 从订单提取规则可用的事实。金额使用 double，数量使用 int。
func NewFact(order *Order) Fact {
	itemTotal, _ := order.ItemTotal.Float64()
	shipTotal, _ := order.ShipTotal().Float64()
	return Fact{
		"id":             order.ID,
		"currency":       order.Currency,
		"item_total":     itemTotal,
		"ship_total":     shipTotal,
		"shipment_count": int64(len(order.Shipments)),
		"country":        strings.ToUpper(order.Country),
		"state":          strings.ToUpper(order.State),
	}
}

// RuleEngine 评估促销的适用条件
type RuleEngine interface {
	Evaluate(rule string, fact Fact) (bool, error)
}

// NormalizeCode 促销码统一小写存储和查找
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
