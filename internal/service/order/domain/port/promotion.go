package port

import (
	"context"

	"github.com/shopspring/decimal"
)

// PromotionResult 促销服务处理后的订单调整情况
type PromotionResult struct {
	Applied         bool
	AdjustmentTotal decimal.Decimal
}

// PromotionService 是促销服务的出站端口。
type PromotionService interface {
	Apply(ctx context.Context, orderID, code string) (*PromotionResult, error)
	// Remove 是 Apply 的补偿操作
	Remove(ctx context.Context, orderID, code string) (*PromotionResult, error)
}
