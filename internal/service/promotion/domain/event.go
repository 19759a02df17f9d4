// promotion-service/internal/domain/event.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventPromotionApplied = "promotion.applied"
	EventPromotionRemoved = "promotion.removed"
)

// PromotionEvent 促销在订单上生效或撤销后发布
type PromotionEvent struct {
	EventID         string          `json:"event_id"`
	Type            string          `json:"type"`
	OrderID         string          `json:"order_id"`
	PromotionID     int64           `json:"promotion_id"`
	PromotionCode   string          `json:"promotion_code,omitempty"`
	Adjustments     int             `json:"adjustments"` // 本次新增或撤销的调整数
	AdjustmentTotal decimal.Decimal `json:"adjustment_total"`
	Currency        string          `json:"currency"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

// ApplyPromotionRequested 异步申请应用促销码的消息
type ApplyPromotionRequested struct {
	EventID string `json:"event_id"`
	OrderID string `json:"order_id"`
	Code    string `json:"code"`
}
