// internal/service/order/domain/event.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced = "order.placed"
	EventOrderFailed = "order.failed"
)

// OrderEvent 结账结束时发布，成功为 order.placed，失败为 order.failed
type OrderEvent struct {
	EventID    string          `json:"event_id"`
	Type       string          `json:"type"`
	OrderID    string          `json:"order_id"`
	State      State           `json:"state"`
	Currency   string          `json:"currency"`
	ItemTotal  decimal.Decimal `json:"item_total"`
	ShipTotal  decimal.Decimal `json:"ship_total"`
	PromoTotal decimal.Decimal `json:"promo_total"`
	Total      decimal.Decimal `json:"total"`
	Reason     string          `json:"reason,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}
