package application

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/service/promotion/domain"
)

// PromotionRequest 应用或撤销促销码的请求体
type PromotionRequest struct {
	OrderID string `json:"order_id"`
	Code    string `json:"code"`
}

type AdjustmentDTO struct {
	ID         int64           `json:"id,omitempty"`
	ShipmentID int64           `json:"shipment_id"`
	Amount     decimal.Decimal `json:"amount"`
	Label      string          `json:"label"`
	Code       string          `json:"promotion_code,omitempty"`
	Eligible   bool            `json:"eligible"`
	CreatedAt  time.Time       `json:"created_at,omitempty"`
}

// PromotionResponse 促销操作后的订单调整情况
type PromotionResponse struct {
	OrderID     string `json:"order_id"`
	PromotionID int64  `json:"promotion_id"`
	Code        string `json:"code"`
	// Applied 本次是否产生了新的调整，重复应用时为 false
	Applied bool `json:"applied"`
	// Removed 撤销时移除的调整数
	Removed         int             `json:"removed,omitempty"`
	Currency        string          `json:"currency"`
	ShipTotal       decimal.Decimal `json:"ship_total"`
	AdjustmentTotal decimal.Decimal `json:"adjustment_total"`
	DisplayTotal    string          `json:"display_adjustment_total"`
	Adjustments     []AdjustmentDTO `json:"adjustments"`
}

func newPromotionResponse(order *domain.Order, promo *domain.Promotion, code *domain.PromotionCode) *PromotionResponse {
	resp := &PromotionResponse{
		OrderID:         order.ID,
		PromotionID:     promo.ID,
		Currency:        order.Currency,
		ShipTotal:       order.ShipTotal(),
		AdjustmentTotal: order.AdjustmentTotal,
		DisplayTotal:    order.AdjustmentMoney().Display(),
		Adjustments:     make([]AdjustmentDTO, 0),
	}
	if code != nil {
		resp.Code = code.Value
	}
	for _, a := range order.ShipmentAdjustments() {
		dto := AdjustmentDTO{
			ID:         a.ID,
			ShipmentID: a.ShipmentID,
			Amount:     a.Amount,
			Label:      a.Label,
			Eligible:   a.Eligible,
			CreatedAt:  a.CreatedAt,
		}
		if a.PromotionCode != nil {
			dto.Code = a.PromotionCode.Value
		}
		resp.Adjustments = append(resp.Adjustments, dto)
	}
	return resp
}
