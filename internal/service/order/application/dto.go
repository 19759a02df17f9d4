// internal/service/order/application/dto.go
package application

import (
	"github.com/shopspring/decimal"

	"storefront/internal/service/order/domain"
)

// CheckoutRequest 是结账用例的输入，Packages 中每个元素对应一个发货单
type CheckoutRequest struct {
	OrderID     string              `json:"order_id"`
	Email       string              `json:"email"`
	Currency    string              `json:"currency"`
	ShipAddress domain.Address      `json:"ship_address"`
	Packages    [][]domain.LineItem `json:"packages"`
	PromoCode   string              `json:"promo_code,omitempty"`
}

type ShipmentDTO struct {
	Number             string          `json:"number"`
	ShippingMethodID   int64           `json:"shipping_method_id"`
	ShippingMethodName string          `json:"shipping_method_name"`
	Cost               decimal.Decimal `json:"cost"`
}

// CheckoutResponse 是结账用例的输出
type CheckoutResponse struct {
	OrderID    string          `json:"order_id"`
	State      domain.State    `json:"state"`
	Currency   string          `json:"currency"`
	ItemTotal  decimal.Decimal `json:"item_total"`
	ShipTotal  decimal.Decimal `json:"ship_total"`
	PromoTotal decimal.Decimal `json:"promo_total"`
	Total      decimal.Decimal `json:"total"`
	Shipments  []ShipmentDTO   `json:"shipments"`
}

func newCheckoutResponse(o *domain.Order) *CheckoutResponse {
	resp := &CheckoutResponse{
		OrderID:    o.ID,
		State:      o.State,
		Currency:   o.Currency,
		ItemTotal:  o.ItemTotal,
		ShipTotal:  o.ShipTotal,
		PromoTotal: o.PromoTotal,
		Total:      o.Total,
		Shipments:  make([]ShipmentDTO, 0, len(o.Shipments)),
	}
	for _, s := range o.Shipments {
		resp.Shipments = append(resp.Shipments, ShipmentDTO{
			Number:             s.Number,
			ShippingMethodID:   s.ShippingMethodID,
			ShippingMethodName: s.ShippingMethodName,
			Cost:               s.Cost,
		})
	}
	return resp
}
