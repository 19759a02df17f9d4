package application

import (
	"github.com/shopspring/decimal"

	"storefront/internal/service/shipping/domain"
)

// EstimateRatesRequest 单个包裹的报价请求
type EstimateRatesRequest struct {
	OrderID     string               `json:"order_id"`
	PackageID   string               `json:"package_id"`
	Currency    string               `json:"currency"`
	Destination domain.Address       `json:"destination"`
	Contents    []domain.ContentItem `json:"contents"`
	// MethodIDs 非空时只对这些配送方式报价，不再按区域筛选
	MethodIDs []int64 `json:"method_ids,omitempty"`
	// Display 为 both 时是后台报价，会列出后台专用的配送方式
	Display string `json:"display,omitempty"`
}

type ShippingRateDTO struct {
	ShippingMethodID int64           `json:"shipping_method_id"`
	Name             string          `json:"name"`
	Code             string          `json:"code,omitempty"`
	DisplayOn        string          `json:"display_on"`
	Cost             decimal.Decimal `json:"cost"`
	Currency         string          `json:"currency"`
	DisplayCost      string          `json:"display_cost"`
	Selected         bool            `json:"selected"`
}

type EstimateRatesResponse struct {
	OrderID   string            `json:"order_id"`
	PackageID string            `json:"package_id"`
	Rates     []ShippingRateDTO `json:"rates"`
}

// SelectedRate 返回被选中的报价，没有时返回 nil
func (r *EstimateRatesResponse) SelectedRate() *ShippingRateDTO {
	for i := range r.Rates {
		if r.Rates[i].Selected {
			return &r.Rates[i]
		}
	}
	return nil
}

// EstimateShipmentsRequest 一个订单的多个包裹，包裹未填写的订单号和币种沿用订单级的值
type EstimateShipmentsRequest struct {
	OrderID  string                 `json:"order_id"`
	Currency string                 `json:"currency"`
	Display  string                 `json:"display,omitempty"`
	Packages []EstimateRatesRequest `json:"packages"`
}

type EstimateShipmentsResponse struct {
	OrderID  string                  `json:"order_id"`
	Packages []EstimateRatesResponse `json:"packages"`
}

func toRateDTOs(rates []domain.ShippingRate) []ShippingRateDTO {
	out := make([]ShippingRateDTO, 0, len(rates))
	for _, r := range rates {
		out = append(out, ShippingRateDTO{
			ShippingMethodID: r.ShippingMethod.ID,
			Name:             r.ShippingMethod.Name,
			Code:             r.ShippingMethod.Code,
			DisplayOn:        string(r.ShippingMethod.DisplayOn),
			Cost:             r.Cost,
			Currency:         r.Currency,
			DisplayCost:      r.Money().Display(),
			Selected:         r.Selected,
		})
	}
	return out
}
