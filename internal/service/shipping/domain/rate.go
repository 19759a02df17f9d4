package domain

import (
	"github.com/shopspring/decimal"

	"storefront/internal/pkg/money"
)

// ShippingRate 是某个配送方式针对一个包裹的报价，只在一次报价中存在
type ShippingRate struct {
	ShippingMethod *ShippingMethod
	Cost           decimal.Decimal
	Currency       string
	Selected       bool
}

func (r ShippingRate) Money() money.Money {
	return money.New(r.Cost, r.Currency)
}
