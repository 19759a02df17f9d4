package port

import (
	"context"

	"storefront/internal/service/order/domain"
)

// ShipmentQuote 一个发货单的全部候选运费
type ShipmentQuote struct {
	ShipmentNumber string
	Rates          []domain.ShippingRate
}

// ShippingService 是运费报价服务的出站端口。
type ShippingService interface {
	// QuoteShipments 为订单的每个发货单报价，返回顺序与 order.Shipments 一致
	QuoteShipments(ctx context.Context, order *domain.Order) ([]ShipmentQuote, error)
}
