// internal/pkg/constants/services.go
package constants

// 服务名，同时作为 Nacos 注册名和 tracer 名
const (
	ShippingService  = "shipping-service"
	PromotionService = "promotion-service"
	OrderService     = "order-service"
)

// 默认端口
const (
	ShippingServicePort  = 8090
	PromotionServicePort = 8091
	OrderServicePort     = 8092
)

// 下游接口路径
const (
	PathShippingRates   = "/shipping_rates"
	PathShipmentRates   = "/shipments/rates"
	PathPromotionApply  = "/promotions/apply"
	PathPromotionRemove = "/promotions/remove"
	PathCheckout        = "/checkout"
)
