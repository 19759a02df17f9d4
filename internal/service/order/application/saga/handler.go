package saga

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"storefront/internal/pkg/logger"
	"storefront/internal/service/order/domain"
	"storefront/internal/service/order/domain/port"
)

// CheckoutContext 在 Saga 流程中传递上下文数据，所有外部依赖都是出站端口。
type CheckoutContext struct {
	Ctx    context.Context
	Order  *domain.Order
	Tracer trace.Tracer

	Repo             domain.OrderRepository
	ShippingService  port.ShippingService
	PromotionService port.PromotionService

	compensations []func(ctx context.Context)
	compLock      sync.Mutex
}

// AddCompensation 后注册的补偿先执行
func (c *CheckoutContext) AddCompensation(comp func(ctx context.Context)) {
	c.compLock.Lock()
	defer c.compLock.Unlock()
	c.compensations = append([]func(context.Context){comp}, c.compensations...)
}

func (c *CheckoutContext) TriggerCompensation(ctx context.Context) {
	c.compLock.Lock()
	defer c.compLock.Unlock()
	logger.Ctx(ctx).Info().Str("order_id", c.Order.ID).Int("compensations", len(c.compensations)).Msg("executing compensation functions")
	for _, comp := range c.compensations {
		comp(ctx)
	}
	c.compensations = nil
}

type Handler interface {
	SetNext(handler Handler) Handler
	Handle(checkoutCtx *CheckoutContext) error
}

type NextHandler struct {
	next Handler
}

func (h *NextHandler) SetNext(handler Handler) Handler {
	h.next = handler
	return handler
}

func (h *NextHandler) executeNext(checkoutCtx *CheckoutContext) error {
	if h.next != nil {
		return h.next.Handle(checkoutCtx)
	}
	return nil
}
