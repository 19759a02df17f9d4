// internal/service/order/application/service.go
package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/pkg/logger"
	"storefront/internal/service/order/application/saga"
	"storefront/internal/service/order/domain"
	"storefront/internal/service/order/domain/port"
)

// CheckoutService 只关注结账流程编排，报价和促销都通过出站端口调用下游服务。
type CheckoutService struct {
	orderRepo         domain.OrderRepository
	processingTimeout time.Duration
	tracer            trace.Tracer
	metrics           *Metrics

	shippingService  port.ShippingService
	promotionService port.PromotionService
	publisher        port.EventPublisher
}

func NewCheckoutService(
	orderRepo domain.OrderRepository,
	processingTimeout time.Duration,
	tracer trace.Tracer,
	metrics *Metrics,
	shippingService port.ShippingService,
	promotionService port.PromotionService,
	publisher port.EventPublisher,
) *CheckoutService {
	return &CheckoutService{
		orderRepo:         orderRepo,
		processingTimeout: processingTimeout,
		tracer:            tracer,
		metrics:           metrics,
		shippingService:   shippingService,
		promotionService:  promotionService,
		publisher:         publisher,
	}
}

// Checkout 创建订单并同步执行结账 Saga：报价、促销、确认。
// 任一步骤失败时执行已注册的补偿，订单标记为 FAILED 并发布 order.failed。
func (s *CheckoutService) Checkout(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.Checkout")
	defer span.End()
	start := time.Now()
	defer func() { s.metrics.CheckoutDuration.Observe(time.Since(start).Seconds()) }()

	orderEntity, err := domain.NewOrder(req.OrderID, req.Email, req.Currency, req.ShipAddress, req.Packages, req.PromoCode)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create order entity")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("order.id", orderEntity.ID),
		attribute.Int("shipments.count", len(orderEntity.Shipments)),
		attribute.String("promotion.code", orderEntity.PromoCode),
	)

	processingCtx, cancel := context.WithTimeout(ctx, s.processingTimeout)
	defer cancel()

	// 先持久化订单和发货单，促销服务按发货单 ID 记录调整
	if err := s.orderRepo.Save(processingCtx, orderEntity); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save initial order")
		return nil, err
	}
	span.AddEvent("Initial order saved with CREATED state.")

	checkoutCtx := &saga.CheckoutContext{
		Ctx:              processingCtx,
		Order:            orderEntity,
		Tracer:           s.tracer,
		Repo:             s.orderRepo,
		ShippingService:  s.shippingService,
		PromotionService: s.promotionService,
	}

	if err := s.buildChain().Handle(checkoutCtx); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("order_id", orderEntity.ID).Msg("checkout chain failed, compensation triggered")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Checkout failed in chain")
		s.fail(ctx, checkoutCtx, err)
		return nil, err
	}

	s.metrics.Checkouts.WithLabelValues(string(orderEntity.State)).Inc()
	s.publish(ctx, orderEntity, domain.EventOrderPlaced, "")
	logger.Ctx(ctx).Info().
		Str("order_id", orderEntity.ID).
		Str("total", orderEntity.Total.String()).
		Msg("checkout completed, order is pending payment")
	span.AddEvent("Order is pending payment.")
	return newCheckoutResponse(orderEntity), nil
}

// fail 处理超时后也要执行补偿，因此使用不带截止时间的 context
func (s *CheckoutService) fail(ctx context.Context, checkoutCtx *saga.CheckoutContext, cause error) {
	compCtx := context.WithoutCancel(ctx)
	orderEntity := checkoutCtx.Order

	s.metrics.Compensations.Inc()
	checkoutCtx.TriggerCompensation(compCtx)

	orderEntity.MarkAsFailed()
	if err := s.orderRepo.Save(compCtx, orderEntity); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("order_id", orderEntity.ID).Msg("CRITICAL: failed to update order status to FAILED after compensation")
		trace.SpanFromContext(ctx).RecordError(err, trace.WithAttributes(attribute.Bool("critical.error", true)))
	}
	s.metrics.Checkouts.WithLabelValues(string(domain.StateFailed)).Inc()
	s.publish(compCtx, orderEntity, domain.EventOrderFailed, cause.Error())
}

// publish 事件发布失败只记录日志，不影响结账结果
func (s *CheckoutService) publish(ctx context.Context, o *domain.Order, eventType, reason string) {
	event := &domain.OrderEvent{
		EventID:    uuid.New().String(),
		Type:       eventType,
		OrderID:    o.ID,
		State:      o.State,
		Currency:   o.Currency,
		ItemTotal:  o.ItemTotal,
		ShipTotal:  o.ShipTotal,
		PromoTotal: o.PromoTotal,
		Total:      o.Total,
		Reason:     reason,
		OccurredAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("order_id", o.ID).Str("event", eventType).Msg("failed to publish order event")
	}
}

// GetOrder 查询订单当前状态和金额
func (s *CheckoutService) GetOrder(ctx context.Context, id string) (*CheckoutResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.GetOrder")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", id))

	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return newCheckoutResponse(o), nil
}

func (s *CheckoutService) buildChain() saga.Handler {
	chain := new(saga.ShippingRateHandler)
	chain.
		SetNext(new(saga.PromotionHandler)).
		SetNext(new(saga.ConfirmHandler))
	return chain
}
