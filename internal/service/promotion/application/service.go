package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/pkg/logger"
	"storefront/internal/service/promotion/domain"
	"storefront/internal/service/promotion/domain/port"
)

// PromotionService 定义了促销服务提供的所有业务用例
type PromotionService struct {
	promotions domain.PromotionRepository
	orders     domain.OrderRepository
	rules      domain.RuleEngine
	locker     port.Locker
	tx         port.Transactor
	publisher  port.EventPublisher
	metrics    *Metrics
	tracer     trace.Tracer
	now        func() time.Time
}

func NewPromotionService(
	promotions domain.PromotionRepository,
	orders domain.OrderRepository,
	rules domain.RuleEngine,
	locker port.Locker,
	tx port.Transactor,
	publisher port.EventPublisher,
	metrics *Metrics,
	tracer trace.Tracer,
) *PromotionService {
	return &PromotionService{
		promotions: promotions,
		orders:     orders,
		rules:      rules,
		locker:     locker,
		tx:         tx,
		publisher:  publisher,
		metrics:    metrics,
		tracer:     tracer,
		now:        time.Now,
	}
}

// lockKey 按订单加锁，不同促销对同一订单的修改也互斥，promo_total 才能和调整保持一致
func lockKey(orderID string) string {
	return "order-" + orderID
}

// ApplyPromotion 把促销码应用到订单上。
// 同一订单上的促销操作在分布式锁内串行执行，重复应用不会产生新调整，返回 Applied=false。
// 已经全部应用过的促销不再校验规则，订单后来不满足条件也按重复应用处理。
func (s *PromotionService) ApplyPromotion(ctx context.Context, req *PromotionRequest) (*PromotionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.ApplyPromotion")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", req.OrderID),
		attribute.String("promotion.code", req.Code),
	)

	promo, code, err := s.resolve(ctx, req.Code)
	if err != nil {
		s.metrics.Applications.WithLabelValues(resultFor(err)).Inc()
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("promotion.id", promo.ID))

	release, err := s.acquire(ctx, lockKey(req.OrderID))
	if err != nil {
		s.metrics.Applications.WithLabelValues(resultError).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to acquire promotion lock")
		return nil, err
	}
	defer release()

	var (
		order   *domain.Order
		applied bool
		created int64
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orders.FindByID(ctx, req.OrderID)
		if err != nil {
			return err
		}

		if promo.AppliedTo(order) {
			return nil
		}

		eligible, err := s.rules.Evaluate(promo.Rule, domain.NewFact(order))
		if err != nil {
			return errors.Wrapf(err, "evaluate rule of promotion %d", promo.ID)
		}
		if !eligible {
			return errors.Wrapf(domain.ErrPromotionNotEligible, "order %s, promotion %d", order.ID, promo.ID)
		}

		before := promo.CreditsCount
		applied = promo.Activate(order, code)
		if !applied {
			return nil
		}
		created = promo.CreditsCount - before

		if err := s.orders.SaveAdjustments(ctx, order); err != nil {
			return err
		}
		return s.promotions.AddCredits(ctx, promo.ID, created)
	})
	if err != nil {
		s.metrics.Applications.WithLabelValues(resultFor(err)).Inc()
		span.RecordError(err)
		if !isRejection(err) {
			span.SetStatus(codes.Error, "failed to apply promotion")
			logger.Ctx(ctx).Error().Err(err).Str("order_id", req.OrderID).Int64("promotion_id", promo.ID).Msg("apply promotion failed")
		}
		return nil, err
	}

	resp := newPromotionResponse(order, promo, code)
	resp.Applied = applied
	if !applied {
		s.metrics.Applications.WithLabelValues(resultAlreadyApplied).Inc()
		span.AddEvent("promotion already applied")
		logger.Ctx(ctx).Info().Str("order_id", order.ID).Int64("promotion_id", promo.ID).Msg("promotion already applied, nothing to do")
		return resp, nil
	}

	s.metrics.Applications.WithLabelValues(resultApplied).Inc()
	s.metrics.AdjustmentsCreated.Add(float64(created))
	span.AddEvent("promotion applied", trace.WithAttributes(attribute.Int64("adjustments.created", created)))
	s.publish(ctx, domain.EventPromotionApplied, order, promo, code, int(created))

	logger.Ctx(ctx).Info().
		Str("order_id", order.ID).
		Int64("promotion_id", promo.ID).
		Int64("adjustments", created).
		Str("adjustment_total", order.AdjustmentTotal.String()).
		Msg("promotion applied")
	return resp, nil
}

// RemovePromotion 撤销促销在订单上产生的全部调整，促销的 CreditsCount 保持不变
func (s *PromotionService) RemovePromotion(ctx context.Context, req *PromotionRequest) (*PromotionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.RemovePromotion")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", req.OrderID),
		attribute.String("promotion.code", req.Code),
	)

	promo, code, err := s.promotions.FindByCode(ctx, req.Code)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	release, err := s.acquire(ctx, lockKey(req.OrderID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to acquire promotion lock")
		return nil, err
	}
	defer release()

	var (
		order   *domain.Order
		removed int
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orders.FindByID(ctx, req.OrderID)
		if err != nil {
			return err
		}
		removed = promo.Deactivate(order)
		if removed == 0 {
			return nil
		}
		return s.orders.SaveAdjustments(ctx, order)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to remove promotion")
		return nil, err
	}

	resp := newPromotionResponse(order, promo, code)
	resp.Removed = removed
	if removed > 0 {
		s.metrics.AdjustmentsRemoved.Add(float64(removed))
		s.publish(ctx, domain.EventPromotionRemoved, order, promo, code, removed)
	}
	logger.Ctx(ctx).Info().Str("order_id", order.ID).Int64("promotion_id", promo.ID).Int("removed", removed).Msg("promotion removed")
	return resp, nil
}

// HandleApplyRequested 处理异步的应用请求。
// 业务上被拒绝的请求重试也不会成功，只记录日志，不返回错误。
func (s *PromotionService) HandleApplyRequested(ctx context.Context, msg *domain.ApplyPromotionRequested) error {
	_, err := s.ApplyPromotion(ctx, &PromotionRequest{OrderID: msg.OrderID, Code: msg.Code})
	if err == nil {
		return nil
	}
	if isRejection(err) || errors.Is(err, domain.ErrOrderNotFound) {
		logger.Ctx(ctx).Warn().Err(err).Str("event_id", msg.EventID).Str("order_id", msg.OrderID).Msg("promotion apply request rejected")
		return nil
	}
	return err
}

func (s *PromotionService) resolve(ctx context.Context, raw string) (*domain.Promotion, *domain.PromotionCode, error) {
	promo, code, err := s.promotions.FindByCode(ctx, raw)
	if err != nil {
		return nil, nil, err
	}
	if !promo.Active(s.now()) {
		return nil, nil, errors.Wrapf(domain.ErrPromotionExpired, "promotion %d", promo.ID)
	}
	return promo, code, nil
}

func (s *PromotionService) acquire(ctx context.Context, key string) (func(), error) {
	start := time.Now()
	release, err := s.locker.Acquire(ctx, key)
	s.metrics.LockWait.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, errors.Wrapf(err, "lock %s", key)
	}
	return release, nil
}

// publish 在事务提交后发布事件，失败只记录日志
func (s *PromotionService) publish(ctx context.Context, typ string, order *domain.Order, promo *domain.Promotion, code *domain.PromotionCode, n int) {
	if s.publisher == nil {
		return
	}
	event := &domain.PromotionEvent{
		EventID:         uuid.NewString(),
		Type:            typ,
		OrderID:         order.ID,
		PromotionID:     promo.ID,
		Adjustments:     n,
		AdjustmentTotal: order.AdjustmentTotal,
		Currency:        order.Currency,
		OccurredAt:      s.now().UTC(),
	}
	if code != nil {
		event.PromotionCode = code.Value
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("event_type", typ).Str("order_id", order.ID).Msg("failed to publish promotion event")
	}
}

// isRejection 判断错误是否是促销规则上的拒绝，而不是系统故障
func isRejection(err error) bool {
	return errors.Is(err, domain.ErrPromotionNotEligible) ||
		errors.Is(err, domain.ErrPromotionExpired) ||
		errors.Is(err, domain.ErrPromotionCodeNotFound) ||
		errors.Is(err, domain.ErrPromotionNotFound)
}

func resultFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrPromotionNotEligible):
		return resultNotEligible
	case errors.Is(err, domain.ErrPromotionExpired):
		return resultInactive
	case errors.Is(err, domain.ErrPromotionCodeNotFound), errors.Is(err, domain.ErrPromotionNotFound), errors.Is(err, domain.ErrOrderNotFound):
		return resultNotFound
	default:
		return resultError
	}
}
