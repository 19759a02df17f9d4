package saga

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"storefront/internal/pkg/logger"
)

// PromotionHandler 订单带促销码时调用促销服务，失败的后续步骤会撤销促销
type PromotionHandler struct {
	NextHandler
}

func (h *PromotionHandler) Handle(checkoutCtx *CheckoutContext) error {
	order := checkoutCtx.Order
	if order.PromoCode == "" {
		return h.executeNext(checkoutCtx)
	}

	ctx, span := checkoutCtx.Tracer.Start(checkoutCtx.Ctx, "saga.ApplyPromotion")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", order.ID),
		attribute.String("promotion.code", order.PromoCode),
	)

	result, err := checkoutCtx.PromotionService.Apply(ctx, order.ID, order.PromoCode)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "promotion service call failed")
		return errors.WithMessage(err, "apply promotion")
	}

	checkoutCtx.AddCompensation(func(compCtx context.Context) {
		compCtx, compSpan := checkoutCtx.Tracer.Start(compCtx, "saga.compensation.RemovePromotion")
		defer compSpan.End()
		compSpan.SetAttributes(attribute.String("order.id", order.ID))

		// 补偿失败需要人工介入
		if _, err := checkoutCtx.PromotionService.Remove(compCtx, order.ID, order.PromoCode); err != nil {
			compSpan.RecordError(err)
			logger.Ctx(compCtx).Error().Err(err).Str("order_id", order.ID).Msg("CRITICAL: failed to remove promotion during compensation")
		}
	})

	order.ApplyPromoTotal(result.AdjustmentTotal)
	span.SetAttributes(
		attribute.Bool("promotion.applied", result.Applied),
		attribute.String("order.promo_total", order.PromoTotal.String()),
	)
	span.AddEvent("promotion applied")

	return h.executeNext(checkoutCtx)
}
