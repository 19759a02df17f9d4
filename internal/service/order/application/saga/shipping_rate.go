package saga

import (
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"storefront/internal/pkg/logger"
)

// ShippingRateHandler 为每个发货单报价，把运费固定为被选中的报价并持久化
type ShippingRateHandler struct {
	NextHandler
}

func (h *ShippingRateHandler) Handle(checkoutCtx *CheckoutContext) error {
	ctx, span := checkoutCtx.Tracer.Start(checkoutCtx.Ctx, "saga.ShippingRates")
	defer span.End()

	order := checkoutCtx.Order
	span.SetAttributes(
		attribute.String("order.id", order.ID),
		attribute.Int("shipments.count", len(order.Shipments)),
	)

	quotes, err := checkoutCtx.ShippingService.QuoteShipments(ctx, order)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "shipping service call failed")
		return errors.WithMessage(err, "quote shipments")
	}
	for _, q := range quotes {
		if err := order.SelectRates(q.ShipmentNumber, q.Rates); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "no selectable shipping rate")
			return err
		}
	}
	if err := order.MarkAsDelivery(); err != nil {
		span.RecordError(err)
		return err
	}
	if err := checkoutCtx.Repo.Save(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save shipment costs")
		return err
	}

	span.SetAttributes(attribute.String("order.ship_total", order.ShipTotal.String()))
	span.AddEvent("shipping rates selected for all shipments")
	logger.Ctx(ctx).Info().Str("order_id", order.ID).Str("ship_total", order.ShipTotal.String()).Msg("shipping rates selected")

	return h.executeNext(checkoutCtx)
}
