package saga

import (
	"go.opentelemetry.io/otel/codes"
)

// ConfirmHandler 确认结账：订单进入待支付并持久化最终金额
type ConfirmHandler struct {
	NextHandler
}

func (h *ConfirmHandler) Handle(checkoutCtx *CheckoutContext) error {
	ctx, span := checkoutCtx.Tracer.Start(checkoutCtx.Ctx, "saga.Confirm")
	defer span.End()

	order := checkoutCtx.Order
	if err := order.MarkAsPendingPayment(); err != nil {
		span.RecordError(err)
		return err
	}
	if err := checkoutCtx.Repo.Save(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save confirmed order")
		return err
	}
	span.AddEvent("order confirmed, pending payment")

	return h.executeNext(checkoutCtx)
}
