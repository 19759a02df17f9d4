package adapter

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront/internal/pkg/constants"
	"storefront/internal/pkg/httpclient"
	"storefront/internal/service/order/domain/port"
)

type promotionRequest struct {
	OrderID string `json:"order_id"`
	Code    string `json:"code"`
}

type promotionResponse struct {
	Applied         bool            `json:"applied"`
	AdjustmentTotal decimal.Decimal `json:"adjustment_total"`
}

// PromotionHTTPAdapter 实现了 port.PromotionService
type PromotionHTTPAdapter struct {
	client *httpclient.Client
}

func NewPromotionHTTPAdapter(client *httpclient.Client) *PromotionHTTPAdapter {
	return &PromotionHTTPAdapter{client: client}
}

func (a *PromotionHTTPAdapter) Apply(ctx context.Context, orderID, code string) (*port.PromotionResult, error) {
	return a.call(ctx, constants.PathPromotionApply, orderID, code)
}

func (a *PromotionHTTPAdapter) Remove(ctx context.Context, orderID, code string) (*port.PromotionResult, error) {
	return a.call(ctx, constants.PathPromotionRemove, orderID, code)
}

func (a *PromotionHTTPAdapter) call(ctx context.Context, path, orderID, code string) (*port.PromotionResult, error) {
	var resp promotionResponse
	err := a.client.PostJSON(ctx, constants.PromotionService, path, promotionRequest{OrderID: orderID, Code: code}, &resp)
	if err != nil {
		return nil, err
	}
	return &port.PromotionResult{Applied: resp.Applied, AdjustmentTotal: resp.AdjustmentTotal}, nil
}
