package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/pkg/constants"
	"storefront/internal/pkg/httpclient"
	"storefront/internal/pkg/logger"
	"storefront/internal/service/order/application"
	"storefront/internal/service/order/domain"
)

// CheckoutUseCase 是 handler 依赖的用例接口，*application.CheckoutService 满足该接口
type CheckoutUseCase interface {
	Checkout(ctx context.Context, req *application.CheckoutRequest) (*application.CheckoutResponse, error)
	GetOrder(ctx context.Context, id string) (*application.CheckoutResponse, error)
}

// OrderHandler 封装了 order 服务的 HTTP 处理器
type OrderHandler struct {
	service CheckoutUseCase
}

func NewOrderHandler(service CheckoutUseCase) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST "+constants.PathCheckout, h.handleCheckout)
	mux.HandleFunc("GET /orders/{id}", h.handleGetOrder)
}

func (h *OrderHandler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req application.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.OrderID) == "" {
		http.Error(w, "order_id is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	// 促销码通过 Baggage 随调用链传给下游
	if code := strings.TrimSpace(req.PromoCode); code != "" {
		if member, err := baggage.NewMember("promotion_code", code); err == nil {
			if b, err := baggage.FromContext(ctx).SetMember(member); err == nil {
				ctx = baggage.ContextWithBaggage(ctx, b)
				trace.SpanFromContext(ctx).AddEvent("Baggage with promotion_code injected.")
			}
		}
	}

	resp, err := h.service.Checkout(ctx, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// writeError 根据错误类型返回不同的 HTTP 状态码，下游 4xx 视为结账被拒绝，其余视为网关错误
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var statusErr *httpclient.StatusError
	var statusCode int
	switch {
	case errors.Is(err, domain.ErrInvalidOrder):
		statusCode = http.StatusBadRequest
	case errors.Is(err, domain.ErrOrderNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, domain.ErrOrderExists):
		statusCode = http.StatusConflict
	case errors.Is(err, domain.ErrNoShippingRate), errors.Is(err, domain.ErrShipmentNotFound):
		statusCode = http.StatusUnprocessableEntity
	case errors.As(err, &statusErr) && statusErr.StatusCode < http.StatusInternalServerError:
		statusCode = http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		statusCode = http.StatusGatewayTimeout
		logger.Ctx(r.Context()).Error().Err(err).Msg("checkout timed out")
	case statusErr != nil:
		statusCode = http.StatusBadGateway
		logger.Ctx(r.Context()).Error().Err(err).Msg("downstream service failed during checkout")
	default:
		statusCode = http.StatusInternalServerError
		logger.Ctx(r.Context()).Error().Err(err).Msg("checkout request failed")
	}
	http.Error(w, err.Error(), statusCode)
}
