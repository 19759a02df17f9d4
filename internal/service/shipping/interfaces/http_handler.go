package interfaces

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"storefront/internal/pkg/constants"
	"storefront/internal/pkg/logger"
	"storefront/internal/service/shipping/application"
	"storefront/internal/service/shipping/domain"
)

// RateEstimator 是 handler 依赖的用例接口，*application.ShippingService 满足该接口
type RateEstimator interface {
	EstimateRates(ctx context.Context, req *application.EstimateRatesRequest) (*application.EstimateRatesResponse, error)
	EstimateShipments(ctx context.Context, req *application.EstimateShipmentsRequest) (*application.EstimateShipmentsResponse, error)
}

// ShippingHandler 封装了 shipping 服务的 HTTP 处理器
type ShippingHandler struct {
	service    RateEstimator
	backOffice bool
}

type HandlerOption func(*ShippingHandler)

// WithBackOfficeRates 关闭后拒绝 display=both 的后台报价请求
func WithBackOfficeRates(enabled bool) HandlerOption {
	return func(h *ShippingHandler) { h.backOffice = enabled }
}

func NewShippingHandler(service RateEstimator, opts ...HandlerOption) *ShippingHandler {
	h := &ShippingHandler{service: service, backOffice: true}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *ShippingHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST "+constants.PathShippingRates, h.handleShippingRates)
	mux.HandleFunc("POST "+constants.PathShipmentRates, h.handleShipmentRates)
}

func (h *ShippingHandler) handleShippingRates(w http.ResponseWriter, r *http.Request) {
	var req application.EstimateRatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !h.allowDisplay(w, req.Display) {
		return
	}

	resp, err := h.service.EstimateRates(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, resp)
}

func (h *ShippingHandler) handleShipmentRates(w http.ResponseWriter, r *http.Request) {
	var req application.EstimateShipmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Packages) == 0 {
		http.Error(w, "packages must not be empty", http.StatusBadRequest)
		return
	}
	if !h.allowDisplay(w, req.Display) {
		return
	}
	for _, p := range req.Packages {
		if !h.allowDisplay(w, p.Display) {
			return
		}
	}

	resp, err := h.service.EstimateShipments(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, resp)
}

func (h *ShippingHandler) allowDisplay(w http.ResponseWriter, display string) bool {
	if h.backOffice || display != string(domain.DisplayBoth) {
		return true
	}
	http.Error(w, "back-office rates are disabled", http.StatusForbidden)
	return false
}

// writeError 根据错误类型返回不同的 HTTP 状态码
func (h *ShippingHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var statusCode int
	switch {
	case errors.Is(err, domain.ErrPackageInvalid), errors.Is(err, domain.ErrInvalidDisplay):
		statusCode = http.StatusBadRequest
	case errors.Is(err, domain.ErrShippingMethodNotFound):
		statusCode = http.StatusNotFound
	default:
		statusCode = http.StatusInternalServerError
		logger.Ctx(r.Context()).Error().Err(err).Msg("shipping rate request failed")
	}
	http.Error(w, err.Error(), statusCode)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
