package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"storefront/internal/pkg/constants"
	"storefront/internal/pkg/logger"
	"storefront/internal/service/promotion/application"
	"storefront/internal/service/promotion/domain"
)

// PromotionUseCase 是 handler 依赖的用例接口，*application.PromotionService 满足该接口
type PromotionUseCase interface {
	ApplyPromotion(ctx context.Context, req *application.PromotionRequest) (*application.PromotionResponse, error)
	RemovePromotion(ctx context.Context, req *application.PromotionRequest) (*application.PromotionResponse, error)
}

// PromotionHandler 封装了 promotion 服务的 HTTP 处理器
type PromotionHandler struct {
	service PromotionUseCase
}

func NewPromotionHandler(service PromotionUseCase) *PromotionHandler {
	return &PromotionHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *PromotionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST "+constants.PathPromotionApply, h.handleApply)
	mux.HandleFunc("POST "+constants.PathPromotionRemove, h.handleRemove)
}

func (h *PromotionHandler) handleApply(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	resp, err := h.service.ApplyPromotion(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, resp)
}

// handleRemove 也是结账流程失败时的补偿接口
func (h *PromotionHandler) handleRemove(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	resp, err := h.service.RemovePromotion(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, resp)
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (*application.PromotionRequest, bool) {
	var req application.PromotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return nil, false
	}
	if strings.TrimSpace(req.OrderID) == "" || strings.TrimSpace(req.Code) == "" {
		http.Error(w, "order_id and code are required", http.StatusBadRequest)
		return nil, false
	}
	return &req, true
}

// writeError 根据错误类型返回不同的 HTTP 状态码
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var statusCode int
	switch {
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrPromotionNotFound),
		errors.Is(err, domain.ErrPromotionCodeNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, domain.ErrPromotionNotEligible),
		errors.Is(err, domain.ErrPromotionExpired):
		statusCode = http.StatusUnprocessableEntity // 请求有效，但促销条件不满足
	case errors.Is(err, domain.ErrDuplicateAdjustment):
		statusCode = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidRule), errors.Is(err, domain.ErrUnknownAction):
		// 促销配置错误，属于服务端问题
		statusCode = http.StatusInternalServerError
		logger.Ctx(r.Context()).Error().Err(err).Msg("promotion is misconfigured")
	default:
		statusCode = http.StatusInternalServerError
		logger.Ctx(r.Context()).Error().Err(err).Msg("promotion request failed")
	}
	http.Error(w, err.Error(), statusCode)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
