// internal/service/shipping/application/service.go
package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"storefront/internal/pkg/logger"
	"storefront/internal/service/shipping/domain"
	"storefront/internal/service/shipping/domain/port"
)

const (
	cacheKeyPrefix    = "shipping:rates:"
	maxParallelQuotes = 4
)

// ShippingService 报价用例：加载配送方式、构造包裹、调用 Estimator，并缓存结果
type ShippingService struct {
	methods  domain.ShippingMethodRepository
	cache    port.RateCache // 为 nil 时不缓存
	cacheTTL time.Duration
	metrics  *Metrics
	tracer   trace.Tracer
}

func NewShippingService(methods domain.ShippingMethodRepository, cache port.RateCache, cacheTTL time.Duration, metrics *Metrics, tracer trace.Tracer) *ShippingService {
	return &ShippingService{
		methods:  methods,
		cache:    cache,
		cacheTTL: cacheTTL,
		metrics:  metrics,
		tracer:   tracer,
	}
}

// EstimateRates 为单个包裹报价
func (s *ShippingService) EstimateRates(ctx context.Context, req *EstimateRatesRequest) (*EstimateRatesResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.EstimateRates")
	defer span.End()
	start := time.Now()

	span.SetAttributes(
		attribute.String("order.id", req.OrderID),
		attribute.String("package.id", req.PackageID),
		attribute.String("package.currency", req.Currency),
		attribute.String("destination.country", req.Destination.Country),
	)

	display, err := domain.ParseDisplayFilter(req.Display)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	pkg := domain.NewPackage(req.PackageID, req.OrderID, req.Currency, req.Destination, req.Contents, nil)
	if err := pkg.Validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	key := cacheKey(req, pkg.Currency, display)
	if cached, ok := s.lookup(ctx, key); ok {
		span.AddEvent("rate cache hit")
		return &EstimateRatesResponse{OrderID: req.OrderID, PackageID: req.PackageID, Rates: cached}, nil
	}

	opts := []domain.EstimatorOption{domain.WithDisplayFilter(display)}
	if len(req.MethodIDs) > 0 {
		methods, err := s.methods.FindByIDs(ctx, req.MethodIDs)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to load shipping methods")
			return nil, err
		}
		opts = append(opts, domain.WithShippingMethods(methods...))
	} else {
		methods, err := s.methods.FindForAddress(ctx, req.Destination)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to load shipping methods")
			return nil, err
		}
		pkg = domain.NewPackage(req.PackageID, req.OrderID, req.Currency, req.Destination, req.Contents, methods)
	}

	rates, err := domain.NewEstimator(opts...).ShippingRates(pkg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "calculator failed")
		logger.Ctx(ctx).Error().Err(err).Str("order_id", req.OrderID).Msg("shipping rate estimation failed")
		return nil, err
	}

	dtos := toRateDTOs(rates)
	s.metrics.EstimateDuration.Observe(time.Since(start).Seconds())
	s.metrics.RatesEstimated.WithLabelValues(string(display)).Add(float64(len(dtos)))
	if len(dtos) == 0 {
		s.metrics.EmptyEstimates.Inc()
		span.AddEvent("no shipping rate available")
	}
	span.SetAttributes(attribute.Int("rates.count", len(dtos)))

	s.store(ctx, key, dtos)

	logger.Ctx(ctx).Info().
		Str("order_id", req.OrderID).
		Str("package_id", req.PackageID).
		Int("rates", len(dtos)).
		Msg("shipping rates estimated")

	return &EstimateRatesResponse{OrderID: req.OrderID, PackageID: req.PackageID, Rates: dtos}, nil
}

// EstimateShipments 并行为订单的多个包裹报价，任一包裹失败则整体失败
func (s *ShippingService) EstimateShipments(ctx context.Context, req *EstimateShipmentsRequest) (*EstimateShipmentsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "service.EstimateShipments")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", req.OrderID),
		attribute.Int("packages.count", len(req.Packages)),
	)

	results := make([]EstimateRatesResponse, len(req.Packages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelQuotes)
	for i := range req.Packages {
		p := req.Packages[i]
		if p.OrderID == "" {
			p.OrderID = req.OrderID
		}
		if p.Currency == "" {
			p.Currency = req.Currency
		}
		if p.Display == "" {
			p.Display = req.Display
		}
		g.Go(func() error {
			resp, err := s.EstimateRates(gctx, &p)
			if err != nil {
				return errors.WithMessagef(err, "package %s", p.PackageID)
			}
			results[i] = *resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "shipment estimation failed")
		return nil, err
	}
	return &EstimateShipmentsResponse{OrderID: req.OrderID, Packages: results}, nil
}

func (s *ShippingService) lookup(ctx context.Context, key string) ([]ShippingRateDTO, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, port.ErrCacheMiss) {
			s.metrics.CacheRequests.WithLabelValues("miss").Inc()
		} else {
			s.metrics.CacheRequests.WithLabelValues("error").Inc()
			logger.Ctx(ctx).Warn().Err(err).Msg("rate cache read failed, estimating directly")
		}
		return nil, false
	}
	var rates []ShippingRateDTO
	if err := json.Unmarshal(raw, &rates); err != nil {
		s.metrics.CacheRequests.WithLabelValues("error").Inc()
		logger.Ctx(ctx).Warn().Err(err).Msg("corrupt rate cache entry ignored")
		return nil, false
	}
	s.metrics.CacheRequests.WithLabelValues("hit").Inc()
	return rates, true
}

func (s *ShippingService) store(ctx context.Context, key string, rates []ShippingRateDTO) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(rates)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("rate cache write failed")
	}
}

// cacheKey 对影响报价结果的请求字段做摘要，订单号和包裹号不参与。
// 配送方式或计算器参数变更后，旧缓存要等 TTL 过期。
func cacheKey(req *EstimateRatesRequest, currency string, display domain.DisplayOn) string {
	digest := struct {
		Currency    string               `json:"c"`
		Display     domain.DisplayOn     `json:"d"`
		Destination domain.Address       `json:"a"`
		Contents    []domain.ContentItem `json:"i"`
		MethodIDs   []int64              `json:"m"`
	}{
		Currency: currency,
		Display:  display,
		Destination: domain.Address{
			Country: strings.ToUpper(req.Destination.Country),
			State:   strings.ToUpper(req.Destination.State),
			City:    req.Destination.City,
			Zipcode: req.Destination.Zipcode,
		},
		Contents:  req.Contents,
		MethodIDs: req.MethodIDs, // 顺序影响同价报价的先后
	}
	raw, _ := json.Marshal(digest)
	sum := sha256.Sum256(raw)
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
