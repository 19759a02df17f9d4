// cmd/shipping-service/main.go
package main

import (
	"context"

	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"storefront/internal/pkg/bootstrap"
	"storefront/internal/pkg/constants"
	"storefront/internal/pkg/database"
	"storefront/internal/pkg/logger"
	"storefront/internal/pkg/redis"
	"storefront/internal/service/shipping/application"
	"storefront/internal/service/shipping/domain/port"
	"storefront/internal/service/shipping/infrastructure"
	"storefront/internal/service/shipping/interfaces"
)

// main 是 shipping-service 的组装根：创建依赖，注册路由，然后交给 bootstrap 启动
func main() {
	cfg := bootstrap.Init()
	logger.Init(constants.ShippingService, cfg.App.LogLevel)

	db, err := database.Open(cfg.Infra.MySQL, infrastructure.Models()...)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to connect to mysql")
	}
	methodRepo := infrastructure.NewGormShippingMethodRepository(db)

	var shutdownHooks []func(ctx context.Context) error

	// 报价缓存是可选的，Redis 不可用时直接计算
	var rateCache port.RateCache
	if cfg.App.FeatureFlags.EnableRateCache {
		redisClient, err := redis.NewClient(cfg.Infra.Redis.Addrs)
		if err != nil {
			zlog.Warn().Err(err).Msg("redis unavailable, shipping rate cache disabled")
		} else {
			rateCache = infrastructure.NewRedisRateCache(redisClient)
			shutdownHooks = append(shutdownHooks, func(context.Context) error { return redisClient.Close() })
		}
	}

	shippingService := application.NewShippingService(
		methodRepo,
		rateCache,
		cfg.Shipping.RateCacheTTL,
		application.NewMetrics(nil),
		otel.Tracer(constants.ShippingService),
	)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: constants.ShippingService,
		Port:        constants.ShippingServicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			interfaces.NewShippingHandler(shippingService,
				interfaces.WithBackOfficeRates(appCtx.Config.App.FeatureFlags.EnableBackOfficeRates),
			).RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: shutdownHooks,
	})
}
