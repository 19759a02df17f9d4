// cmd/order-service/main.go
package main

import (
	"context"

	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"storefront/internal/pkg/bootstrap"
	"storefront/internal/pkg/constants"
	"storefront/internal/pkg/database"
	"storefront/internal/pkg/httpclient"
	"storefront/internal/pkg/logger"
	"storefront/internal/pkg/mq"
	"storefront/internal/service/order/application"
	"storefront/internal/service/order/infrastructure"
	"storefront/internal/service/order/infrastructure/adapter"
	"storefront/internal/service/order/interfaces"
)

// main 是 order-service 的组装根
func main() {
	cfg := bootstrap.Init()
	logger.Init(constants.OrderService, cfg.App.LogLevel)

	db, err := database.Open(cfg.Infra.MySQL, infrastructure.Models()...)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to connect to mysql")
	}

	eventProducer := infrastructure.NewOrderEventProducer(
		mq.NewKafkaWriter(cfg.Infra.Kafka.BrokerList(), cfg.Order.EventsTopic),
	)
	tracer := otel.Tracer(constants.OrderService)
	metrics := application.NewMetrics(nil)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: constants.OrderService,
		Port:        constants.OrderServicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			// 启用 Nacos 时通过注册中心发现下游，否则使用静态地址
			var resolver httpclient.Resolver = httpclient.StaticResolver(appCtx.Config.Infra.Services)
			if appCtx.Nacos != nil {
				resolver = appCtx.Nacos
			}
			client := httpclient.NewClient(tracer, resolver)

			checkoutService := application.NewCheckoutService(
				infrastructure.NewGormOrderRepository(db),
				appCtx.Config.Order.ProcessingTimeout,
				tracer,
				metrics,
				adapter.NewShippingHTTPAdapter(client),
				adapter.NewPromotionHTTPAdapter(client),
				eventProducer,
			)
			interfaces.NewOrderHandler(checkoutService).RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: []func(ctx context.Context) error{
			func(context.Context) error { return eventProducer.Close() },
		},
	})
}
