// cmd/promotion-service/main.go
package main

import (
	"context"

	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"storefront/internal/pkg/bootstrap"
	"storefront/internal/pkg/constants"
	"storefront/internal/pkg/database"
	"storefront/internal/pkg/logger"
	"storefront/internal/pkg/mq"
	"storefront/internal/pkg/zookeeper"
	"storefront/internal/service/promotion/application"
	"storefront/internal/service/promotion/infrastructure"
	"storefront/internal/service/promotion/infrastructure/rule"
	"storefront/internal/service/promotion/interfaces"
)

// main 是 promotion-service 的组装根
func main() {
	cfg := bootstrap.Init()
	logger.Init(constants.PromotionService, cfg.App.LogLevel)

	db, err := database.Open(cfg.Infra.MySQL, infrastructure.Models()...)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to connect to mysql")
	}

	zkConn, err := zookeeper.Connect(cfg.Infra.Zookeeper.ServerList(), cfg.Infra.Zookeeper.SessionTimeout)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to connect to zookeeper")
	}

	ruleEngine, err := rule.NewCELRuleEngine()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to create rule engine")
	}

	brokers := cfg.Infra.Kafka.BrokerList()
	eventWriter := mq.NewKafkaWriter(brokers, cfg.Promotion.EventsTopic)
	dltWriter := mq.NewKafkaWriter(brokers, cfg.Promotion.DeadLetter)
	publisher := infrastructure.NewKafkaEventPublisher(eventWriter)

	promotionService := application.NewPromotionService(
		infrastructure.NewGormPromotionRepository(db),
		infrastructure.NewGormOrderRepository(db),
		ruleEngine,
		infrastructure.NewZkLocker(zkConn, cfg.Promotion.LockTimeout),
		infrastructure.NewGormTransactor(db),
		publisher,
		application.NewMetrics(nil),
		otel.Tracer(constants.PromotionService),
	)

	// 异步应用请求，失败的消息转入死信主题
	consumerCtx, cancelConsumers := context.WithCancel(context.Background())
	applyConsumer := interfaces.NewApplyRequestConsumer(
		mq.NewKafkaReader(brokers, cfg.Promotion.RequestTopic, cfg.Promotion.GroupID),
		promotionService,
		mq.NewFailureHandler(dltWriter),
	)
	dltConsumer := interfaces.NewDltConsumer(
		mq.NewKafkaReader(brokers, cfg.Promotion.DeadLetter, cfg.Promotion.GroupID+"-dlt"),
	)
	if err := applyConsumer.Start(consumerCtx); err != nil {
		zlog.Fatal().Err(err).Msg("failed to start apply request consumer")
	}
	if err := dltConsumer.Start(consumerCtx); err != nil {
		zlog.Fatal().Err(err).Msg("failed to start dlt consumer")
	}

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: constants.PromotionService,
		Port:        constants.PromotionServicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			interfaces.NewPromotionHandler(promotionService).RegisterRoutes(appCtx.Mux)
		},
		// 逆序执行：先停消费者，再关闭 writer 和 zk 连接
		OnShutdown: []func(ctx context.Context) error{
			func(context.Context) error { zkConn.Close(); return nil },
			func(context.Context) error { return publisher.Close() },
			func(context.Context) error { return dltWriter.Close() },
			func(ctx context.Context) error {
				cancelConsumers()
				if err := applyConsumer.Stop(ctx); err != nil {
					return err
				}
				return dltConsumer.Stop(ctx)
			},
		},
	})
}
