package interfaces

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"storefront/internal/pkg/logger"
	"storefront/internal/pkg/mq"
	"storefront/internal/service/promotion/domain"
)

// MessageReader 是 *kafka.Reader 的子集
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Config() kafka.ReaderConfig
	Close() error
}

// ApplyRequestHandler 处理异步应用请求，*application.PromotionService 满足该接口
type ApplyRequestHandler interface {
	HandleApplyRequested(ctx context.Context, msg *domain.ApplyPromotionRequested) error
}

// ApplyRequestConsumer 监听 promotion-apply-requests 并驱动应用服务
type ApplyRequestConsumer struct {
	reader         MessageReader
	handler        ApplyRequestHandler
	failureHandler *mq.FailureHandler
	wg             sync.WaitGroup
	stopped        atomic.Bool
}

func NewApplyRequestConsumer(reader MessageReader, handler ApplyRequestHandler, failureHandler *mq.FailureHandler) *ApplyRequestConsumer {
	return &ApplyRequestConsumer{
		reader:         reader,
		handler:        handler,
		failureHandler: failureHandler,
	}
}

// Start 在后台 goroutine 中消费，直到 ctx 取消或调用 Stop
func (a *ApplyRequestConsumer) Start(ctx context.Context) error {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		logger.Ctx(ctx).Info().Str("topic", a.reader.Config().Topic).Msg("✅ Promotion apply consumer started.")
		for {
			if a.stopped.Load() {
				return
			}
			msg, err := a.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil || a.stopped.Load() {
					logger.Ctx(ctx).Info().Msg("🛑 Promotion apply consumer shutting down.")
					return
				}
				logger.Ctx(ctx).Error().Err(err).Msg("could not fetch message, retrying")
				time.Sleep(time.Second)
				continue
			}

			msgCtx := mq.ExtractContext(ctx, msg)
			if err := a.processMessage(msgCtx, msg); err != nil {
				a.failureHandler.Handle(msgCtx, msg, err)
			}

			// 无论成功或失败（已移交死信），都提交 offset
			if err := a.reader.CommitMessages(ctx, msg); err != nil {
				logger.Ctx(ctx).Error().Err(err).Msg("failed to commit message")
			}
		}
	}()
	return nil
}

func (a *ApplyRequestConsumer) Stop(ctx context.Context) error {
	a.stopped.Store(true)
	err := a.reader.Close()
	a.wg.Wait()
	logger.Ctx(ctx).Info().Msg("✅ Promotion apply consumer stopped.")
	return err
}

func (a *ApplyRequestConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var req domain.ApplyPromotionRequested
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		return errors.Wrap(err, "decode apply request")
	}
	if req.OrderID == "" || req.Code == "" {
		return errors.New("apply request requires order_id and code")
	}
	return a.handler.HandleApplyRequested(ctx, &req)
}
