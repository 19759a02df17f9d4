// internal/pkg/mq/failure.go
package mq

import (
	"context"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"

	"storefront/internal/pkg/logger"
)

// 死信消息附带的原始位置和失败原因
const (
	HeaderOriginalTopic     = "x-original-topic"
	HeaderOriginalPartition = "x-original-partition"
	HeaderOriginalOffset    = "x-original-offset"
	HeaderExceptionFqcn     = "x-exception-fqcn"
	HeaderExceptionMessage  = "x-exception-message"
)

// MessageWriter 是 *kafka.Writer 的子集，便于测试替换
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// FailureHandler 把处理失败的消息转发到死信主题
type FailureHandler struct {
	dlt MessageWriter
}

func NewFailureHandler(dlt MessageWriter) *FailureHandler {
	return &FailureHandler{dlt: dlt}
}

// Handle 转发失败的消息；转发本身失败只记日志，调用方照常提交 offset
func (h *FailureHandler) Handle(ctx context.Context, msg kafka.Message, cause error) {
	headers := KafkaHeaderCarrier(append([]kafka.Header(nil), msg.Headers...))
	headers.Set(HeaderOriginalTopic, msg.Topic)
	headers.Set(HeaderOriginalPartition, strconv.Itoa(msg.Partition))
	headers.Set(HeaderOriginalOffset, strconv.FormatInt(msg.Offset, 10))
	headers.Set(HeaderExceptionFqcn, fmt.Sprintf("%T", cause))
	headers.Set(HeaderExceptionMessage, cause.Error())

	err := h.dlt.WriteMessages(ctx, kafka.Message{
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	})
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("topic", msg.Topic).
			Int64("offset", msg.Offset).
			Msg("🚨 failed to forward message to dead letter topic")
		return
	}
	logger.Ctx(ctx).Warn().Err(cause).Str("topic", msg.Topic).Int64("offset", msg.Offset).Msg("message moved to dead letter topic")
}
