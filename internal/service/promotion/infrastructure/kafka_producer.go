package infrastructure

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"storefront/internal/pkg/mq"
	"storefront/internal/service/promotion/domain"
)

// KafkaEventPublisher 以订单号为 key 发布促销事件，同一订单的事件落在同一分区保证顺序
type KafkaEventPublisher struct {
	writer *kafka.Writer
}

func NewKafkaEventPublisher(writer *kafka.Writer) *KafkaEventPublisher {
	return &KafkaEventPublisher{writer: writer}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, event *domain.PromotionEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal promotion event")
	}
	if err := mq.ProduceMessage(ctx, p.writer, []byte(event.OrderID), body); err != nil {
		return errors.Wrapf(err, "publish %s to %s", event.Type, p.writer.Topic)
	}
	return nil
}

func (p *KafkaEventPublisher) Close() error {
	return p.writer.Close()
}
