package infrastructure

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"storefront/internal/pkg/mq"
	"storefront/internal/service/order/domain"
)

// OrderEventProducer 以订单号为 key 发布订单事件
type OrderEventProducer struct {
	writer *kafka.Writer
}

func NewOrderEventProducer(writer *kafka.Writer) *OrderEventProducer {
	return &OrderEventProducer{writer: writer}
}

func (p *OrderEventProducer) Publish(ctx context.Context, event *domain.OrderEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal order event")
	}
	if err := mq.ProduceMessage(ctx, p.writer, []byte(event.OrderID), eventBytes); err != nil {
		return errors.Wrapf(err, "publish %s to %s", event.Type, p.writer.Topic)
	}
	return nil
}

func (p *OrderEventProducer) Close() error {
	return p.writer.Close()
}
