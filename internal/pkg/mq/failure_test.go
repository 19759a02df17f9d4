package mq

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func TestFailureHandlerForwardsWithOrigin(t *testing.T) {
	w := &recordingWriter{}
	original := kafka.Message{
		Topic:     "promotion-apply-requests",
		Partition: 2,
		Offset:    41,
		Key:       []byte("R100"),
		Value:     []byte(`{"order_id":"R100"}`),
		Headers:   []kafka.Header{{Key: "traceparent", Value: []byte("00-abc")}},
	}

	NewFailureHandler(w).Handle(context.Background(), original, errors.New("db down"))

	require.Len(t, w.msgs, 1)
	carrier := KafkaHeaderCarrier(w.msgs[0].Headers)
	assert.Equal(t, "promotion-apply-requests", carrier.Get(HeaderOriginalTopic))
	assert.Equal(t, "2", carrier.Get(HeaderOriginalPartition))
	assert.Equal(t, "41", carrier.Get(HeaderOriginalOffset))
	assert.Equal(t, "db down", carrier.Get(HeaderExceptionMessage))
	assert.Equal(t, "00-abc", carrier.Get("traceparent"))
	assert.Equal(t, original.Value, w.msgs[0].Value)
	// 原消息的 header 不能被修改
	assert.Len(t, original.Headers, 1)
}

func TestFailureHandlerSwallowsWriteError(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	assert.NotPanics(t, func() {
		NewFailureHandler(w).Handle(context.Background(), kafka.Message{Topic: "t"}, errors.New("boom"))
	})
}
