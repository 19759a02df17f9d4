package port

import (
	"context"
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("rate cache miss")

// RateCache 缓存报价结果，value 是序列化后的报价列表
type RateCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
