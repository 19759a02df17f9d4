package port

import (
	"context"

	"storefront/internal/service/promotion/domain"
)

// Locker 分布式锁，release 必须调用
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Transactor 在同一个数据库事务中执行 fn，fn 返回错误时回滚
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher 发布促销领域事件
type EventPublisher interface {
	Publish(ctx context.Context, event *domain.PromotionEvent) error
}
