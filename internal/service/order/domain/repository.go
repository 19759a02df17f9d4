// internal/service/order/domain/repository.go
package domain

import "context"

// OrderRepository 定义了订单聚合的持久化接口。
type OrderRepository interface {
	// Save 保存一个订单聚合（用于创建或更新），首次保存后回填发货单的 ID
	Save(ctx context.Context, order *Order) error

	// FindByID 根据订单号查找一个订单聚合。
	FindByID(ctx context.Context, id string) (*Order, error)
}
