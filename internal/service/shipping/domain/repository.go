package domain

import "context"

// ShippingMethodRepository 配送方式仓储，返回的配送方式已装配好区域和计算器
type ShippingMethodRepository interface {
	// FindByIDs 按 ids 的顺序返回；任一 id 不存在时返回 ErrShippingMethodNotFound
	FindByIDs(ctx context.Context, ids []int64) ([]*ShippingMethod, error)
	// FindForAddress 返回区域覆盖该地址的配送方式，按 id 升序
	FindForAddress(ctx context.Context, addr Address) ([]*ShippingMethod, error)
}
