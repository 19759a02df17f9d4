// internal/service/order/domain/state.go
package domain

// State 定义了订单在结账流程中的状态
type State string

const (
	StateCreated        State = "CREATED"         // 订单和发货单已记录，尚未报价
	StateDelivery       State = "DELIVERY"        // 每个发货单都已选定配送方式和运费
	StatePendingPayment State = "PENDING_PAYMENT" // 结账确认，等待支付
	StateFailed         State = "FAILED"          // 结账流程失败
)
