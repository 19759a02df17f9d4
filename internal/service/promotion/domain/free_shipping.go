// promotion-service/internal/domain/free_shipping.go
package domain

const ActionFreeShipping = "free_shipping"

// FreeShipping 免运费：给订单的每个 shipment 加一笔等于运费的负调整。
// 每个 shipment 只会被同一个动作调整一次，重复执行不会重复优惠。
type FreeShipping struct {
	id        int64
	promotion *Promotion
}

func NewFreeShipping(id int64) *FreeShipping {
	return &FreeShipping{id: id}
}

func (a *FreeShipping) ID() int64 { return a.id }

func (a *FreeShipping) Type() string { return ActionFreeShipping }

func (a *FreeShipping) bind(p *Promotion) { a.promotion = p }

// Perform 每新优惠一个 shipment，促销的 CreditsCount 加一
func (a *FreeShipping) Perform(order *Order, code *PromotionCode) bool {
	applied := false
	for _, s := range order.Shipments {
		if _, exists := order.ShipmentAdjustment(s.ID, a.id); exists {
			continue
		}
		adj := &Adjustment{
			ShipmentID:     s.ID,
			Amount:         s.Cost.Neg(),
			Label:          a.label(),
			PromotionCode:  code,
			SourceActionID: a.id,
			Eligible:       true,
		}
		if err := order.AttachAdjustment(adj); err != nil {
			continue
		}
		if a.promotion != nil {
			a.promotion.CreditsCount++
		}
		applied = true
	}
	return applied
}

func (a *FreeShipping) RemoveFrom(order *Order) int {
	return order.RemoveAdjustments(a.id)
}

func (a *FreeShipping) label() string {
	if a.promotion == nil {
		return "Promotion"
	}
	return a.promotion.Label()
}
