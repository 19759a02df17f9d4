// promotion-service/internal/domain/promotion.go
package domain

import (
	"time"

	"github.com/pkg/errors"
)

// PromotionCode 顾客输入的促销码
type PromotionCode struct {
	ID          int64
	Value       string
	PromotionID int64
}

// Action 促销生效时执行的动作。动作必须通过 Promotion.AddAction 绑定到促销上。
type Action interface {
	ID() int64
	Type() string
	// Perform 对订单执行动作，返回是否产生了新的调整
	Perform(order *Order, code *PromotionCode) bool
	// RemoveFrom 撤销该动作在订单上产生的调整，返回撤销的数量
	RemoveFrom(order *Order) int
	bind(p *Promotion)
}

// Promotion 促销活动。CreditsCount 只增不减，记录促销累计生效的次数。
type Promotion struct {
	ID           int64
	Name         string
	Description  string
	CreditsCount int64
	// Rule 是 CEL 表达式形式的适用条件，为空表示无条件适用
	Rule      string
	StartsAt  time.Time // 零值表示不限
	ExpiresAt time.Time // 零值表示不限
	Actions   []Action
}

func (p *Promotion) AddAction(a Action) {
	a.bind(p)
	p.Actions = append(p.Actions, a)
}

// Active 判断 now 是否在活动时间内
func (p *Promotion) Active(now time.Time) bool {
	if !p.StartsAt.IsZero() && now.Before(p.StartsAt) {
		return false
	}
	if !p.ExpiresAt.IsZero() && !now.Before(p.ExpiresAt) {
		return false
	}
	return true
}

// Label 调整的展示名
func (p *Promotion) Label() string {
	return "Promotion (" + p.Name + ")"
}

// Activate 依次执行所有动作，任一动作产生新调整即返回 true
func (p *Promotion) Activate(order *Order, code *PromotionCode) bool {
	applied := false
	for _, a := range p.Actions {
		if a.Perform(order, code) {
			applied = true
		}
	}
	return applied
}

// AppliedTo 订单的每个 shipment 上都已有本促销每个动作的调整
func (p *Promotion) AppliedTo(order *Order) bool {
	if len(p.Actions) == 0 || len(order.Shipments) == 0 {
		return false
	}
	for _, a := range p.Actions {
		for _, s := range order.Shipments {
			if _, ok := order.ShipmentAdjustment(s.ID, a.ID()); !ok {
				return false
			}
		}
	}
	return true
}

// Deactivate 撤销所有动作产生的调整，CreditsCount 不回退
func (p *Promotion) Deactivate(order *Order) int {
	n := 0
	for _, a := range p.Actions {
		n += a.RemoveFrom(order)
	}
	return n
}

// NewAction 按存储的类型构造促销动作
func NewAction(typ string, id int64) (Action, error) {
	switch typ {
	case ActionFreeShipping:
		return NewFreeShipping(id), nil
	default:
		return nil, errors.Wrapf(ErrUnknownAction, "%q", typ)
	}
}
