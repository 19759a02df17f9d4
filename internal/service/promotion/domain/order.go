// promotion-service/internal/domain/order.go
package domain

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"storefront/internal/pkg/money"
)

// Adjustment 是挂在 shipment 上的一笔金额调整，促销产生的调整金额为负数。
// 同一个 shipment 上，每个促销动作最多只有一笔调整。
type Adjustment struct {
	ID             int64 // 持久化后由数据库分配，0 表示尚未保存
	ShipmentID     int64
	Amount         decimal.Decimal
	Label          string
	PromotionCode  *PromotionCode
	SourceActionID int64
	Eligible       bool
	CreatedAt      time.Time
}

// Shipment 订单的一个发货单，Cost 是调整前的运费
type Shipment struct {
	ID          int64
	Number      string
	Cost        decimal.Decimal
	Adjustments []*Adjustment
}

// PromoTotal 该 shipment 上有效调整的合计
func (s *Shipment) PromoTotal() decimal.Decimal {
	total := decimal.Zero
	for _, a := range s.Adjustments {
		if a.Eligible {
			total = total.Add(a.Amount)
		}
	}
	return total
}

// DiscountedCost 调整后的运费
func (s *Shipment) DiscountedCost() decimal.Decimal {
	return s.Cost.Add(s.PromoTotal())
}

type adjustmentKey struct {
	shipmentID int64
	actionID   int64
}

// Order 是促销计算的聚合根。Shipments 保持加入顺序。
// AdjustmentTotal 始终等于所有 shipment 上有效调整的合计。
type Order struct {
	ID              string
	Currency        string
	ItemTotal       decimal.Decimal
	Country         string
	State           string
	Shipments       []*Shipment
	AdjustmentTotal decimal.Decimal

	// (shipment, action) -> adjustment，避免每次扫描全部调整
	index   map[adjustmentKey]*Adjustment
	removed []*Adjustment
}

func NewOrder(id, currency string, itemTotal decimal.Decimal) *Order {
	return &Order{
		ID:        id,
		Currency:  strings.ToUpper(currency),
		ItemTotal: itemTotal,
		index:     make(map[adjustmentKey]*Adjustment),
	}
}

// AddShipment 追加 shipment，已有的调整一并建立索引
func (o *Order) AddShipment(s *Shipment) error {
	if s == nil || s.ID == 0 {
		return errors.Wrap(ErrShipmentIdentity, "shipment id is required")
	}
	if o.shipment(s.ID) != nil {
		return errors.Wrapf(ErrShipmentIdentity, "shipment %d already on order %s", s.ID, o.ID)
	}
	seen := make(map[int64]struct{}, len(s.Adjustments))
	for _, a := range s.Adjustments {
		if _, exists := seen[a.SourceActionID]; exists {
			return errors.Wrapf(ErrDuplicateAdjustment, "shipment %d, action %d", s.ID, a.SourceActionID)
		}
		seen[a.SourceActionID] = struct{}{}
	}
	for _, a := range s.Adjustments {
		a.ShipmentID = s.ID
		o.index[adjustmentKey{shipmentID: s.ID, actionID: a.SourceActionID}] = a
	}
	o.Shipments = append(o.Shipments, s)
	o.recalculate()
	return nil
}

func (o *Order) shipment(id int64) *Shipment {
	for _, s := range o.Shipments {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// ShipmentAdjustment 查找某个促销动作在 shipment 上产生的调整
func (o *Order) ShipmentAdjustment(shipmentID, actionID int64) (*Adjustment, bool) {
	a, ok := o.index[adjustmentKey{shipmentID: shipmentID, actionID: actionID}]
	return a, ok
}

// AttachAdjustment 把调整挂到对应的 shipment 上
func (o *Order) AttachAdjustment(adj *Adjustment) error {
	s := o.shipment(adj.ShipmentID)
	if s == nil {
		return errors.Wrapf(ErrShipmentIdentity, "shipment %d not on order %s", adj.ShipmentID, o.ID)
	}
	key := adjustmentKey{shipmentID: adj.ShipmentID, actionID: adj.SourceActionID}
	if _, exists := o.index[key]; exists {
		return errors.Wrapf(ErrDuplicateAdjustment, "shipment %d, action %d", adj.ShipmentID, adj.SourceActionID)
	}
	s.Adjustments = append(s.Adjustments, adj)
	o.index[key] = adj
	o.recalculate()
	return nil
}

// RemoveAdjustments 移除某个促销动作产生的全部调整，返回移除的数量。
// 被移除的调整暂存起来，由仓储在保存时删除。
func (o *Order) RemoveAdjustments(actionID int64) int {
	n := 0
	for _, s := range o.Shipments {
		key := adjustmentKey{shipmentID: s.ID, actionID: actionID}
		adj, ok := o.index[key]
		if !ok {
			continue
		}
		delete(o.index, key)
		kept := s.Adjustments[:0]
		for _, a := range s.Adjustments {
			if a != adj {
				kept = append(kept, a)
			}
		}
		s.Adjustments = kept
		o.removed = append(o.removed, adj)
		n++
	}
	if n > 0 {
		o.recalculate()
	}
	return n
}

// DrainRemoved 取出并清空待删除的调整
func (o *Order) DrainRemoved() []*Adjustment {
	out := o.removed
	o.removed = nil
	return out
}

// ShipmentAdjustments 按 shipment 顺序返回全部调整
func (o *Order) ShipmentAdjustments() []*Adjustment {
	var out []*Adjustment
	for _, s := range o.Shipments {
		out = append(out, s.Adjustments...)
	}
	return out
}

// ShipTotal 调整前的运费合计
func (o *Order) ShipTotal() decimal.Decimal {
	total := decimal.Zero
	for _, s := range o.Shipments {
		total = total.Add(s.Cost)
	}
	return total
}

func (o *Order) AdjustmentMoney() money.Money {
	return money.New(o.AdjustmentTotal, o.Currency)
}

func (o *Order) recalculate() {
	total := decimal.Zero
	for _, s := range o.Shipments {
		total = total.Add(s.PromoTotal())
	}
	o.AdjustmentTotal = total
}
