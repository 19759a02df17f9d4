// internal/service/order/domain/order.go
package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type Address struct {
	Country string `json:"country"`
	State   string `json:"state,omitempty"`
	City    string `json:"city,omitempty"`
	Zipcode string `json:"zipcode,omitempty"`
}

// LineItem 是发货单里的一行商品
type LineItem struct {
	VariantID int64           `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Weight    decimal.Decimal `json:"weight"`
}

func (li LineItem) Amount() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// ShippingRate 下游报价服务返回的一条候选运费
type ShippingRate struct {
	ShippingMethodID int64
	Name             string
	Cost             decimal.Decimal
	Selected         bool
}

// Shipment 是订单的一个发货单，对应报价时的一个包裹
type Shipment struct {
	ID                 int64 // 持久化后由数据库分配
	Number             string
	LineItems          []LineItem
	ShippingMethodID   int64
	ShippingMethodName string
	Cost               decimal.Decimal
	Rates              []ShippingRate
}

// Order 是结账流程的聚合根，ID 为对外的订单号
type Order struct {
	ID          string
	Email       string
	Currency    string
	ShipAddress Address
	Shipments   []*Shipment
	PromoCode   string
	ItemTotal   decimal.Decimal
	ShipTotal   decimal.Decimal
	PromoTotal  decimal.Decimal // 促销调整合计，为负数或零
	Total       decimal.Decimal
	State       State
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOrder 用于创建一个新的订单实例，发货单号按顺序生成
func NewOrder(id, email, currency string, addr Address, packages [][]LineItem, promoCode string) (*Order, error) {
	if id == "" || currency == "" || addr.Country == "" {
		return nil, errors.Wrap(ErrInvalidOrder, "order id, currency and ship address country are required")
	}
	if len(packages) == 0 {
		return nil, errors.Wrap(ErrInvalidOrder, "order must have at least one shipment")
	}
	now := time.Now()
	o := &Order{
		ID:          id,
		Email:       email,
		Currency:    strings.ToUpper(currency),
		ShipAddress: addr,
		PromoCode:   strings.TrimSpace(promoCode),
		State:       StateCreated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i, items := range packages {
		if len(items) == 0 {
			return nil, errors.Wrapf(ErrInvalidOrder, "shipment %d has no line items", i+1)
		}
		qty := 0
		for _, li := range items {
			if li.Quantity <= 0 || li.Quantity > MaxShipmentQuantity || li.Price.IsNegative() {
				return nil, errors.Wrapf(ErrInvalidOrder, "variant %d: invalid quantity or price", li.VariantID)
			}
			qty += li.Quantity
			if qty > MaxShipmentQuantity {
				return nil, errors.Wrapf(ErrInvalidOrder, "shipment %d exceeds %d items", i+1, MaxShipmentQuantity)
			}
		}
		o.Shipments = append(o.Shipments, &Shipment{
			Number:    shipmentNumber(id, i),
			LineItems: items,
		})
	}
	o.UpdateTotals()
	return o, nil
}

// MaxShipmentQuantity 单个发货单的件数上限，与运费服务的包裹上限一致
const MaxShipmentQuantity = 1_000_000

func shipmentNumber(orderID string, i int) string {
	return orderID + "-H" + strconv.Itoa(i+1)
}

func (o *Order) Shipment(number string) (*Shipment, error) {
	for _, s := range o.Shipments {
		if s.Number == number {
			return s, nil
		}
	}
	return nil, errors.Wrapf(ErrShipmentNotFound, "%s on order %s", number, o.ID)
}

// SelectRates 记录发货单的候选运费，并把运费固定为被选中的那一条
func (o *Order) SelectRates(number string, rates []ShippingRate) error {
	s, err := o.Shipment(number)
	if err != nil {
		return err
	}
	for _, r := range rates {
		if r.Selected {
			s.Rates = rates
			s.ShippingMethodID = r.ShippingMethodID
			s.ShippingMethodName = r.Name
			s.Cost = r.Cost
			o.UpdateTotals()
			return nil
		}
	}
	return errors.Wrapf(ErrNoShippingRate, "shipment %s", number)
}

// ApplyPromoTotal 记录促销服务计算出的调整合计
func (o *Order) ApplyPromoTotal(total decimal.Decimal) {
	o.PromoTotal = total
	o.UpdateTotals()
}

// UpdateTotals 总价 = 商品合计 + 运费合计 + 促销调整，不会小于零
func (o *Order) UpdateTotals() {
	itemTotal, shipTotal := decimal.Zero, decimal.Zero
	for _, s := range o.Shipments {
		for _, li := range s.LineItems {
			itemTotal = itemTotal.Add(li.Amount())
		}
		shipTotal = shipTotal.Add(s.Cost)
	}
	o.ItemTotal = itemTotal
	o.ShipTotal = shipTotal
	o.Total = decimal.Max(decimal.Zero, itemTotal.Add(shipTotal).Add(o.PromoTotal))
	o.UpdatedAt = time.Now()
}

// MarkAsDelivery 所有发货单都有运费后进入 DELIVERY
func (o *Order) MarkAsDelivery() error {
	if o.State != StateCreated {
		return errors.Wrapf(ErrInvalidStateTransition, "%s -> %s", o.State, StateDelivery)
	}
	for _, s := range o.Shipments {
		if s.ShippingMethodID == 0 {
			return errors.Wrapf(ErrNoShippingRate, "shipment %s", s.Number)
		}
	}
	o.State = StateDelivery
	o.UpdatedAt = time.Now()
	return nil
}

// MarkAsPendingPayment 将订单状态更新为等待支付
func (o *Order) MarkAsPendingPayment() error {
	if o.State != StateDelivery {
		return errors.Wrapf(ErrInvalidStateTransition, "%s -> %s", o.State, StatePendingPayment)
	}
	o.State = StatePendingPayment
	o.UpdatedAt = time.Now()
	return nil
}

// MarkAsFailed 将订单标记为失败
func (o *Order) MarkAsFailed() {
	o.State = StateFailed
	o.UpdatedAt = time.Now()
}
