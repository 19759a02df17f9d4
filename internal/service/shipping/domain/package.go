package domain

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ContentItem 包裹中的一行商品
type ContentItem struct {
	VariantID int64           `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`  // 单价
	Weight    decimal.Decimal `json:"weight"` // 单件重量
}

func (c ContentItem) Amount() decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// Package 是发往同一个收货地址的一组商品，对应订单的一个 shipment
type Package struct {
	ID          string
	OrderID     string
	Currency    string
	Destination Address
	Contents    []ContentItem
	// ShippingMethods 候选配送方式，默认为区域覆盖收货地址的配送方式
	ShippingMethods []*ShippingMethod
}

// NewPackage 用区域覆盖 destination 的配送方式作为候选
func NewPackage(id, orderID, currency string, dest Address, contents []ContentItem, methods []*ShippingMethod) *Package {
	eligible := make([]*ShippingMethod, 0, len(methods))
	for _, m := range methods {
		if m != nil && m.IncludesAddress(dest) {
			eligible = append(eligible, m)
		}
	}
	return &Package{
		ID:              id,
		OrderID:         orderID,
		Currency:        strings.ToUpper(currency),
		Destination:     dest,
		Contents:        contents,
		ShippingMethods: eligible,
	}
}

// ItemTotal 商品金额合计
func (p *Package) ItemTotal() decimal.Decimal {
	total := decimal.Zero
	for _, c := range p.Contents {
		total = total.Add(c.Amount())
	}
	return total
}

// 单行和整个包裹的件数上限，超出的包裹视为无效
const (
	MaxLineQuantity    = 1_000_000
	MaxPackageQuantity = 1_000_000
)

// Quantity 商品件数合计。任一行件数越界或合计超过 MaxPackageQuantity 时返回 -1，
// 计算器对非正件数不报价。
func (p *Package) Quantity() int {
	n := 0
	for _, c := range p.Contents {
		if c.Quantity <= 0 || c.Quantity > MaxLineQuantity {
			return -1
		}
		n += c.Quantity
		if n > MaxPackageQuantity {
			return -1
		}
	}
	return n
}

func (p *Package) Weight() decimal.Decimal {
	total := decimal.Zero
	for _, c := range p.Contents {
		total = total.Add(c.Weight.Mul(decimal.NewFromInt(int64(c.Quantity))))
	}
	return total
}

// Validate 校验请求构造出的包裹
func (p *Package) Validate() error {
	if p.Currency == "" {
		return errors.Wrap(ErrPackageInvalid, "currency is required")
	}
	if p.Destination.Country == "" {
		return errors.Wrap(ErrPackageInvalid, "destination country is required")
	}
	total := 0
	for i, c := range p.Contents {
		if c.Quantity <= 0 {
			return errors.Wrapf(ErrPackageInvalid, "contents[%d]: quantity must be positive", i)
		}
		if c.Quantity > MaxLineQuantity {
			return errors.Wrapf(ErrPackageInvalid, "contents[%d]: quantity exceeds %d", i, MaxLineQuantity)
		}
		total += c.Quantity
		if total > MaxPackageQuantity {
			return errors.Wrapf(ErrPackageInvalid, "package quantity exceeds %d", MaxPackageQuantity)
		}
		if c.Price.IsNegative() {
			return errors.Wrapf(ErrPackageInvalid, "contents[%d]: price must not be negative", i)
		}
	}
	return nil
}
