package domain

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Calculator 是配送方式的运费计算策略。
// Compute 返回 Valid=false 表示无法报价，与 0（免运费）严格区分。
type Calculator interface {
	Available(pkg *Package) bool
	Compute(pkg *Package) (decimal.NullDecimal, error)
	// Currency 为空表示沿用包裹的币种
	Currency() string
}

// CalculatorType 内置计算器类型
type CalculatorType string

const (
	CalculatorFlatRate             CalculatorType = "flat_rate"
	CalculatorPerItem              CalculatorType = "per_item"
	CalculatorFlatPercentItemTotal CalculatorType = "flat_percent_item_total"
	CalculatorPriceSack            CalculatorType = "price_sack"
	CalculatorFlexiRate            CalculatorType = "flexi_rate"
)

// Preferences 计算器参数，以 JSON 形式和配送方式一起存储
type Preferences struct {
	Currency       string          `json:"currency,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	FlatPercent    decimal.Decimal `json:"flat_percent"`
	MinimalAmount  decimal.Decimal `json:"minimal_amount"`
	NormalAmount   decimal.Decimal `json:"normal_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FirstItem      decimal.Decimal `json:"first_item"`
	AdditionalItem decimal.Decimal `json:"additional_item"`
	MaxItems       int             `json:"max_items,omitempty"`
}

// ParsePreferences 解析存储的参数；空串视为空参数
func ParsePreferences(raw string) (Preferences, error) {
	var p Preferences
	if strings.TrimSpace(raw) == "" {
		return p, nil
	}
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return p, errors.Wrap(err, "parse calculator preferences")
	}
	return p, nil
}

// NewCalculator 按类型构造内置计算器
func NewCalculator(typ CalculatorType, prefs Preferences) (Calculator, error) {
	base := baseCalculator{currency: strings.ToUpper(prefs.Currency)}
	switch typ {
	case CalculatorFlatRate:
		return &FlatRate{baseCalculator: base, Amount: prefs.Amount}, nil
	case CalculatorPerItem:
		return &PerItem{baseCalculator: base, Amount: prefs.Amount}, nil
	case CalculatorFlatPercentItemTotal:
		return &FlatPercentItemTotal{baseCalculator: base, Percent: prefs.FlatPercent}, nil
	case CalculatorPriceSack:
		return &PriceSack{
			baseCalculator: base,
			MinimalAmount:  prefs.MinimalAmount,
			NormalAmount:   prefs.NormalAmount,
			DiscountAmount: prefs.DiscountAmount,
		}, nil
	case CalculatorFlexiRate:
		return &FlexiRate{
			baseCalculator: base,
			FirstItem:      prefs.FirstItem,
			AdditionalItem: prefs.AdditionalItem,
			MaxItems:       prefs.MaxItems,
		}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownCalculator, "%q", typ)
	}
}

type baseCalculator struct {
	currency string
}

func (b baseCalculator) Currency() string { return b.currency }

// Available 内置计算器对任何包裹都可用
func (b baseCalculator) Available(*Package) bool { return true }

func some(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

var none = decimal.NullDecimal{}

// FlatRate 每个包裹固定运费
type FlatRate struct {
	baseCalculator
	Amount decimal.Decimal
}

func (c *FlatRate) Compute(pkg *Package) (decimal.NullDecimal, error) {
	if len(pkg.Contents) == 0 {
		return none, nil
	}
	return some(c.Amount), nil
}

// PerItem 按件计费
type PerItem struct {
	baseCalculator
	Amount decimal.Decimal
}

func (c *PerItem) Compute(pkg *Package) (decimal.NullDecimal, error) {
	qty := pkg.Quantity()
	if qty <= 0 {
		return none, nil
	}
	return some(c.Amount.Mul(decimal.NewFromInt(int64(qty)))), nil
}

// FlatPercentItemTotal 按商品金额的百分比计费，保留两位小数
type FlatPercentItemTotal struct {
	baseCalculator
	Percent decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

func (c *FlatPercentItemTotal) Compute(pkg *Package) (decimal.NullDecimal, error) {
	if len(pkg.Contents) == 0 {
		return none, nil
	}
	return some(pkg.ItemTotal().Mul(c.Percent).Div(hundred).Round(2)), nil
}

// PriceSack 商品金额低于 MinimalAmount 收 NormalAmount，否则收 DiscountAmount
type PriceSack struct {
	baseCalculator
	MinimalAmount  decimal.Decimal
	NormalAmount   decimal.Decimal
	DiscountAmount decimal.Decimal
}

func (c *PriceSack) Compute(pkg *Package) (decimal.NullDecimal, error) {
	if len(pkg.Contents) == 0 {
		return none, nil
	}
	if pkg.ItemTotal().LessThan(c.MinimalAmount) {
		return some(c.NormalAmount), nil
	}
	return some(c.DiscountAmount), nil
}

// FlexiRate 首件 FirstItem，其余每件 AdditionalItem。
// MaxItems > 0 时每 MaxItems 件重新按首件计费。
type FlexiRate struct {
	baseCalculator
	FirstItem      decimal.Decimal
	AdditionalItem decimal.Decimal
	MaxItems       int
}

func (c *FlexiRate) Compute(pkg *Package) (decimal.NullDecimal, error) {
	qty := pkg.Quantity()
	if qty <= 0 {
		return none, nil
	}
	// 每组第一件按 FirstItem 计费，groups = ceil(qty / MaxItems)
	groups := 1
	if c.MaxItems > 0 && c.MaxItems < qty {
		groups = (qty-1)/c.MaxItems + 1
	}
	first := c.FirstItem.Mul(decimal.NewFromInt(int64(groups)))
	additional := c.AdditionalItem.Mul(decimal.NewFromInt(int64(qty - groups)))
	return some(first.Add(additional)), nil
}

// CalculatorFunc 用函数实现计算器，用于自定义策略和测试。
// AvailableFn 为空时视为可用。
type CalculatorFunc struct {
	AvailableFn func(pkg *Package) bool
	ComputeFn   func(pkg *Package) (decimal.NullDecimal, error)
	Curr        string
}

func (f CalculatorFunc) Available(pkg *Package) bool {
	if f.AvailableFn == nil {
		return true
	}
	return f.AvailableFn(pkg)
}

func (f CalculatorFunc) Compute(pkg *Package) (decimal.NullDecimal, error) {
	if f.ComputeFn == nil {
		return none, nil
	}
	return f.ComputeFn(pkg)
}

func (f CalculatorFunc) Currency() string { return f.Curr }

// FixedCost 返回一个总是报同一价格的计算器
func FixedCost(amount decimal.Decimal, currency string) CalculatorFunc {
	return CalculatorFunc{
		ComputeFn: func(*Package) (decimal.NullDecimal, error) { return some(amount), nil },
		Curr:      currency,
	}
}
