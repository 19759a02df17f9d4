package domain

import (
	"slices"
	"strings"
)

// Estimator 为一个包裹生成按运费升序排列的报价，并选中最便宜的前台可见报价
type Estimator struct {
	methods []*ShippingMethod // 非空时覆盖包裹自带的候选配送方式
	display DisplayOn
}

type EstimatorOption func(*Estimator)

// WithShippingMethods 指定候选配送方式，替代包裹按区域筛选出的候选
func WithShippingMethods(methods ...*ShippingMethod) EstimatorOption {
	return func(e *Estimator) { e.methods = methods }
}

// WithDisplayFilter 设置报价渠道，默认 front_end
func WithDisplayFilter(d DisplayOn) EstimatorOption {
	return func(e *Estimator) { e.display = d }
}

func NewEstimator(opts ...EstimatorOption) *Estimator {
	e := &Estimator{display: DisplayFrontEnd}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ShippingRates 返回包裹的全部报价。
//
//   - 计算器不可用、返回空值、或币种与包裹不一致的配送方式不参与报价；
//     空值不能当作 0，否则会误报免运费
//   - 计算结果为 0 是合法的免运费报价
//   - 按运费稳定升序排序，运费相同保持候选顺序
//   - 只选中第一个前台可见的报价，后台专用报价永远不会被选中
//
// 计算器返回的错误原样向上抛出。没有任何报价时返回空切片。
func (e *Estimator) ShippingRates(pkg *Package) ([]ShippingRate, error) {
	candidates := pkg.ShippingMethods
	if e.methods != nil {
		candidates = e.methods
	}

	rates := make([]ShippingRate, 0, len(candidates))
	for _, m := range candidates {
		if m == nil || m.Calculator == nil {
			continue
		}
		if !m.AvailableToDisplay(e.display) {
			continue
		}
		calc := m.Calculator
		if !calc.Available(pkg) {
			continue
		}
		currency := strings.ToUpper(calc.Currency())
		if currency == "" {
			currency = pkg.Currency
		} else if pkg.Currency != "" && !strings.EqualFold(currency, pkg.Currency) {
			continue
		}

		cost, err := calc.Compute(pkg)
		if err != nil {
			return nil, err
		}
		if !cost.Valid {
			continue
		}
		rates = append(rates, ShippingRate{
			ShippingMethod: m,
			Cost:           cost.Decimal,
			Currency:       currency,
		})
	}

	slices.SortStableFunc(rates, func(a, b ShippingRate) int {
		return a.Cost.Cmp(b.Cost)
	})
	for i := range rates {
		if rates[i].ShippingMethod.DisplayOn.FrontEnd() {
			rates[i].Selected = true
			break
		}
	}
	return rates, nil
}
