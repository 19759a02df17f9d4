package domain

import "github.com/pkg/errors"

// DisplayOn 控制配送方式在哪些渠道可见
type DisplayOn string

const (
	DisplayBoth     DisplayOn = "both"
	DisplayFrontEnd DisplayOn = "front_end"
	DisplayBackEnd  DisplayOn = "back_end"
)

// FrontEnd 顾客下单时是否可见；空值视为 both
func (d DisplayOn) FrontEnd() bool {
	return d == "" || d == DisplayBoth || d == DisplayFrontEnd
}

// BackEnd 后台下单时是否可见
func (d DisplayOn) BackEnd() bool {
	return d == "" || d == DisplayBoth || d == DisplayBackEnd
}

func (d DisplayOn) Valid() bool {
	switch d {
	case "", DisplayBoth, DisplayFrontEnd, DisplayBackEnd:
		return true
	}
	return false
}

// ParseDisplayFilter 解析报价请求的展示渠道。
// front_end 是顾客视角，both 是后台报价视角（列出全部配送方式）。
func ParseDisplayFilter(s string) (DisplayOn, error) {
	switch DisplayOn(s) {
	case "", DisplayFrontEnd:
		return DisplayFrontEnd, nil
	case DisplayBoth:
		return DisplayBoth, nil
	default:
		return "", errors.Wrapf(ErrInvalidDisplay, "%q", s)
	}
}

// ShippingMethod 配送方式，每个配送方式绑定一个运费计算器
type ShippingMethod struct {
	ID         int64
	Name       string
	Code       string
	DisplayOn  DisplayOn
	Zones      []*Zone
	Calculator Calculator
}

// IncludesAddress 地址落在任一区域内即可使用
func (m *ShippingMethod) IncludesAddress(addr Address) bool {
	for _, z := range m.Zones {
		if z.Include(addr) {
			return true
		}
	}
	return false
}

// AvailableToDisplay 判断在给定渠道下是否应当出现在报价列表中
func (m *ShippingMethod) AvailableToDisplay(filter DisplayOn) bool {
	switch filter {
	case DisplayBoth:
		return true
	case DisplayBackEnd:
		return m.DisplayOn.BackEnd()
	default:
		return m.DisplayOn.FrontEnd()
	}
}
