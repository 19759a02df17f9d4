// Package money 提供带币种的金额值对象，所有运算基于 decimal，避免浮点误差。
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrCurrencyMismatch = errors.New("currency mismatch")

// Money 金额 + 币种，币种只做透传，不做汇率换算
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func New(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: strings.ToUpper(currency)}
}

// Zero 返回指定币种的零值
func Zero(currency string) Money {
	return New(decimal.Zero, currency)
}

func (m Money) Neg() Money {
	return Money{Amount: m.Amount.Neg(), Currency: m.Currency}
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// Add 两个金额相加，币种必须一致
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Sum 对同一币种的一组金额求和
func Sum(currency string, amounts ...decimal.Decimal) Money {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return New(total, currency)
}

// Display 形如 "USD 3.00"
func (m Money) Display() string {
	if m.Currency == "" {
		return m.Amount.StringFixed(2)
	}
	return m.Currency + " " + m.Amount.StringFixed(2)
}

func (m Money) String() string {
	return m.Display()
}
