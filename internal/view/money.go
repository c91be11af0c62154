package view

import "github.com/shopspring/decimal"

// Money accumulates line totals in decimal arithmetic. The sum does not
// depend on the order rows are added in, so revenues of any partition of a
// view add up to the revenue of the whole. Line totals carry four decimal
// places, which keeps the converted sum exact in float64.
type Money struct {
	d decimal.Decimal
}

func (m *Money) Add(f float64) {
	m.d = m.d.Add(decimal.NewFromFloat(f))
}

func (m Money) Float64() float64 {
	return m.d.InexactFloat64()
}
