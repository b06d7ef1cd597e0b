package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// NumericSpec mirrors a NUMERIC(precision, scale) column.
type NumericSpec struct {
	Precision int32
	Scale     int32
}

var (
	// Money covers prices: NUMERIC(12,2).
	Money = NumericSpec{Precision: 12, Scale: 2}
	// Total covers order totals and item subtotals: NUMERIC(14,2).
	Total = NumericSpec{Precision: 14, Scale: 2}
	// Quantity covers stock and ordered amounts: NUMERIC(12,3).
	Quantity = NumericSpec{Precision: 12, Scale: 3}
	// Coordinate covers latitude/longitude: NUMERIC(9,6).
	Coordinate = NumericSpec{Precision: 9, Scale: 6}
)

// Normalize rounds d half away from zero to the column scale and rejects
// values whose integer part does not fit the column.
func (s NumericSpec) Normalize(d decimal.Decimal) (decimal.Decimal, error) {
	rounded := d.Round(s.Scale)
	limit := decimal.New(1, s.Precision-s.Scale)
	if rounded.Abs().GreaterThanOrEqual(limit) {
		return decimal.Decimal{}, fmt.Errorf("value %s exceeds NUMERIC(%d,%d)", d.String(), s.Precision, s.Scale)
	}
	return rounded, nil
}

// NormalizePtr is Normalize for nullable columns; nil passes through.
func (s NumericSpec) NormalizePtr(d *decimal.Decimal) (*decimal.Decimal, error) {
	if d == nil {
		return nil, nil
	}
	v, err := s.Normalize(*d)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// String renders d with exactly the column's fractional digits.
func (s NumericSpec) String(d decimal.Decimal) string {
	return d.StringFixed(s.Scale)
}

// Product multiplies quantity by unit price the way the order_items.subtotal
// generated column does, rounded to the Total scale.
func Product(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(Total.Scale)
}
