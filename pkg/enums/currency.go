package enums

import (
	"fmt"
	"strings"
)

// Currency is a 3-letter ISO 4217 code stored in CHAR(3) columns.
type Currency string

// CurrencyKES is the column default on offers, orders, and price_history.
const CurrencyKES Currency = "KES"

// DefaultCurrency is applied when callers leave the currency empty.
const DefaultCurrency = CurrencyKES

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}

// IsValid reports whether the value is three upper-case ASCII letters.
func (c Currency) IsValid() bool {
	if len(c) != 3 {
		return false
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// OrDefault returns c, or DefaultCurrency when c is empty.
func (c Currency) OrDefault() Currency {
	if c == "" {
		return DefaultCurrency
	}
	return c
}

// ParseCurrency normalizes raw input into a Currency.
func ParseCurrency(value string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(value)))
	if !c.IsValid() {
		return "", fmt.Errorf("invalid currency %q", value)
	}
	return c, nil
}
