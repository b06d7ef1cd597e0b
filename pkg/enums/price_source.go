package enums

import "fmt"

// PriceSourceType tags who quoted a price_history row.
type PriceSourceType string

const (
	PriceSourceFarmer PriceSourceType = "farmer"
	PriceSourceCoop   PriceSourceType = "coop"
)

var validPriceSourceTypes = []PriceSourceType{
	PriceSourceFarmer,
	PriceSourceCoop,
}

// String implements fmt.Stringer.
func (p PriceSourceType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PriceSourceType.
func (p PriceSourceType) IsValid() bool {
	for _, candidate := range validPriceSourceTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePriceSourceType converts raw input into a PriceSourceType.
func ParsePriceSourceType(value string) (PriceSourceType, error) {
	for _, candidate := range validPriceSourceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price source type %q", value)
}
