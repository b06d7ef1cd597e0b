package types

import (
	"fmt"

	"github.com/angelmondragon/agrimarket/pkg/enums"
)

// PriceSource is the tagged union behind price_history (source_type, source_id):
// either Farmer(farmer_profiles.id) or Cooperative(cooperative_profiles.id).
// The database holds no foreign key for source_id, so callers resolve it.
type PriceSource struct {
	kind enums.PriceSourceType
	id   int64
}

// FarmerSource tags a price quoted by a farmer profile.
func FarmerSource(farmerID int64) PriceSource {
	return PriceSource{kind: enums.PriceSourceFarmer, id: farmerID}
}

// CoopSource tags a price quoted by a cooperative profile.
func CoopSource(coopID int64) PriceSource {
	return PriceSource{kind: enums.PriceSourceCoop, id: coopID}
}

// ParsePriceSource rebuilds a source from stored columns.
func ParsePriceSource(kind string, id int64) (PriceSource, error) {
	parsed, err := enums.ParsePriceSourceType(kind)
	if err != nil {
		return PriceSource{}, err
	}
	src := PriceSource{kind: parsed, id: id}
	if err := src.Validate(); err != nil {
		return PriceSource{}, err
	}
	return src, nil
}

func (s PriceSource) Kind() enums.PriceSourceType { return s.kind }
func (s PriceSource) ID() int64                   { return s.id }

func (s PriceSource) IsFarmer() bool { return s.kind == enums.PriceSourceFarmer }
func (s PriceSource) IsCoop() bool   { return s.kind == enums.PriceSourceCoop }

// Validate rejects the zero value and non-positive ids.
func (s PriceSource) Validate() error {
	if !s.kind.IsValid() {
		return fmt.Errorf("price source type %q is not valid", s.kind)
	}
	if s.id <= 0 {
		return fmt.Errorf("price source id must be positive, got %d", s.id)
	}
	return nil
}

func (s PriceSource) String() string {
	return fmt.Sprintf("%s(%d)", s.kind, s.id)
}
