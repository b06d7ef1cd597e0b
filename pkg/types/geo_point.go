package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	maxLatitude  = decimal.NewFromInt(90)
	maxLongitude = decimal.NewFromInt(180)
)

// GeoPoint is a latitude/longitude pair stored as two NUMERIC(9,6) columns.
type GeoPoint struct {
	Lat  decimal.Decimal `json:"lat"`
	Long decimal.Decimal `json:"long"`
}

// NewGeoPoint builds a point from float input, rounding to 6 fractional digits.
func NewGeoPoint(lat, long float64) GeoPoint {
	return GeoPoint{
		Lat:  decimal.NewFromFloat(lat).Round(Coordinate.Scale),
		Long: decimal.NewFromFloat(long).Round(Coordinate.Scale),
	}
}

// Normalize rounds both coordinates and checks their ranges.
func (g GeoPoint) Normalize() (GeoPoint, error) {
	lat, err := Coordinate.Normalize(g.Lat)
	if err != nil {
		return GeoPoint{}, fmt.Errorf("latitude: %w", err)
	}
	long, err := Coordinate.Normalize(g.Long)
	if err != nil {
		return GeoPoint{}, fmt.Errorf("longitude: %w", err)
	}
	if lat.Abs().GreaterThan(maxLatitude) {
		return GeoPoint{}, fmt.Errorf("latitude %s out of range", lat.String())
	}
	if long.Abs().GreaterThan(maxLongitude) {
		return GeoPoint{}, fmt.Errorf("longitude %s out of range", long.String())
	}
	return GeoPoint{Lat: lat, Long: long}, nil
}

// Columns returns the pair as nullable column values.
func (g GeoPoint) Columns() (*decimal.Decimal, *decimal.Decimal) {
	lat, long := g.Lat, g.Long
	return &lat, &long
}

// GeoPointFromColumns rebuilds a point; it returns nil unless both columns are set.
func GeoPointFromColumns(lat, long *decimal.Decimal) *GeoPoint {
	if lat == nil || long == nil {
		return nil
	}
	return &GeoPoint{Lat: *lat, Long: *long}
}
