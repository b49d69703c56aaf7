package enums

import "fmt"

// StockUnit defines how a stock record measures its quantity.
type StockUnit string

const (
	StockUnitSquareMeter StockUnit = "m2"
	StockUnitLinearMeter StockUnit = "m"
	StockUnitUnit        StockUnit = "unit"
)

var validStockUnits = []StockUnit{
	StockUnitSquareMeter,
	StockUnitLinearMeter,
	StockUnitUnit,
}

// String implements fmt.Stringer.
func (u StockUnit) String() string {
	return string(u)
}

// IsValid reports whether the value is a known StockUnit.
func (u StockUnit) IsValid() bool {
	for _, candidate := range validStockUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseStockUnit converts raw input into a StockUnit.
func ParseStockUnit(value string) (StockUnit, error) {
	for _, candidate := range validStockUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock unit %q", value)
}
