package enums

import "fmt"

// WineType represents the canonical wine styles tracked by the collection.
type WineType string

const (
	WineTypeRed       WineType = "Red"
	WineTypeWhite     WineType = "White"
	WineTypeRose      WineType = "Rose"
	WineTypeSparkling WineType = "Sparkling"
	WineTypeDessert   WineType = "Dessert"
	WineTypeFortified WineType = "Fortified"
)

var validWineTypes = []WineType{
	WineTypeRed,
	WineTypeWhite,
	WineTypeRose,
	WineTypeSparkling,
	WineTypeDessert,
	WineTypeFortified,
}

// String implements fmt.Stringer.
func (t WineType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known WineType.
func (t WineType) IsValid() bool {
	for _, candidate := range validWineTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseWineType converts raw input into a WineType.
func ParseWineType(value string) (WineType, error) {
	for _, candidate := range validWineTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wine type %q", value)
}
