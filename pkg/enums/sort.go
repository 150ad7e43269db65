package enums

import "fmt"

// WineSortField is the whitelist of columns a wine listing may be sorted by.
type WineSortField string

const (
	WineSortFieldID       WineSortField = "id"
	WineSortFieldName     WineSortField = "name"
	WineSortFieldProducer WineSortField = "producer"
	WineSortFieldVintage  WineSortField = "vintage"
	WineSortFieldType     WineSortField = "type"
)

var validWineSortFields = []WineSortField{
	WineSortFieldID,
	WineSortFieldName,
	WineSortFieldProducer,
	WineSortFieldVintage,
	WineSortFieldType,
}

// String implements fmt.Stringer.
func (f WineSortField) String() string {
	return string(f)
}

// Column returns the database column backing the sort field.
func (f WineSortField) Column() string {
	return string(f)
}

// IsValid reports whether the value is a known WineSortField.
func (f WineSortField) IsValid() bool {
	for _, candidate := range validWineSortFields {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseWineSortField converts raw input into a WineSortField.
func ParseWineSortField(value string) (WineSortField, error) {
	for _, candidate := range validWineSortFields {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sort field %q", value)
}

// SortOrder is the direction applied to the sort field.
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// String implements fmt.Stringer.
func (o SortOrder) String() string {
	return string(o)
}

// IsValid reports whether the value is a known SortOrder.
func (o SortOrder) IsValid() bool {
	return o == SortOrderAsc || o == SortOrderDesc
}

// ParseSortOrder converts raw input into a SortOrder.
func ParseSortOrder(value string) (SortOrder, error) {
	switch SortOrder(value) {
	case SortOrderAsc:
		return SortOrderAsc, nil
	case SortOrderDesc:
		return SortOrderDesc, nil
	}
	return "", fmt.Errorf("invalid sort order %q", value)
}
