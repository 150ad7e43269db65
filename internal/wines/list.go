package wines

import (
	"github.com/vintrack/vintrack-backend/pkg/enums"
	"github.com/vintrack/vintrack-backend/pkg/pagination"
)

// ListFilters is the shared filter set for wine list and count
// queries. All fields are optional and combine with logical AND.
type ListFilters struct {
	SearchTerm   string
	WineType     *enums.WineType
	Vintage      *int
	Country      *string
	District     *string
	Subdistrict  *string
	WindowStatus *enums.DrinkingWindowStatus
}

// SortSpec pairs a whitelisted sort field with a direction.
type SortSpec struct {
	Field enums.WineSortField
	Order enums.SortOrder
}

// DefaultSort lists most recently added wines first.
func DefaultSort() SortSpec {
	return SortSpec{Field: enums.WineSortFieldID, Order: enums.SortOrderDesc}
}

// ListPageInput bundles everything a paginated listing needs.
type ListPageInput struct {
	Filters    ListFilters
	Sort       SortSpec
	Pagination pagination.Params
}
