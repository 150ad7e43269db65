package pagination

const (
	// DefaultPageSize is the standard page size when one is not provided.
	DefaultPageSize = 25
	// MaxPageSize caps how many rows any page query can request.
	MaxPageSize = 100
)

// Params holds 1-indexed page inputs from controllers or services.
type Params struct {
	Page     int
	PageSize int
}

// Normalize enforces the 1-indexed page and the configured size bounds.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// TotalPages derives the page count for totalItems rows, i.e.
// ceil(totalItems / pageSize).
func TotalPages(totalItems int64, pageSize int) int {
	if pageSize <= 0 || totalItems <= 0 {
		return 0
	}
	pages := totalItems / int64(pageSize)
	if totalItems%int64(pageSize) != 0 {
		pages++
	}
	return int(pages)
}
