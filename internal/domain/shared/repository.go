package shared

// Pagination limits shared by every list endpoint
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Filter represents query filter options
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: DefaultPageSize,
		Filters:  make(map[string]interface{}),
	}
}

// Normalize clamps page and page size into their valid ranges
func (f *Filter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
}

// Offset returns the row offset of the current page
func (f Filter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// Paginated represents a paginated result
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated creates a new paginated result
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// HasNext reports whether a page follows the current one
func (p Paginated[T]) HasNext() bool {
	return p.Page < p.TotalPages
}

// HasPrevious reports whether a page precedes the current one
func (p Paginated[T]) HasPrevious() bool {
	return p.Page > 1
}
