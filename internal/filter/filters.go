package filter

import "github.com/martinkb/blog/internal/validator"

// MaxPageSize caps the page size a caller may request. The offset is
// computed from the clamped size, so an over-sized request changes item
// boundaries the same way on every page.
const MaxPageSize = 50

type Filter struct {
	Page     int64
	PageSize int64
}

func NewFilter(page, pageSize int64) Filter {
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return Filter{
		Page:     page,
		PageSize: pageSize,
	}
}

func (f Filter) Limit() int64 {
	return f.PageSize
}

func (f Filter) Offset() int64 {
	return f.Page * f.PageSize
}

func ValidateFilters(filters Filter, v *validator.Validator) {
	v.Check(filters.Page >= 0, "page", "must be greater than or equal to 0")
	v.Check(filters.PageSize > 0, "page_size", "must be greater than 0")
	v.Check(filters.Page <= 10_000_000, "page", "must be a maximum of 10_000_000")
}
