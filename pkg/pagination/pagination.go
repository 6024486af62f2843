// Package pagination holds the offset/limit arithmetic shared by every paged listing.
package pagination

import "math"

const (
	// DefaultPage is used when the requested page is below 1.
	DefaultPage = 1
	// DefaultPageSize is used when the requested page size is not positive.
	DefaultPageSize = 10
)

// Result is the outcome of Paginate.
type Result struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Skip       int   `json:"-"`
	TotalPages int64 `json:"totalPages"`
}

// Normalize coerces page and pageSize to their defaults when out of range. Pages so
// large that (page-1)*pageSize would overflow are pulled back to the last page whose
// offset is representable; such a page is always past the end of any listing.
func Normalize(page, pageSize int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if maxPage := math.MaxInt / pageSize; page > maxPage {
		page = maxPage
	}
	return page, pageSize
}

// Clamp caps pageSize at max. A non-positive max disables the cap.
func Clamp(pageSize, max int) int {
	if max > 0 && pageSize > max {
		return max
	}
	return pageSize
}

// Offset returns the number of records to skip for a normalized page.
func Offset(page, pageSize int) int {
	page, pageSize = Normalize(page, pageSize)
	return (page - 1) * pageSize
}

// TotalPages is ceil(total / pageSize), zero when there is nothing to page.
func TotalPages(total int64, pageSize int) int64 {
	_, pageSize = Normalize(1, pageSize)
	if total <= 0 {
		return 0
	}
	size := int64(pageSize)
	return (total + size - 1) / size
}

// Paginate computes skip and total page count for a listing of total records.
func Paginate(total int64, page, pageSize int) Result {
	page, pageSize = Normalize(page, pageSize)
	return Result{
		Page:       page,
		PageSize:   pageSize,
		Skip:       (page - 1) * pageSize,
		TotalPages: TotalPages(total, pageSize),
	}
}
