package catalog

import "github.com/iliyamo/siddu-catalog/internal/model"

// Paginate returns the 1-indexed page of records.  Pages outside the
// result set yield an empty slice.
func Paginate(records []model.Movie, page, pageSize int) []model.Movie {
	if page < 1 || pageSize < 1 {
		return []model.Movie{}
	}
	start := (page - 1) * pageSize
	if start >= len(records) {
		return []model.Movie{}
	}
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}
	return append(make([]model.Movie, 0, end-start), records[start:end]...)
}

// TotalPages is ceil(count / pageSize).
func TotalPages(count, pageSize int) int {
	if count <= 0 || pageSize < 1 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}

// ClampPage pulls page back into [1, totalPages], or to 1 when there are
// no pages at all.
func ClampPage(page, totalPages int) int {
	if totalPages < 1 || page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}
