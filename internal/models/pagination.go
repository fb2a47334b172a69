package models

// DefaultPageSize is applied when a list request does not name one.
const DefaultPageSize = 10

// NormalizePage clamps page/pageSize to sane values.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return page, pageSize
}

// PageCount returns ceil(total / pageSize).
func PageCount(total int64, pageSize int) int {
	if pageSize < 1 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
