package domain

// PaginationParams pages the feed, receipt and stalled-broadcast listings.
// Page is 1-based; the HTTP layer caps PageSize before it reaches a repository.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset is the number of rows skipped before Page. Pages below 1 start at the first row.
func (p PaginationParams) Offset() int {
	if p.Page < 1 || p.PageSize < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}
