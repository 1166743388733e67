package session

// DefaultPageSize matches the resume directory screen's fixed page size.
const DefaultPageSize = 30

// pagination tracks the 1-based current page over the filtered set. The total
// is derived from the filtered count, never from the full directory.
type pagination struct {
	page     int
	pageSize int
	total    int
}

func newPagination(pageSize int) *pagination {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &pagination{page: 1, pageSize: pageSize}
}

func (p *pagination) setTotal(total int) {
	if total < 0 {
		total = 0
	}
	p.total = total
}

func (p *pagination) totalPages() int {
	if p.total == 0 {
		return 0
	}
	return (p.total + p.pageSize - 1) / p.pageSize
}

// goTo clamps the requested page into [1, totalPages] and returns the page
// actually landed on.
func (p *pagination) goTo(page int) int {
	max := p.totalPages()
	if max < 1 {
		max = 1
	}
	if page < 1 {
		page = 1
	}
	if page > max {
		page = max
	}
	p.page = page
	return p.page
}

func (p *pagination) reset() {
	p.page = 1
}

// sliceBounds returns the [lo, hi) range of the current page within the
// filtered set.
func (p *pagination) sliceBounds() (int, int) {
	lo := (p.page - 1) * p.pageSize
	if lo > p.total {
		lo = p.total
	}
	hi := lo + p.pageSize
	if hi > p.total {
		hi = p.total
	}
	return lo, hi
}
