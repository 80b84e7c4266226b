package engine

// DefaultPageSize is the number of rows per page.
const DefaultPageSize = 20

// PageCount is ceil(n/size), never less than one.
func PageCount(n, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// Pager windows a view into fixed-size, 1-based pages.
type Pager struct {
	Page int
	Size int
}

func NewPager(size int) Pager {
	if size <= 0 {
		size = DefaultPageSize
	}
	return Pager{Page: 1, Size: size}
}

func (p *Pager) Reset() { p.Page = 1 }

// Clamp pulls Page back into [1, PageCount(n)] and reports whether it moved.
func (p *Pager) Clamp(n int) bool {
	prev := p.Page
	if last := PageCount(n, p.Size); p.Page > last {
		p.Page = last
	}
	if p.Page < 1 {
		p.Page = 1
	}
	return p.Page != prev
}

// Next advances one page; at the last page it does nothing.
func (p *Pager) Next(n int) bool {
	if p.Page >= PageCount(n, p.Size) {
		return false
	}
	p.Page++
	return true
}

// Prev goes back one page; on the first page it does nothing.
func (p *Pager) Prev() bool {
	if p.Page <= 1 {
		return false
	}
	p.Page--
	return true
}

func (p *Pager) First() bool {
	if p.Page == 1 {
		return false
	}
	p.Page = 1
	return true
}

func (p *Pager) Last(n int) bool {
	last := PageCount(n, p.Size)
	if p.Page == last {
		return false
	}
	p.Page = last
	return true
}

// GoTo jumps to page if it exists.
func (p *Pager) GoTo(page, n int) bool {
	if page < 1 || page > PageCount(n, p.Size) || page == p.Page {
		return false
	}
	p.Page = page
	return true
}

// Window returns the [start, end) slice bounds of the current page.
func (p Pager) Window(n int) (int, int) {
	size := p.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	start := (p.Page - 1) * size
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	end := start + size
	if end > n {
		end = n
	}
	return start, end
}
