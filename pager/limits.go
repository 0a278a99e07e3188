package pager

const (
	// NoLimit makes a query return every matching document.
	NoLimit = -1
	// MaxLimit caps every page size and walk batch.
	MaxLimit = 100
	// DefaultLimit is the page size of a view that sets none.
	DefaultLimit = 10
)

// PageSizes bounds the page size of a view.
type PageSizes struct {
	Default int
	Max     int
}

// DefaultPageSizes applies to views without a cap of their own.
var DefaultPageSizes = PageSizes{Default: DefaultLimit, Max: MaxLimit}

// Normalize returns size within the bounds. A non-positive size becomes the
// default and a larger one the maximum, ok is false in both cases.
func (p PageSizes) Normalize(size int) (int, bool) {
	switch {
	case size <= 0:
		return min(p.Default, p.Max), false
	case size > p.Max:
		return p.Max, false
	default:
		return size, true
	}
}

// Capped lowers the maximum to limit. Limits outside [1, MaxLimit] leave the
// bounds unchanged.
func (p PageSizes) Capped(limit int) PageSizes {
	if limit <= 0 || limit > MaxLimit {
		return p
	}

	p.Max = min(p.Max, limit)
	p.Default = min(p.Default, p.Max)

	return p
}

// NormalizeLimit bounds a page size or walk batch by DefaultPageSizes.
func NormalizeLimit(limit int) int {
	n, _ := DefaultPageSizes.Normalize(limit)
	return n
}
