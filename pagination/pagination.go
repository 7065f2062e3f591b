package pagination

const (
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps (page-1)*limit far from integer overflow.
	MaxPage      = 1_000_000
)

// Window is a normalized page request.
type Window struct {
	Page   int
	Limit  int
	Offset int
}

// Normalize clamps limit to [1, MaxLimit] (DefaultLimit when unset), page
// to [1, MaxPage] and derives the offset from the page unless one was given.
// A negative offset means "not given".
func Normalize(page, limit, offset int) Window {
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	switch {
	case page < 1:
		page = 1
	case page > MaxPage:
		page = MaxPage
	}
	if offset < 0 {
		offset = (page - 1) * limit
	}
	return Window{Page: page, Limit: limit, Offset: offset}
}

// Meta is the pagination block of a paginated envelope.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

func NewMeta(page, limit int, total int64) Meta {
	if limit < 1 {
		limit = 1
	}
	if page < 1 {
		page = 1
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// HasMore reports whether rows remain past the current window.
func HasMore(offset, limit int, total int64) bool {
	return int64(offset+limit) < total
}
