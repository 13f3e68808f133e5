package core

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// LedgerFilter narrows a ledger listing. Zero values disable a filter.
type LedgerFilter struct {
	Search    string
	Category  string
	MinAmount *Money
	MaxAmount *Money
	StartDate *Date
	EndDate   *Date
	Page      int
	Limit     int
}

// Normalize applies paging defaults and bounds.
func (f LedgerFilter) Normalize() LedgerFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	return f
}

func (f LedgerFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type Pagination struct {
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	CurrentPage int  `json:"currentPage"`
	Limit       int  `json:"limit"`
	HasMore     bool `json:"hasMore"`
}

// NewPagination computes page metadata: totalPages = ceil(total/limit) and
// hasMore = page < totalPages.
func NewPagination(total, page, limit int) Pagination {
	if limit < 1 {
		limit = DefaultPageSize
	}
	pages := (total + limit - 1) / limit
	return Pagination{
		Total:       total,
		TotalPages:  pages,
		CurrentPage: page,
		Limit:       limit,
		HasMore:     page < pages,
	}
}

type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}
