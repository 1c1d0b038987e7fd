package repository

// Page holds one page of entities along with the pagination bookkeeping
// derived from the total count:
//
//	TotalPages  == ceil(TotalCount / PerPage)
//	HasNext     == Page < TotalPages
//	HasPrevious == Page > 1
type Page[T Entity] struct {
	Entities    []T  `json:"entities"`
	TotalCount  int  `json:"total_count"`
	Page        int  `json:"page"`
	PerPage     int  `json:"per_page"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

func newPage[T Entity](entities []T, page, perPage, totalCount int) *Page[T] {
	totalPages := (totalCount + perPage - 1) / perPage
	return &Page[T]{
		Entities:    entities,
		TotalCount:  totalCount,
		Page:        page,
		PerPage:     perPage,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}
