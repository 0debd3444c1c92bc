package models

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes TotalPages as ceil(total / pageSize).
func NewPagination(total, page, pageSize int) Pagination {
	p := Pagination{Total: total, Page: page, PageSize: pageSize}
	if pageSize > 0 {
		p.TotalPages = (total + pageSize - 1) / pageSize
	}
	return p
}
