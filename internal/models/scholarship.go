package models

import (
	"math"
	"time"
)

// Scholarship is a row of the scholarships table.
type Scholarship struct {
	ID            int64      `db:"id" json:"id"`
	Title         string     `db:"title" json:"title"`
	Slug          string     `db:"slug" json:"slug"`
	Description   string     `db:"description" json:"description"`
	Content       string     `db:"content" json:"content"`
	Amount        string     `db:"amount" json:"amount"`
	Currency      string     `db:"currency" json:"currency"`
	University    string     `db:"university" json:"university"`
	Department    string     `db:"department" json:"department"`
	IsFeatured    bool       `db:"is_featured" json:"isFeatured"`
	IsFullyFunded bool       `db:"is_fully_funded" json:"isFullyFunded"`
	ImageURL      string     `db:"image_url" json:"imageUrl"`
	Deadline      *time.Time `db:"deadline" json:"deadline"`
	CategoryID    *int64     `db:"category_id" json:"categoryId"`
	CountryID     *int64     `db:"country_id" json:"countryId"`
	LevelID       *int64     `db:"level_id" json:"levelId"`
	IsPublished   bool       `db:"is_published" json:"isPublished"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
}

// SortOrder enumerates the supported listing orders.
type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortOldest    SortOrder = "oldest"
	SortDeadline  SortOrder = "deadline"
	SortTitle     SortOrder = "title"
	SortRelevance SortOrder = "relevance"
)

// ParseSortOrder returns the matching SortOrder and whether raw was recognised.
func ParseSortOrder(raw string) (SortOrder, bool) {
	switch SortOrder(raw) {
	case SortNewest, SortOldest, SortDeadline, SortTitle, SortRelevance:
		return SortOrder(raw), true
	}
	return "", false
}

// FundingType values accepted by the search endpoints.
const (
	FundingFullyFunded = "fully-funded"
	FundingPartial     = "partial"
)

// ScholarshipFilter is the normalised filter set produced from request parameters.
// Taxonomy dimensions carry resolved ids, never slugs.
type ScholarshipFilter struct {
	Search             string
	CategoryID         *int64
	CountryID          *int64
	LevelID            *int64
	FullyFunded        *bool
	SortBy             SortOrder
	Page               int
	PageSize           int
	IncludeUnpublished bool
}

// Offset returns the row offset for the filter's page. It saturates at
// math.MaxInt instead of overflowing.
func (f ScholarshipFilter) Offset() int {
	if f.Page < 1 || f.PageSize < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.PageSize {
		return math.MaxInt
	}
	return (f.Page - 1) * f.PageSize
}
