package dto

import "github.com/fullsco/scholarship-api/internal/models"

// SearchParams carries raw, untrusted query parameters for scholarship listings.
// Empty strings mean the parameter was absent.
type SearchParams struct {
	Page        string
	PageSize    string
	Search      string
	Category    string
	Country     string
	Level       string
	FundingType string
	SortBy      string
}

// TaxonomyRef is the nested {id,name,slug} shape used for categories, countries and levels.
type TaxonomyRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ScholarshipView is the public representation of a scholarship.
type ScholarshipView struct {
	ID            int64        `json:"id"`
	Title         string       `json:"title"`
	Slug          string       `json:"slug"`
	Description   string       `json:"description"`
	Content       string       `json:"content"`
	Amount        string       `json:"amount"`
	Currency      string       `json:"currency"`
	University    string       `json:"university"`
	Department    string       `json:"department"`
	IsFeatured    bool         `json:"isFeatured"`
	IsFullyFunded bool         `json:"isFullyFunded"`
	ThumbnailURL  string       `json:"thumbnailUrl"`
	Deadline      *string      `json:"deadline"`
	CreatedAt     string       `json:"createdAt"`
	UpdatedAt     string       `json:"updatedAt"`
	Category      *TaxonomyRef `json:"category"`
	Country       *TaxonomyRef `json:"country"`
	Level         *TaxonomyRef `json:"level"`
}

// SearchFacets lists every available filter option regardless of the current selection.
type SearchFacets struct {
	Categories []TaxonomyRef `json:"categories"`
	Countries  []TaxonomyRef `json:"countries"`
	Levels     []TaxonomyRef `json:"levels"`
}

// ScholarshipSearchResult is the result page returned by the search endpoints.
type ScholarshipSearchResult struct {
	Items      []ScholarshipView `json:"items"`
	Pagination models.Pagination `json:"pagination"`
	Facets     SearchFacets      `json:"facets"`
}

// ScholarshipRequest is the admin payload for creating or replacing a scholarship.
type ScholarshipRequest struct {
	Title         string  `json:"title" validate:"required,max=255"`
	Slug          string  `json:"slug" validate:"omitempty,max=255"`
	Description   string  `json:"description"`
	Content       string  `json:"content"`
	Amount        string  `json:"amount" validate:"max=100"`
	Currency      string  `json:"currency" validate:"omitempty,len=3"`
	University    string  `json:"university" validate:"max=255"`
	Department    string  `json:"department" validate:"max=255"`
	IsFeatured    bool    `json:"isFeatured"`
	IsFullyFunded bool    `json:"isFullyFunded"`
	ImageURL      string  `json:"imageUrl" validate:"omitempty,max=1024"`
	Deadline      *string `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
	CategoryID    *int64  `json:"categoryId" validate:"omitempty,gt=0"`
	CountryID     *int64  `json:"countryId" validate:"omitempty,gt=0"`
	LevelID       *int64  `json:"levelId" validate:"omitempty,gt=0"`
	IsPublished   bool    `json:"isPublished"`
}
