package dto

// TaxonomyRequest is the admin payload for categories, countries and levels.
type TaxonomyRequest struct {
	Name string `json:"name" validate:"required,max=120"`
	Slug string `json:"slug" validate:"omitempty,max=120"`
}
