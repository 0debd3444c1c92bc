package models

import "time"

// TaxonomyKind identifies one of the lookup tables scholarships reference.
type TaxonomyKind string

const (
	TaxonomyCategory TaxonomyKind = "category"
	TaxonomyCountry  TaxonomyKind = "country"
	TaxonomyLevel    TaxonomyKind = "level"
)

// Table returns the backing table name.
func (k TaxonomyKind) Table() string {
	switch k {
	case TaxonomyCategory:
		return "categories"
	case TaxonomyCountry:
		return "countries"
	case TaxonomyLevel:
		return "levels"
	}
	return ""
}

// Valid reports whether k is a known kind.
func (k TaxonomyKind) Valid() bool {
	return k.Table() != ""
}

// Taxonomy is a category, country or level row.
type Taxonomy struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	CreatedAt time.Time `db:"created_at" json:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"-"`
}
