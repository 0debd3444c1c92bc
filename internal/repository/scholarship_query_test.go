package repository

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fullsco/scholarship-api/internal/models"
)

func int64Ptr(v int64) *int64 { return &v }
func boolPtr(v bool) *bool    { return &v }

func TestBuildScholarshipPredicateEmptyFilter(t *testing.T) {
	p := buildScholarshipPredicate(models.ScholarshipFilter{})
	assert.Equal(t, "1=1 AND s.is_published = true", p.where)
	assert.Empty(t, p.args)
	assert.Empty(t, p.searchArg)
}

func TestBuildScholarshipPredicateCombinesWithAnd(t *testing.T) {
	p := buildScholarshipPredicate(models.ScholarshipFilter{
		Search:      "  Data ",
		CategoryID:  int64Ptr(3),
		CountryID:   int64Ptr(5),
		LevelID:     int64Ptr(9),
		FullyFunded: boolPtr(false),
	})

	assert.Equal(t, "1=1 AND s.is_published = true AND (LOWER(s.title) LIKE $1 OR LOWER(s.description) LIKE $1)"+
		" AND s.category_id = $2 AND s.country_id = $3 AND s.level_id = $4 AND s.is_fully_funded = $5", p.where)
	assert.Equal(t, []interface{}{"%data%", int64(3), int64(5), int64(9), false}, p.args)
	assert.Equal(t, "$1", p.searchArg)
}

func TestBuildScholarshipPredicateEscapesWildcards(t *testing.T) {
	p := buildScholarshipPredicate(models.ScholarshipFilter{Search: `100%_off\`})
	assert.Equal(t, []interface{}{`%100\%\_off\\%`}, p.args)
}

func TestBuildScholarshipPredicateIncludeUnpublished(t *testing.T) {
	p := buildScholarshipPredicate(models.ScholarshipFilter{IncludeUnpublished: true, LevelID: int64Ptr(1)})
	assert.Equal(t, "1=1 AND s.level_id = $1", p.where)
}

func TestOrderClause(t *testing.T) {
	withSearch := scholarshipPredicate{searchArg: "$1"}
	cases := []struct {
		sort models.SortOrder
		p    scholarshipPredicate
		want string
	}{
		{models.SortNewest, scholarshipPredicate{}, "s.created_at DESC, s.id DESC"},
		{"", scholarshipPredicate{}, "s.created_at DESC, s.id DESC"},
		{models.SortOldest, scholarshipPredicate{}, "s.created_at ASC, s.id ASC"},
		{models.SortDeadline, scholarshipPredicate{}, "s.deadline ASC NULLS LAST, s.id ASC"},
		{models.SortTitle, scholarshipPredicate{}, "s.title ASC, s.id ASC"},
		{models.SortRelevance, scholarshipPredicate{}, "s.created_at DESC, s.id DESC"},
		{models.SortRelevance, withSearch, "CASE WHEN LOWER(s.title) LIKE $1 THEN 0 ELSE 1 END, s.created_at DESC, s.id DESC"},
	}
	for _, tc := range cases {
		t.Run(string(tc.sort), func(t *testing.T) {
			assert.Equal(t, tc.want, orderClause(tc.sort, tc.p))
		})
	}
}

func TestBuildScholarshipSearchSharesPredicate(t *testing.T) {
	rows, count, args := buildScholarshipSearch(models.ScholarshipFilter{
		Search:   "med",
		SortBy:   models.SortTitle,
		Page:     3,
		PageSize: 20,
	})

	where := "WHERE 1=1 AND s.is_published = true AND (LOWER(s.title) LIKE $1 OR LOWER(s.description) LIKE $1)"
	assert.True(t, strings.Contains(rows, where+" ORDER BY s.title ASC, s.id ASC LIMIT 20 OFFSET 40"))
	assert.Equal(t, "SELECT COUNT(*) FROM scholarships s "+where, count)
	assert.Equal(t, []interface{}{"%med%"}, args)
}

func TestBuildScholarshipSearchNeverEmitsNegativeOffset(t *testing.T) {
	rows, _, _ := buildScholarshipSearch(models.ScholarshipFilter{Page: math.MaxInt32, PageSize: 100})
	assert.True(t, strings.HasSuffix(rows, fmt.Sprintf("LIMIT 100 OFFSET %d", (math.MaxInt32-1)*100)), rows)

	rows, _, _ = buildScholarshipSearch(models.ScholarshipFilter{Page: math.MaxInt / 50, PageSize: 100})
	assert.True(t, strings.HasSuffix(rows, fmt.Sprintf("LIMIT 100 OFFSET %d", math.MaxInt)), rows)
	assert.NotContains(t, rows, "OFFSET -")
}
