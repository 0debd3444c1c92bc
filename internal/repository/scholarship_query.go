package repository

import (
	"fmt"
	"strings"

	"github.com/fullsco/scholarship-api/internal/models"
)

const scholarshipColumns = `s.id, s.title, s.slug, s.description, s.content, s.amount, s.currency, s.university, s.department,
        s.is_featured, s.is_fully_funded, s.image_url, s.deadline, s.category_id, s.country_id, s.level_id,
        s.is_published, s.created_at, s.updated_at`

// scholarshipPredicate is a WHERE clause with its positional arguments. The row
// query and the count query must share it so that totals match the pages.
type scholarshipPredicate struct {
	where string
	args  []interface{}
	// searchArg is the placeholder of the search pattern, empty without search text.
	searchArg string
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func buildScholarshipPredicate(filter models.ScholarshipFilter) scholarshipPredicate {
	var p scholarshipPredicate
	conditions := []string{"1=1"}
	next := func(v interface{}) string {
		p.args = append(p.args, v)
		return fmt.Sprintf("$%d", len(p.args))
	}

	if !filter.IncludeUnpublished {
		conditions = append(conditions, "s.is_published = true")
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		p.searchArg = next("%" + likeEscaper.Replace(strings.ToLower(search)) + "%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.title) LIKE %s OR LOWER(s.description) LIKE %s)", p.searchArg, p.searchArg))
	}
	if filter.CategoryID != nil {
		conditions = append(conditions, "s.category_id = "+next(*filter.CategoryID))
	}
	if filter.CountryID != nil {
		conditions = append(conditions, "s.country_id = "+next(*filter.CountryID))
	}
	if filter.LevelID != nil {
		conditions = append(conditions, "s.level_id = "+next(*filter.LevelID))
	}
	if filter.FullyFunded != nil {
		conditions = append(conditions, "s.is_fully_funded = "+next(*filter.FullyFunded))
	}

	p.where = strings.Join(conditions, " AND ")
	return p
}

// orderClause maps a sort order onto SQL. Every branch ends with an id tiebreaker
// so repeated queries page deterministically.
func orderClause(sortBy models.SortOrder, p scholarshipPredicate) string {
	switch sortBy {
	case models.SortOldest:
		return "s.created_at ASC, s.id ASC"
	case models.SortDeadline:
		return "s.deadline ASC NULLS LAST, s.id ASC"
	case models.SortTitle:
		return "s.title ASC, s.id ASC"
	case models.SortRelevance:
		if p.searchArg != "" {
			return fmt.Sprintf("CASE WHEN LOWER(s.title) LIKE %s THEN 0 ELSE 1 END, s.created_at DESC, s.id DESC", p.searchArg)
		}
	}
	return "s.created_at DESC, s.id DESC"
}

func buildScholarshipSearch(filter models.ScholarshipFilter) (rowsQuery, countQuery string, args []interface{}) {
	p := buildScholarshipPredicate(filter)
	rowsQuery = fmt.Sprintf("SELECT %s FROM scholarships s WHERE %s ORDER BY %s LIMIT %d OFFSET %d",
		scholarshipColumns, p.where, orderClause(filter.SortBy, p), filter.PageSize, filter.Offset())
	countQuery = fmt.Sprintf("SELECT COUNT(*) FROM scholarships s WHERE %s", p.where)
	return rowsQuery, countQuery, p.args
}
