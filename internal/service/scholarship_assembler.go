package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fullsco/scholarship-api/internal/dto"
	"github.com/fullsco/scholarship-api/internal/models"
)

// isoMillis is the timestamp layout of every date in scholarship views.
const isoMillis = "2006-01-02T15:04:05.000Z"

const defaultThumbnail = "/images/scholarship-placeholder.jpg"

type taxonomyBatchReader interface {
	List(ctx context.Context) ([]models.Taxonomy, error)
	FindByIDs(ctx context.Context, ids []int64) ([]models.Taxonomy, error)
}

// ScholarshipAssembler hydrates scholarship rows into public views and builds facet lists.
type ScholarshipAssembler struct {
	categories       taxonomyBatchReader
	countries        taxonomyBatchReader
	levels           taxonomyBatchReader
	defaultThumbnail string
}

// NewScholarshipAssembler constructs an assembler. An empty thumbnail uses the built-in placeholder.
func NewScholarshipAssembler(categories, countries, levels taxonomyBatchReader, thumbnail string) *ScholarshipAssembler {
	if strings.TrimSpace(thumbnail) == "" {
		thumbnail = defaultThumbnail
	}
	return &ScholarshipAssembler{
		categories:       categories,
		countries:        countries,
		levels:           levels,
		defaultThumbnail: thumbnail,
	}
}

// Assemble builds a complete result page.
func (a *ScholarshipAssembler) Assemble(ctx context.Context, rows []models.Scholarship, total int, filter models.ScholarshipFilter) (*dto.ScholarshipSearchResult, error) {
	items, err := a.Views(ctx, rows)
	if err != nil {
		return nil, err
	}
	facets, err := a.Facets(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ScholarshipSearchResult{
		Items:      items,
		Pagination: models.NewPagination(total, filter.Page, filter.PageSize),
		Facets:     facets,
	}, nil
}

// Views hydrates rows with one batched lookup per taxonomy. Rows keep their order.
// References to missing taxonomy rows render as null.
func (a *ScholarshipAssembler) Views(ctx context.Context, rows []models.Scholarship) ([]dto.ScholarshipView, error) {
	categories, err := refsByID(ctx, a.categories, rows, func(s models.Scholarship) *int64 { return s.CategoryID })
	if err != nil {
		return nil, fmt.Errorf("hydrate categories: %w", err)
	}
	countries, err := refsByID(ctx, a.countries, rows, func(s models.Scholarship) *int64 { return s.CountryID })
	if err != nil {
		return nil, fmt.Errorf("hydrate countries: %w", err)
	}
	levels, err := refsByID(ctx, a.levels, rows, func(s models.Scholarship) *int64 { return s.LevelID })
	if err != nil {
		return nil, fmt.Errorf("hydrate levels: %w", err)
	}

	views := make([]dto.ScholarshipView, 0, len(rows))
	for _, row := range rows {
		view := a.baseView(row)
		view.Category = pick(categories, row.CategoryID)
		view.Country = pick(countries, row.CountryID)
		view.Level = pick(levels, row.LevelID)
		views = append(views, view)
	}
	return views, nil
}

// View hydrates a single row.
func (a *ScholarshipAssembler) View(ctx context.Context, row models.Scholarship) (*dto.ScholarshipView, error) {
	views, err := a.Views(ctx, []models.Scholarship{row})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Facets returns every category, country and level ordered by name.
func (a *ScholarshipAssembler) Facets(ctx context.Context) (dto.SearchFacets, error) {
	var facets dto.SearchFacets
	var err error
	if facets.Categories, err = listRefs(ctx, a.categories); err != nil {
		return dto.SearchFacets{}, fmt.Errorf("list category facets: %w", err)
	}
	if facets.Countries, err = listRefs(ctx, a.countries); err != nil {
		return dto.SearchFacets{}, fmt.Errorf("list country facets: %w", err)
	}
	if facets.Levels, err = listRefs(ctx, a.levels); err != nil {
		return dto.SearchFacets{}, fmt.Errorf("list level facets: %w", err)
	}
	return facets, nil
}

func (a *ScholarshipAssembler) baseView(s models.Scholarship) dto.ScholarshipView {
	thumbnail := strings.TrimSpace(s.ImageURL)
	if thumbnail == "" {
		thumbnail = a.defaultThumbnail
	}
	view := dto.ScholarshipView{
		ID:            s.ID,
		Title:         s.Title,
		Slug:          s.Slug,
		Description:   s.Description,
		Content:       s.Content,
		Amount:        s.Amount,
		Currency:      s.Currency,
		University:    s.University,
		Department:    s.Department,
		IsFeatured:    s.IsFeatured,
		IsFullyFunded: s.IsFullyFunded,
		ThumbnailURL:  thumbnail,
		CreatedAt:     formatTimestamp(s.CreatedAt),
		UpdatedAt:     formatTimestamp(s.UpdatedAt),
	}
	if s.Deadline != nil {
		deadline := formatTimestamp(*s.Deadline)
		view.Deadline = &deadline
	}
	return view
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

func refsByID(ctx context.Context, reader taxonomyBatchReader, rows []models.Scholarship, fk func(models.Scholarship) *int64) (map[int64]dto.TaxonomyRef, error) {
	seen := make(map[int64]struct{})
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		id := fk(row)
		if id == nil {
			continue
		}
		if _, ok := seen[*id]; ok {
			continue
		}
		seen[*id] = struct{}{}
		ids = append(ids, *id)
	}
	refs := make(map[int64]dto.TaxonomyRef, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}
	items, err := reader.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		refs[item.ID] = toRef(item)
	}
	return refs, nil
}

func pick(refs map[int64]dto.TaxonomyRef, id *int64) *dto.TaxonomyRef {
	if id == nil {
		return nil
	}
	ref, ok := refs[*id]
	if !ok {
		return nil
	}
	return &ref
}

func listRefs(ctx context.Context, reader taxonomyBatchReader) ([]dto.TaxonomyRef, error) {
	items, err := reader.List(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]dto.TaxonomyRef, 0, len(items))
	for _, item := range items {
		refs = append(refs, toRef(item))
	}
	return refs, nil
}

func toRef(t models.Taxonomy) dto.TaxonomyRef {
	return dto.TaxonomyRef{ID: t.ID, Name: t.Name, Slug: t.Slug}
}
