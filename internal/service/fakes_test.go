package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fullsco/scholarship-api/internal/models"
	appErrors "github.com/fullsco/scholarship-api/pkg/errors"
)

func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }

// fakeTaxonomyRepo is an in-memory taxonomy table.
type fakeTaxonomyRepo struct {
	kind  models.TaxonomyKind
	items map[int64]models.Taxonomy

	slugErr  error
	listErr  error
	batchErr error

	slugCalls  int
	batchCalls int
	lastBatch  []int64
	nextID     int64
}

func newFakeTaxonomyRepo(kind models.TaxonomyKind, items ...models.Taxonomy) *fakeTaxonomyRepo {
	repo := &fakeTaxonomyRepo{kind: kind, items: map[int64]models.Taxonomy{}, nextID: 100}
	for _, item := range items {
		repo.items[item.ID] = item
	}
	return repo
}

func (f *fakeTaxonomyRepo) Kind() models.TaxonomyKind { return f.kind }

func (f *fakeTaxonomyRepo) List(context.Context) ([]models.Taxonomy, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Taxonomy, 0, len(f.items))
	for _, item := range f.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeTaxonomyRepo) FindByID(_ context.Context, id int64) (*models.Taxonomy, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &item, nil
}

func (f *fakeTaxonomyRepo) FindBySlug(_ context.Context, slug string) (*models.Taxonomy, error) {
	f.slugCalls++
	if f.slugErr != nil {
		return nil, f.slugErr
	}
	for _, item := range f.items {
		if item.Slug == slug {
			item := item
			return &item, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeTaxonomyRepo) FindByIDs(_ context.Context, ids []int64) ([]models.Taxonomy, error) {
	f.batchCalls++
	f.lastBatch = append([]int64(nil), ids...)
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	out := []models.Taxonomy{}
	for _, id := range ids {
		if item, ok := f.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeTaxonomyRepo) ExistsBySlug(_ context.Context, slug string, excludeID int64) (bool, error) {
	for _, item := range f.items {
		if item.Slug == slug && item.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTaxonomyRepo) Create(_ context.Context, item *models.Taxonomy) error {
	f.nextID++
	item.ID = f.nextID
	f.items[item.ID] = *item
	return nil
}

func (f *fakeTaxonomyRepo) Update(_ context.Context, item *models.Taxonomy) error {
	if _, ok := f.items[item.ID]; !ok {
		return sql.ErrNoRows
	}
	f.items[item.ID] = *item
	return nil
}

func (f *fakeTaxonomyRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.items, id)
	return nil
}

// fakeScholarshipRepo evaluates filters in memory with the same semantics as the SQL predicate.
type fakeScholarshipRepo struct {
	rows        []models.Scholarship
	searchErr   error
	searchCalls int
	lastFilter  models.ScholarshipFilter
	created     []models.Scholarship
	updated     []models.Scholarship
	deleted     []int64
}

func (f *fakeScholarshipRepo) Search(_ context.Context, filter models.ScholarshipFilter) ([]models.Scholarship, int, error) {
	f.searchCalls++
	f.lastFilter = filter
	if f.searchErr != nil {
		return nil, 0, f.searchErr
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := []models.Scholarship{}
	for _, row := range f.rows {
		if !filter.IncludeUnpublished && !row.IsPublished {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(row.Title), search) && !strings.Contains(strings.ToLower(row.Description), search) {
			continue
		}
		if !sameID(filter.CategoryID, row.CategoryID) || !sameID(filter.CountryID, row.CountryID) || !sameID(filter.LevelID, row.LevelID) {
			continue
		}
		if filter.FullyFunded != nil && *filter.FullyFunded != row.IsFullyFunded {
			continue
		}
		matched = append(matched, row)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch filter.SortBy {
		case models.SortOldest:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		case models.SortTitle:
			if a.Title != b.Title {
				return a.Title < b.Title
			}
			return a.ID < b.ID
		case models.SortDeadline:
			switch {
			case a.Deadline == nil && b.Deadline == nil:
				return a.ID < b.ID
			case a.Deadline == nil:
				return false
			case b.Deadline == nil:
				return true
			case !a.Deadline.Equal(*b.Deadline):
				return a.Deadline.Before(*b.Deadline)
			}
			return a.ID < b.ID
		case models.SortRelevance:
			if search != "" {
				at := strings.Contains(strings.ToLower(a.Title), search)
				bt := strings.Contains(strings.ToLower(b.Title), search)
				if at != bt {
					return at
				}
			}
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	total := len(matched)
	start := filter.Offset()
	if start > total {
		start = total
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}
	return append([]models.Scholarship{}, matched[start:end]...), total, nil
}

func sameID(want, got *int64) bool {
	if want == nil {
		return true
	}
	return got != nil && *got == *want
}

func (f *fakeScholarshipRepo) FindByID(_ context.Context, id int64) (*models.Scholarship, error) {
	for _, row := range f.rows {
		if row.ID == id {
			row := row
			return &row, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeScholarshipRepo) FindBySlug(_ context.Context, slug string, publishedOnly bool) (*models.Scholarship, error) {
	for _, row := range f.rows {
		if row.Slug == slug && (row.IsPublished || !publishedOnly) {
			row := row
			return &row, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeScholarshipRepo) ExistsBySlug(_ context.Context, slug string, excludeID int64) (bool, error) {
	for _, row := range f.rows {
		if row.Slug == slug && row.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeScholarshipRepo) Create(_ context.Context, s *models.Scholarship) error {
	s.ID = int64(len(f.rows) + 1000)
	s.CreatedAt = time.Now().UTC()
	s.UpdatedAt = s.CreatedAt
	f.rows = append(f.rows, *s)
	f.created = append(f.created, *s)
	return nil
}

func (f *fakeScholarshipRepo) Update(_ context.Context, s *models.Scholarship) error {
	for i, row := range f.rows {
		if row.ID == s.ID {
			f.rows[i] = *s
			f.updated = append(f.updated, *s)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeScholarshipRepo) Delete(_ context.Context, id int64) error {
	for i, row := range f.rows {
		if row.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return sql.ErrNoRows
}

// stubCacheRepo keeps JSON payloads in memory.
type stubCacheRepo struct {
	store   map[string][]byte
	deleted []string
	getErr  error
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if s.getErr != nil {
		return s.getErr
	}
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	s.deleted = append(s.deleted, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range s.store {
		if strings.HasPrefix(key, prefix) {
			delete(s.store, key)
		}
	}
	return nil
}

// fixture is a small catalogue shared by the pipeline tests.
type fixture struct {
	categories *fakeTaxonomyRepo
	countries  *fakeTaxonomyRepo
	levels     *fakeTaxonomyRepo
	repo       *fakeScholarshipRepo
}

var baseTime = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func newFixture() *fixture {
	return &fixture{
		categories: newFakeTaxonomyRepo(models.TaxonomyCategory,
			models.Taxonomy{ID: 4, Name: "Engineering", Slug: "engineering"},
			models.Taxonomy{ID: 2, Name: "Arts", Slug: "arts"},
		),
		countries: newFakeTaxonomyRepo(models.TaxonomyCountry,
			models.Taxonomy{ID: 1, Name: "Germany", Slug: "germany"},
		),
		levels: newFakeTaxonomyRepo(models.TaxonomyLevel,
			models.Taxonomy{ID: 1, Name: "Masters", Slug: "masters"},
		),
		repo: &fakeScholarshipRepo{},
	}
}

// seed adds n published rows, created one hour apart, with ids starting at 1.
func (f *fixture) seed(n int, mutate func(i int, s *models.Scholarship)) {
	for i := 0; i < n; i++ {
		id := int64(len(f.repo.rows) + 1)
		s := models.Scholarship{
			ID:          id,
			Title:       "Scholarship",
			Slug:        fmt.Sprintf("scholarship-%d", id),
			IsPublished: true,
			CreatedAt:   baseTime.Add(time.Duration(len(f.repo.rows)) * time.Hour),
			UpdatedAt:   baseTime,
		}
		if mutate != nil {
			mutate(i, &s)
		}
		f.repo.rows = append(f.repo.rows, s)
	}
}

func (f *fixture) resolver(metrics *MetricsService) *FilterResolver {
	return NewFilterResolver(f.categories, f.countries, f.levels, FilterResolverConfig{}, metrics, nil)
}

func (f *fixture) assembler() *ScholarshipAssembler {
	return NewScholarshipAssembler(f.categories, f.countries, f.levels, "")
}

func (f *fixture) searchService(cache *CacheService, metrics *MetricsService) *ScholarshipSearchService {
	return NewScholarshipSearchService(f.resolver(metrics), f.repo, f.assembler(), cache, time.Minute, metrics, nil)
}
