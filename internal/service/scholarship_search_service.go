package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fullsco/scholarship-api/internal/dto"
	"github.com/fullsco/scholarship-api/internal/models"
	appErrors "github.com/fullsco/scholarship-api/pkg/errors"
)

// SearchView distinguishes the plain listing from the dedicated search results page.
// The only behavioural difference is the default sort order.
type SearchView string

const (
	SearchViewListing SearchView = "listing"
	SearchViewSearch  SearchView = "search"
)

// DefaultSort returns the sort used when the request does not name a valid one.
func (v SearchView) DefaultSort(search string) models.SortOrder {
	if v == SearchViewSearch && search != "" {
		return models.SortRelevance
	}
	return models.SortNewest
}

type scholarshipSearcher interface {
	Search(ctx context.Context, filter models.ScholarshipFilter) ([]models.Scholarship, int, error)
}

// ScholarshipSearchService runs the public search pipeline: resolve, query, assemble.
type ScholarshipSearchService struct {
	resolver  *FilterResolver
	repo      scholarshipSearcher
	assembler *ScholarshipAssembler
	cache     *CacheService
	cacheTTL  time.Duration
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewScholarshipSearchService wires the pipeline. cache may be nil.
func NewScholarshipSearchService(resolver *FilterResolver, repo scholarshipSearcher, assembler *ScholarshipAssembler, cache *CacheService, cacheTTL time.Duration, metrics *MetricsService, logger *zap.Logger) *ScholarshipSearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScholarshipSearchService{
		resolver:  resolver,
		repo:      repo,
		assembler: assembler,
		cache:     cache,
		cacheTTL:  cacheTTL,
		metrics:   metrics,
		logger:    logger,
	}
}

type searchCacheEntry struct {
	Items      []dto.ScholarshipView `json:"items"`
	Pagination models.Pagination     `json:"pagination"`
}

// Search returns one page of published scholarships with facets. The boolean
// reports whether the page came from cache.
func (s *ScholarshipSearchService) Search(ctx context.Context, params dto.SearchParams, view SearchView) (*dto.ScholarshipSearchResult, bool, error) {
	filter := s.resolver.Resolve(ctx, params, view.DefaultSort(strings.TrimSpace(params.Search)))
	filter.IncludeUnpublished = false

	key, keyErr := searchCacheKey("page", filter)
	if keyErr != nil {
		s.logger.Debug("search cache key unavailable", zap.Error(keyErr))
	}

	var cached searchCacheEntry
	if keyErr == nil && s.cache.Get(ctx, key, &cached) {
		facets, err := s.facets(ctx)
		if err != nil {
			return nil, false, err
		}
		if cached.Items == nil {
			cached.Items = []dto.ScholarshipView{}
		}
		s.metrics.RecordSearch(view, true, cached.Pagination.Total)
		return &dto.ScholarshipSearchResult{Items: cached.Items, Pagination: cached.Pagination, Facets: facets}, true, nil
	}

	start := time.Now()
	rows, total, err := s.repo.Search(ctx, filter)
	s.metrics.ObserveDBQuery("scholarship_search", time.Since(start))
	if err != nil {
		s.logger.Error("scholarship search failed", zap.Any("filter", filter), zap.Error(err))
		return nil, false, appErrors.Internal(err)
	}

	items, err := s.assembler.Views(ctx, rows)
	if err != nil {
		s.logger.Error("scholarship hydration failed", zap.Error(err))
		return nil, false, appErrors.Internal(err)
	}
	facets, err := s.facets(ctx)
	if err != nil {
		return nil, false, err
	}

	result := &dto.ScholarshipSearchResult{
		Items:      items,
		Pagination: models.NewPagination(total, filter.Page, filter.PageSize),
		Facets:     facets,
	}
	if keyErr == nil {
		s.cache.Set(ctx, key, searchCacheEntry{Items: result.Items, Pagination: result.Pagination}, s.cacheTTL)
	}
	s.metrics.RecordSearch(view, false, total)
	return result, false, nil
}

// Facets returns the filter option lists.
func (s *ScholarshipSearchService) Facets(ctx context.Context) (dto.SearchFacets, error) {
	return s.facets(ctx)
}

func (s *ScholarshipSearchService) facets(ctx context.Context) (dto.SearchFacets, error) {
	var facets dto.SearchFacets
	if s.cache.Get(ctx, facetsCacheKey, &facets) {
		return facets, nil
	}
	start := time.Now()
	facets, err := s.assembler.Facets(ctx)
	s.metrics.ObserveDBQuery("search_facets", time.Since(start))
	if err != nil {
		s.logger.Error("facet lookup failed", zap.Error(err))
		return dto.SearchFacets{}, appErrors.Internal(err)
	}
	s.cache.Set(ctx, facetsCacheKey, facets, s.cacheTTL)
	return facets, nil
}
