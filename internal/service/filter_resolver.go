package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/fullsco/scholarship-api/internal/dto"
	"github.com/fullsco/scholarship-api/internal/models"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	// maxPage keeps (page-1)*pageSize inside a bigint OFFSET. Pages past
	// the data come back empty.
	maxPage = math.MaxInt32
)

type taxonomySlugFinder interface {
	FindBySlug(ctx context.Context, slug string) (*models.Taxonomy, error)
}

// FilterResolverConfig bounds pagination input.
type FilterResolverConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// FilterResolver turns raw query parameters into a normalized ScholarshipFilter.
// It never fails: malformed input falls back to the most permissive reading.
type FilterResolver struct {
	finders         map[models.TaxonomyKind]taxonomySlugFinder
	defaultPageSize int
	maxPageSize     int
	metrics         *MetricsService
	logger          *zap.Logger
}

// NewFilterResolver constructs a resolver over the three taxonomy lookups.
func NewFilterResolver(categories, countries, levels taxonomySlugFinder, cfg FilterResolverConfig, metrics *MetricsService, logger *zap.Logger) *FilterResolver {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = defaultPageSize
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = maxPageSize
	}
	if cfg.DefaultPageSize > cfg.MaxPageSize {
		cfg.DefaultPageSize = cfg.MaxPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FilterResolver{
		finders: map[models.TaxonomyKind]taxonomySlugFinder{
			models.TaxonomyCategory: categories,
			models.TaxonomyCountry:  countries,
			models.TaxonomyLevel:    levels,
		},
		defaultPageSize: cfg.DefaultPageSize,
		maxPageSize:     cfg.MaxPageSize,
		metrics:         metrics,
		logger:          logger,
	}
}

// Resolve normalizes params. defaultSort applies when sortBy is absent or unknown.
func (r *FilterResolver) Resolve(ctx context.Context, params dto.SearchParams, defaultSort models.SortOrder) models.ScholarshipFilter {
	filter := models.ScholarshipFilter{
		Search:   strings.TrimSpace(params.Search),
		Page:     parsePositive(params.Page, 1),
		PageSize: parsePositive(params.PageSize, r.defaultPageSize),
		SortBy:   defaultSort,
	}
	if filter.PageSize > r.maxPageSize {
		filter.PageSize = r.maxPageSize
	}
	if filter.Page > maxPage {
		filter.Page = maxPage
	}
	if sortBy, ok := models.ParseSortOrder(strings.TrimSpace(params.SortBy)); ok {
		filter.SortBy = sortBy
	}
	if filter.SortBy == "" {
		filter.SortBy = models.SortNewest
	}

	filter.CategoryID = r.lookup(ctx, models.TaxonomyCategory, params.Category)
	filter.CountryID = r.lookup(ctx, models.TaxonomyCountry, params.Country)
	filter.LevelID = r.lookup(ctx, models.TaxonomyLevel, params.Level)

	switch strings.TrimSpace(params.FundingType) {
	case models.FundingFullyFunded:
		v := true
		filter.FullyFunded = &v
	case models.FundingPartial:
		v := false
		filter.FullyFunded = &v
	}

	return filter
}

// lookup returns the id for slug or nil when the dimension should be dropped.
func (r *FilterResolver) lookup(ctx context.Context, kind models.TaxonomyKind, slug string) *int64 {
	slug = strings.TrimSpace(slug)
	finder := r.finders[kind]
	if slug == "" || finder == nil {
		return nil
	}
	item, err := finder.FindBySlug(ctx, slug)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			r.metrics.RecordFilterLookupFailure(kind)
			r.logger.Warn("filter lookup failed, dropping dimension",
				zap.String("dimension", string(kind)),
				zap.String("slug", slug),
				zap.Error(err),
			)
		}
		return nil
	}
	if item == nil {
		return nil
	}
	id := item.ID
	return &id
}

func parsePositive(raw string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	if v < 1 {
		return fallback
	}
	return v
}
