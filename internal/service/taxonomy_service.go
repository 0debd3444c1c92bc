package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fullsco/scholarship-api/internal/dto"
	"github.com/fullsco/scholarship-api/internal/models"
	appErrors "github.com/fullsco/scholarship-api/pkg/errors"
	"github.com/fullsco/scholarship-api/pkg/slug"
)

type taxonomyRepository interface {
	Kind() models.TaxonomyKind
	List(ctx context.Context) ([]models.Taxonomy, error)
	FindByID(ctx context.Context, id int64) (*models.Taxonomy, error)
	FindBySlug(ctx context.Context, slug string) (*models.Taxonomy, error)
	ExistsBySlug(ctx context.Context, slug string, excludeID int64) (bool, error)
	Create(ctx context.Context, item *models.Taxonomy) error
	Update(ctx context.Context, item *models.Taxonomy) error
	Delete(ctx context.Context, id int64) error
}

// TaxonomyService manages one taxonomy (categories, countries or levels).
type TaxonomyService struct {
	repo      taxonomyRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTaxonomyService constructs the taxonomy service.
func NewTaxonomyService(repo taxonomyRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *TaxonomyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaxonomyService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Kind returns the managed taxonomy.
func (s *TaxonomyService) Kind() models.TaxonomyKind {
	return s.repo.Kind()
}

// List returns all entries ordered by name.
func (s *TaxonomyService) List(ctx context.Context) ([]dto.TaxonomyRef, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list "+s.repo.Kind().Table())
	}
	refs := make([]dto.TaxonomyRef, 0, len(items))
	for _, item := range items {
		refs = append(refs, toRef(item))
	}
	return refs, nil
}

// Get returns an entry by id.
func (s *TaxonomyService) Get(ctx context.Context, id int64) (*dto.TaxonomyRef, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.loadError(err)
	}
	ref := toRef(*item)
	return &ref, nil
}

// GetBySlug returns an entry by slug.
func (s *TaxonomyService) GetBySlug(ctx context.Context, value string) (*dto.TaxonomyRef, error) {
	item, err := s.repo.FindBySlug(ctx, strings.TrimSpace(value))
	if err != nil {
		return nil, s.loadError(err)
	}
	ref := toRef(*item)
	return &ref, nil
}

// Create adds an entry. The slug is derived from the name when omitted.
func (s *TaxonomyService) Create(ctx context.Context, req dto.TaxonomyRequest) (*dto.TaxonomyRef, error) {
	item, err := s.prepare(ctx, req, 0)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create "+string(s.repo.Kind()))
	}
	s.cache.InvalidateSearch(ctx)
	ref := toRef(*item)
	return &ref, nil
}

// Update renames an entry.
func (s *TaxonomyService) Update(ctx context.Context, id int64, req dto.TaxonomyRequest) (*dto.TaxonomyRef, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, s.loadError(err)
	}
	item, err := s.prepare(ctx, req, id)
	if err != nil {
		return nil, err
	}
	item.ID = id
	if err := s.repo.Update(ctx, item); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.notFound()
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update "+string(s.repo.Kind()))
	}
	s.cache.InvalidateSearch(ctx)
	ref := toRef(*item)
	return &ref, nil
}

// Delete removes an entry. Scholarships that referenced it keep existing with a null reference.
func (s *TaxonomyService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.notFound()
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete "+string(s.repo.Kind()))
	}
	s.cache.InvalidateSearch(ctx)
	return nil
}

func (s *TaxonomyService) prepare(ctx context.Context, req dto.TaxonomyRequest, excludeID int64) (*models.Taxonomy, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid "+string(s.repo.Kind())+" payload")
	}
	value := req.Slug
	if strings.TrimSpace(value) == "" {
		value = req.Name
	}
	value = slug.Make(value)
	if value == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slug must contain letters or digits")
	}
	exists, err := s.repo.ExistsBySlug(ctx, value, excludeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate slug")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "slug already used")
	}
	return &models.Taxonomy{Name: req.Name, Slug: value}, nil
}

func (s *TaxonomyService) loadError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return s.notFound()
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+string(s.repo.Kind()))
}

func (s *TaxonomyService) notFound() error {
	return appErrors.Clone(appErrors.ErrNotFound, string(s.repo.Kind())+" not found")
}
