package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/fullsco/scholarship-api/internal/dto"
	"github.com/fullsco/scholarship-api/internal/models"
	appErrors "github.com/fullsco/scholarship-api/pkg/errors"
	"github.com/fullsco/scholarship-api/pkg/export"
	"github.com/fullsco/scholarship-api/pkg/slug"
)

const deadlineLayout = "2006-01-02"

type scholarshipStore interface {
	scholarshipSearcher
	FindByID(ctx context.Context, id int64) (*models.Scholarship, error)
	FindBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.Scholarship, error)
	ExistsBySlug(ctx context.Context, slug string, excludeID int64) (bool, error)
	Create(ctx context.Context, s *models.Scholarship) error
	Update(ctx context.Context, s *models.Scholarship) error
	Delete(ctx context.Context, id int64) error
}

type taxonomyIDReader interface {
	FindByID(ctx context.Context, id int64) (*models.Taxonomy, error)
}

// ScholarshipServiceConfig tunes the admin workflows.
type ScholarshipServiceConfig struct {
	ExportMaxRows int
}

// ExportFile is a rendered export ready to be streamed.
type ExportFile struct {
	FileName    string
	ContentType string
	Body        []byte
	Rows        int
}

// ScholarshipService covers scholarship detail pages and administration.
type ScholarshipService struct {
	repo          scholarshipStore
	resolver      *FilterResolver
	assembler     *ScholarshipAssembler
	references    map[models.TaxonomyKind]taxonomyIDReader
	cache         *CacheService
	sanitizer     *bluemonday.Policy
	validator     *validator.Validate
	logger        *zap.Logger
	exportMaxRows int
}

// NewScholarshipService constructs the scholarship service.
func NewScholarshipService(
	repo scholarshipStore,
	resolver *FilterResolver,
	assembler *ScholarshipAssembler,
	categories, countries, levels taxonomyIDReader,
	cache *CacheService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ScholarshipServiceConfig,
) *ScholarshipService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ExportMaxRows <= 0 {
		cfg.ExportMaxRows = 5000
	}
	return &ScholarshipService{
		repo:      repo,
		resolver:  resolver,
		assembler: assembler,
		references: map[models.TaxonomyKind]taxonomyIDReader{
			models.TaxonomyCategory: categories,
			models.TaxonomyCountry:  countries,
			models.TaxonomyLevel:    levels,
		},
		cache:         cache,
		sanitizer:     bluemonday.UGCPolicy(),
		validator:     validate,
		logger:        logger,
		exportMaxRows: cfg.ExportMaxRows,
	}
}

// GetBySlug returns a published scholarship as a public view.
func (s *ScholarshipService) GetBySlug(ctx context.Context, value string) (*dto.ScholarshipView, error) {
	row, err := s.repo.FindBySlug(ctx, strings.TrimSpace(value), true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "scholarship not found")
		}
		s.logger.Error("load scholarship by slug failed", zap.String("slug", value), zap.Error(err))
		return nil, appErrors.Internal(err)
	}
	view, err := s.assembler.View(ctx, *row)
	if err != nil {
		s.logger.Error("hydrate scholarship failed", zap.Int64("id", row.ID), zap.Error(err))
		return nil, appErrors.Internal(err)
	}
	return view, nil
}

// List returns a page of scholarships including drafts, filtered like the public search.
func (s *ScholarshipService) List(ctx context.Context, params dto.SearchParams) (*dto.ScholarshipSearchResult, error) {
	filter := s.resolver.Resolve(ctx, params, models.SortNewest)
	filter.IncludeUnpublished = true
	rows, total, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list scholarships")
	}
	result, err := s.assembler.Assemble(ctx, rows, total, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list scholarships")
	}
	return result, nil
}

// Get returns the stored scholarship regardless of publication.
func (s *ScholarshipService) Get(ctx context.Context, id int64) (*models.Scholarship, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "scholarship not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scholarship")
	}
	return row, nil
}

// Create stores a new scholarship.
func (s *ScholarshipService) Create(ctx context.Context, req dto.ScholarshipRequest) (*models.Scholarship, error) {
	row := &models.Scholarship{}
	if err := s.apply(ctx, row, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create scholarship")
	}
	s.cache.InvalidateSearch(ctx)
	s.logger.Info("scholarship created", zap.Int64("id", row.ID), zap.String("slug", row.Slug))
	return row, nil
}

// Update replaces every editable field of a scholarship.
func (s *ScholarshipService) Update(ctx context.Context, id int64, req dto.ScholarshipRequest) (*models.Scholarship, error) {
	row, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, row, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "scholarship not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update scholarship")
	}
	s.cache.InvalidateSearch(ctx)
	return row, nil
}

// Delete removes a scholarship.
func (s *ScholarshipService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "scholarship not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete scholarship")
	}
	s.cache.InvalidateSearch(ctx)
	s.logger.Info("scholarship deleted", zap.Int64("id", id))
	return nil
}

// Export renders every scholarship matching params, drafts included, up to the configured row limit.
func (s *ScholarshipService) Export(ctx context.Context, params dto.SearchParams, format export.Format) (*ExportFile, error) {
	renderer, err := export.RendererFor(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv or pdf")
	}

	filter := s.resolver.Resolve(ctx, params, models.SortNewest)
	filter.IncludeUnpublished = true
	filter.Page = 1
	filter.PageSize = s.exportMaxRows

	rows, total, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to export scholarships")
	}
	views, err := s.assembler.Views(ctx, rows)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to export scholarships")
	}
	if total > len(rows) {
		s.logger.Warn("scholarship export truncated", zap.Int("total", total), zap.Int("limit", s.exportMaxRows))
	}

	body, err := renderer.Render(scholarshipDataset(views, rows))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{
		FileName:    fmt.Sprintf("scholarships-%s.%s", time.Now().UTC().Format("20060102-150405"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
		Rows:        len(rows),
	}, nil
}

// apply validates req and copies it onto row.
func (s *ScholarshipService) apply(ctx context.Context, row *models.Scholarship, req dto.ScholarshipRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scholarship payload")
	}

	source := req.Slug
	if strings.TrimSpace(source) == "" {
		source = req.Title
	}
	value := slug.Make(source)
	if value == "" {
		return appErrors.Clone(appErrors.ErrValidation, "slug must contain letters or digits")
	}
	exists, err := s.repo.ExistsBySlug(ctx, value, row.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate slug")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "slug already used")
	}

	if err := s.checkReference(ctx, models.TaxonomyCategory, req.CategoryID); err != nil {
		return err
	}
	if err := s.checkReference(ctx, models.TaxonomyCountry, req.CountryID); err != nil {
		return err
	}
	if err := s.checkReference(ctx, models.TaxonomyLevel, req.LevelID); err != nil {
		return err
	}

	var deadline *time.Time
	if req.Deadline != nil && *req.Deadline != "" {
		parsed, err := time.ParseInLocation(deadlineLayout, *req.Deadline, time.UTC)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "deadline must be YYYY-MM-DD")
		}
		deadline = &parsed
	}

	row.Title = req.Title
	row.Slug = value
	row.Description = strings.TrimSpace(req.Description)
	row.Content = s.sanitizer.Sanitize(req.Content)
	row.Amount = strings.TrimSpace(req.Amount)
	row.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	row.University = strings.TrimSpace(req.University)
	row.Department = strings.TrimSpace(req.Department)
	row.IsFeatured = req.IsFeatured
	row.IsFullyFunded = req.IsFullyFunded
	row.ImageURL = strings.TrimSpace(req.ImageURL)
	row.Deadline = deadline
	row.CategoryID = req.CategoryID
	row.CountryID = req.CountryID
	row.LevelID = req.LevelID
	row.IsPublished = req.IsPublished
	return nil
}

func (s *ScholarshipService) checkReference(ctx context.Context, kind models.TaxonomyKind, id *int64) error {
	if id == nil {
		return nil
	}
	reader := s.references[kind]
	if reader == nil {
		return nil
	}
	if _, err := reader.FindByID(ctx, *id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s %d does not exist", kind, *id))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate "+string(kind))
	}
	return nil
}

func scholarshipDataset(views []dto.ScholarshipView, rows []models.Scholarship) export.Dataset {
	data := export.Dataset{
		Title:   "Scholarships",
		Headers: []string{"ID", "Title", "Slug", "University", "Category", "Country", "Level", "Funding", "Amount", "Deadline", "Published"},
		Rows:    make([][]string, 0, len(views)),
	}
	for i, v := range views {
		funding := models.FundingPartial
		if v.IsFullyFunded {
			funding = models.FundingFullyFunded
		}
		deadline := ""
		if rows[i].Deadline != nil {
			deadline = rows[i].Deadline.UTC().Format(deadlineLayout)
		}
		amount := strings.TrimSpace(strings.Join([]string{v.Amount, v.Currency}, " "))
		data.Rows = append(data.Rows, []string{
			strconv.FormatInt(v.ID, 10),
			v.Title,
			v.Slug,
			v.University,
			refName(v.Category),
			refName(v.Country),
			refName(v.Level),
			funding,
			amount,
			deadline,
			strconv.FormatBool(rows[i].IsPublished),
		})
	}
	return data
}

func refName(ref *dto.TaxonomyRef) string {
	if ref == nil {
		return ""
	}
	return ref.Name
}
