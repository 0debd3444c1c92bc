package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fullsco/scholarship-api/internal/dto"
	"github.com/fullsco/scholarship-api/internal/middleware"
	"github.com/fullsco/scholarship-api/internal/models"
	"github.com/fullsco/scholarship-api/internal/service"
	appErrors "github.com/fullsco/scholarship-api/pkg/errors"
	"github.com/fullsco/scholarship-api/pkg/export"
	"github.com/fullsco/scholarship-api/pkg/response"
)

type scholarshipSearchService interface {
	Search(ctx context.Context, params dto.SearchParams, view service.SearchView) (*dto.ScholarshipSearchResult, bool, error)
}

type scholarshipService interface {
	GetBySlug(ctx context.Context, slug string) (*dto.ScholarshipView, error)
	List(ctx context.Context, params dto.SearchParams) (*dto.ScholarshipSearchResult, error)
	Get(ctx context.Context, id int64) (*models.Scholarship, error)
	Create(ctx context.Context, req dto.ScholarshipRequest) (*models.Scholarship, error)
	Update(ctx context.Context, id int64, req dto.ScholarshipRequest) (*models.Scholarship, error)
	Delete(ctx context.Context, id int64) error
	Export(ctx context.Context, params dto.SearchParams, format export.Format) (*service.ExportFile, error)
}

// ScholarshipHandler exposes public search and admin scholarship endpoints.
type ScholarshipHandler struct {
	search       scholarshipSearchService
	scholarships scholarshipService
}

// NewScholarshipHandler constructs the handler.
func NewScholarshipHandler(search scholarshipSearchService, scholarships scholarshipService) *ScholarshipHandler {
	return &ScholarshipHandler{search: search, scholarships: scholarships}
}

// List godoc
// @Summary List published scholarships
// @Tags Scholarships
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size (alias: limit)"
// @Param search query string false "Free-text search over title and description"
// @Param category query string false "Category slug"
// @Param country query string false "Country slug"
// @Param level query string false "Level slug"
// @Param fundingType query string false "fully-funded or partial"
// @Param sortBy query string false "newest, oldest, deadline, title or relevance"
// @Success 200 {object} response.Envelope{data=dto.ScholarshipSearchResult}
// @Router /scholarships [get]
func (h *ScholarshipHandler) List(c *gin.Context) {
	h.runSearch(c, service.SearchViewListing)
}

// Search godoc
// @Summary Search published scholarships
// @Description Same filters as the listing; defaults to relevance ordering when a search term is given.
// @Tags Scholarships
// @Produce json
// @Param search query string false "Free-text search"
// @Success 200 {object} response.Envelope{data=dto.ScholarshipSearchResult}
// @Router /scholarships/search [get]
func (h *ScholarshipHandler) Search(c *gin.Context) {
	h.runSearch(c, service.SearchViewSearch)
}

func (h *ScholarshipHandler) runSearch(c *gin.Context, view service.SearchView) {
	result, cacheHit, err := h.search.Search(c.Request.Context(), searchParamsFromQuery(c), view)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// GetBySlug godoc
// @Summary Get a published scholarship
// @Tags Scholarships
// @Produce json
// @Param slug path string true "Scholarship slug"
// @Success 200 {object} response.Envelope{data=dto.ScholarshipView}
// @Failure 404 {object} response.Envelope
// @Router /scholarships/{slug} [get]
func (h *ScholarshipHandler) GetBySlug(c *gin.Context) {
	view, err := h.scholarships.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// AdminList godoc
// @Summary List scholarships including drafts
// @Tags Admin Scholarships
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.ScholarshipSearchResult}
// @Router /admin/scholarships [get]
func (h *ScholarshipHandler) AdminList(c *gin.Context) {
	result, err := h.scholarships.List(c.Request.Context(), searchParamsFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// AdminGet godoc
// @Summary Get a scholarship by id
// @Tags Admin Scholarships
// @Security BearerAuth
// @Produce json
// @Param id path int true "Scholarship ID"
// @Success 200 {object} response.Envelope{data=models.Scholarship}
// @Router /admin/scholarships/{id} [get]
func (h *ScholarshipHandler) AdminGet(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.scholarships.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Create a scholarship
// @Tags Admin Scholarships
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body dto.ScholarshipRequest true "Scholarship payload"
// @Success 201 {object} response.Envelope{data=models.Scholarship}
// @Failure 409 {object} response.Envelope
// @Router /admin/scholarships [post]
func (h *ScholarshipHandler) Create(c *gin.Context) {
	var req dto.ScholarshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid scholarship payload"))
		return
	}
	item, err := h.scholarships.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Replace a scholarship
// @Tags Admin Scholarships
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Scholarship ID"
// @Param payload body dto.ScholarshipRequest true "Scholarship payload"
// @Success 200 {object} response.Envelope{data=models.Scholarship}
// @Router /admin/scholarships/{id} [put]
func (h *ScholarshipHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ScholarshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid scholarship payload"))
		return
	}
	item, err := h.scholarships.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete a scholarship
// @Tags Admin Scholarships
// @Security BearerAuth
// @Param id path int true "Scholarship ID"
// @Success 204
// @Router /admin/scholarships/{id} [delete]
func (h *ScholarshipHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.scholarships.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export scholarships
// @Description Renders every scholarship matching the listing filters, drafts included.
// @Tags Admin Scholarships
// @Security BearerAuth
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /admin/scholarships/export [get]
func (h *ScholarshipHandler) Export(c *gin.Context) {
	file, err := h.scholarships.Export(c.Request.Context(), searchParamsFromQuery(c), export.Format(c.DefaultQuery("format", string(export.FormatCSV))))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.FileName))
	c.Header("Cache-Control", "no-store")
	c.Header("X-Export-Rows", strconv.Itoa(file.Rows))
	c.Data(http.StatusOK, file.ContentType, file.Body)
}

// searchParamsFromQuery copies the raw listing parameters. pageSize wins over its limit alias.
func searchParamsFromQuery(c *gin.Context) dto.SearchParams {
	pageSize := c.Query("pageSize")
	if pageSize == "" {
		pageSize = c.Query("limit")
	}
	return dto.SearchParams{
		Page:        c.Query("page"),
		PageSize:    pageSize,
		Search:      c.Query("search"),
		Category:    c.Query("category"),
		Country:     c.Query("country"),
		Level:       c.Query("level"),
		FundingType: c.Query("fundingType"),
		SortBy:      c.Query("sortBy"),
	}
}

func idParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "id must be a positive integer")
	}
	return id, nil
}
