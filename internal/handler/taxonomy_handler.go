package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fullsco/scholarship-api/internal/dto"
	"github.com/fullsco/scholarship-api/internal/models"
	appErrors "github.com/fullsco/scholarship-api/pkg/errors"
	"github.com/fullsco/scholarship-api/pkg/response"
)

type taxonomyService interface {
	Kind() models.TaxonomyKind
	List(ctx context.Context) ([]dto.TaxonomyRef, error)
	Get(ctx context.Context, id int64) (*dto.TaxonomyRef, error)
	Create(ctx context.Context, req dto.TaxonomyRequest) (*dto.TaxonomyRef, error)
	Update(ctx context.Context, id int64, req dto.TaxonomyRequest) (*dto.TaxonomyRef, error)
	Delete(ctx context.Context, id int64) error
}

// TaxonomyHandler serves one of categories, countries or levels. It is mounted
// once per taxonomy.
type TaxonomyHandler struct {
	service taxonomyService
}

// NewTaxonomyHandler constructs the handler.
func NewTaxonomyHandler(service taxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{service: service}
}

// List godoc
// @Summary List categories, countries or levels
// @Tags Taxonomies
// @Produce json
// @Success 200 {object} response.Envelope{data=[]dto.TaxonomyRef}
// @Router /categories [get]
// @Router /countries [get]
// @Router /levels [get]
func (h *TaxonomyHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get a taxonomy entry
// @Tags Admin Taxonomies
// @Security BearerAuth
// @Produce json
// @Param id path int true "Entry ID"
// @Success 200 {object} response.Envelope{data=dto.TaxonomyRef}
// @Router /admin/categories/{id} [get]
func (h *TaxonomyHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Create a taxonomy entry
// @Tags Admin Taxonomies
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body dto.TaxonomyRequest true "Entry payload"
// @Success 201 {object} response.Envelope{data=dto.TaxonomyRef}
// @Router /admin/categories [post]
func (h *TaxonomyHandler) Create(c *gin.Context) {
	var req dto.TaxonomyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid "+string(h.service.Kind())+" payload"))
		return
	}
	item, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Rename a taxonomy entry
// @Tags Admin Taxonomies
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Entry ID"
// @Param payload body dto.TaxonomyRequest true "Entry payload"
// @Success 200 {object} response.Envelope{data=dto.TaxonomyRef}
// @Router /admin/categories/{id} [put]
func (h *TaxonomyHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.TaxonomyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid "+string(h.service.Kind())+" payload"))
		return
	}
	item, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete a taxonomy entry
// @Tags Admin Taxonomies
// @Security BearerAuth
// @Param id path int true "Entry ID"
// @Success 204
// @Router /admin/categories/{id} [delete]
func (h *TaxonomyHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
