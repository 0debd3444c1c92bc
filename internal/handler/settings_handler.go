package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fullsco/scholarship-api/internal/dto"
	"github.com/fullsco/scholarship-api/internal/middleware"
	"github.com/fullsco/scholarship-api/internal/models"
	appErrors "github.com/fullsco/scholarship-api/pkg/errors"
	"github.com/fullsco/scholarship-api/pkg/response"
)

type siteSettingsService interface {
	Get(ctx context.Context) (*dto.SiteSettingsResponse, error)
	BulkUpdate(ctx context.Context, req dto.BulkUpdateSiteSettingsRequest, actor *models.JWTClaims) (*dto.SiteSettingsResponse, error)
}

// SettingsHandler exposes site settings and the derived theme.
type SettingsHandler struct {
	service siteSettingsService
}

// NewSettingsHandler builds a new handler.
func NewSettingsHandler(service siteSettingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// Get godoc
// @Summary Get site settings and theme variables
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.SiteSettingsResponse}
// @Router /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.service.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// Update godoc
// @Summary Update site settings
// @Tags Settings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body dto.BulkUpdateSiteSettingsRequest true "Settings payload"
// @Success 200 {object} response.Envelope{data=dto.SiteSettingsResponse}
// @Router /admin/settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.BulkUpdateSiteSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid settings payload"))
		return
	}
	settings, err := h.service.BulkUpdate(c.Request.Context(), req, middleware.ClaimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}
