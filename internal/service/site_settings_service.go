package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fullsco/scholarship-api/internal/dto"
	"github.com/fullsco/scholarship-api/internal/models"
	appErrors "github.com/fullsco/scholarship-api/pkg/errors"
	"github.com/fullsco/scholarship-api/pkg/theme"
)

type siteSettingsRepository interface {
	List(ctx context.Context) ([]models.SiteSetting, error)
	BulkUpsert(ctx context.Context, settings []models.SiteSetting) error
}

type settingKind int

const (
	settingText settingKind = iota
	settingColor
	settingURL
)

// allowedSiteSettings whitelists editable keys.
var allowedSiteSettings = map[string]settingKind{
	"site_name":        settingText,
	"site_description": settingText,
	"contact_email":    settingText,
	"logo_url":         settingURL,
	"favicon_url":      settingURL,
	"primary_color":    settingColor,
	"secondary_color":  settingColor,
	"accent_color":     settingColor,
}

// themeVariables maps colour settings to the CSS custom properties the frontend reads.
var themeVariables = map[string]string{
	"primary_color":   "--primary",
	"secondary_color": "--secondary",
	"accent_color":    "--accent",
}

// SiteSettingsService exposes the public site configuration and its derived theme.
type SiteSettingsService struct {
	repo      siteSettingsRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSiteSettingsService constructs the service.
func NewSiteSettingsService(repo siteSettingsRepository, validate *validator.Validate, logger *zap.Logger) *SiteSettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SiteSettingsService{repo: repo, validator: validate, logger: logger}
}

// Get returns every stored setting plus the computed theme variables.
func (s *SiteSettingsService) Get(ctx context.Context) (*dto.SiteSettingsResponse, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load site settings")
	}
	settings := make(map[string]string, len(rows))
	for _, row := range rows {
		settings[row.Key] = row.Value
	}
	return &dto.SiteSettingsResponse{Settings: settings, Theme: Theme(settings)}, nil
}

// BulkUpdate validates and stores several settings in one transaction.
func (s *SiteSettingsService) BulkUpdate(ctx context.Context, req dto.BulkUpdateSiteSettingsRequest, actor *models.JWTClaims) (*dto.SiteSettingsResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settings payload")
	}

	var updatedBy *string
	if actor != nil && actor.UserID != "" {
		id := actor.UserID
		updatedBy = &id
	}

	seen := make(map[string]struct{}, len(req.Items))
	items := make([]models.SiteSetting, 0, len(req.Items))
	for _, item := range req.Items {
		key := strings.TrimSpace(item.Key)
		value, err := normalizeSetting(key, item.Value)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[key]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate setting %q", key))
		}
		seen[key] = struct{}{}
		items = append(items, models.SiteSetting{Key: key, Value: value, UpdatedBy: updatedBy})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })

	if err := s.repo.BulkUpsert(ctx, items); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update site settings")
	}
	s.logger.Info("site settings updated", zap.Int("count", len(items)))
	return s.Get(ctx)
}

// Theme computes the CSS variables for the colour settings present in settings.
func Theme(settings map[string]string) map[string]string {
	return theme.Variables(settings, themeVariables)
}

func normalizeSetting(key, value string) (string, error) {
	kind, ok := allowedSiteSettings[key]
	if !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown setting %q", key))
	}
	value = strings.TrimSpace(value)
	switch kind {
	case settingColor:
		if _, err := theme.HexToHSL(value); err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("%s must be a hex colour", key))
		}
		return strings.ToLower(value), nil
	case settingURL:
		if value != "" && !strings.HasPrefix(value, "/") && !strings.HasPrefix(value, "https://") && !strings.HasPrefix(value, "http://") {
			return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be an absolute path or http(s) URL", key))
		}
	}
	return value, nil
}
