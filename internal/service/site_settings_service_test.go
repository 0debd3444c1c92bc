package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fullsco/scholarship-api/internal/dto"
	"github.com/fullsco/scholarship-api/internal/models"
	appErrors "github.com/fullsco/scholarship-api/pkg/errors"
)

type fakeSiteSettingsRepo struct {
	settings  map[string]models.SiteSetting
	upserted  []models.SiteSetting
	upsertErr error
}

func (f *fakeSiteSettingsRepo) List(context.Context) ([]models.SiteSetting, error) {
	out := make([]models.SiteSetting, 0, len(f.settings))
	for _, s := range f.settings {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSiteSettingsRepo) BulkUpsert(_ context.Context, settings []models.SiteSetting) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if f.settings == nil {
		f.settings = map[string]models.SiteSetting{}
	}
	for _, s := range settings {
		f.settings[s.Key] = s
	}
	f.upserted = append(f.upserted, settings...)
	return nil
}

func TestSiteSettingsServiceGetComputesTheme(t *testing.T) {
	repo := &fakeSiteSettingsRepo{settings: map[string]models.SiteSetting{
		"site_name":     {Key: "site_name", Value: "FULLSCO"},
		"primary_color": {Key: "primary_color", Value: "#2563eb"},
		"accent_color":  {Key: "accent_color", Value: "not-a-colour"},
	}}
	svc := NewSiteSettingsService(repo, nil, nil)

	resp, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "FULLSCO", resp.Settings["site_name"])
	assert.Equal(t, map[string]string{"--primary": "221 83% 53%"}, resp.Theme)
}

func TestSiteSettingsServiceBulkUpdate(t *testing.T) {
	repo := &fakeSiteSettingsRepo{}
	svc := NewSiteSettingsService(repo, nil, nil)

	resp, err := svc.BulkUpdate(context.Background(), dto.BulkUpdateSiteSettingsRequest{Items: []dto.UpdateSiteSettingRequest{
		{Key: "secondary_color", Value: " #0F172A "},
		{Key: "site_name", Value: "Fullsco"},
	}}, &models.JWTClaims{UserID: "admin-1"})
	require.NoError(t, err)

	require.Len(t, repo.upserted, 2)
	assert.Equal(t, "secondary_color", repo.upserted[0].Key)
	assert.Equal(t, "#0f172a", repo.upserted[0].Value)
	require.NotNil(t, repo.upserted[0].UpdatedBy)
	assert.Equal(t, "admin-1", *repo.upserted[0].UpdatedBy)
	assert.Equal(t, "222 47% 11%", resp.Theme["--secondary"])
}

func TestSiteSettingsServiceBulkUpdateRejects(t *testing.T) {
	svc := NewSiteSettingsService(&fakeSiteSettingsRepo{}, nil, nil)
	ctx := context.Background()

	cases := map[string][]dto.UpdateSiteSettingRequest{
		"empty":         nil,
		"unknown key":   {{Key: "theme_css", Value: "body{}"}},
		"bad colour":    {{Key: "primary_color", Value: "blue"}},
		"bad url":       {{Key: "logo_url", Value: "javascript:alert(1)"}},
		"duplicate key": {{Key: "site_name", Value: "a"}, {Key: "site_name", Value: "b"}},
	}
	for name, items := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.BulkUpdate(ctx, dto.BulkUpdateSiteSettingsRequest{Items: items}, nil)
			assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
		})
	}
}

func TestSiteSettingsServiceBulkUpdateStorageFailure(t *testing.T) {
	svc := NewSiteSettingsService(&fakeSiteSettingsRepo{upsertErr: errors.New("tx aborted")}, nil, nil)
	_, err := svc.BulkUpdate(context.Background(), dto.BulkUpdateSiteSettingsRequest{Items: []dto.UpdateSiteSettingRequest{{Key: "site_name", Value: "x"}}}, nil)
	assert.Equal(t, http.StatusInternalServerError, appErrors.FromError(err).Status)
}
