package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fullsco/scholarship-api/internal/dto"
	"github.com/fullsco/scholarship-api/internal/models"
	appErrors "github.com/fullsco/scholarship-api/pkg/errors"
)

func TestTaxonomyServiceList(t *testing.T) {
	svc := NewTaxonomyService(newFixture().categories, nil, nil, nil)

	refs, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []dto.TaxonomyRef{{ID: 2, Name: "Arts", Slug: "arts"}, {ID: 4, Name: "Engineering", Slug: "engineering"}}, refs)
	assert.Equal(t, models.TaxonomyCategory, svc.Kind())
}

func TestTaxonomyServiceListFailure(t *testing.T) {
	repo := newFakeTaxonomyRepo(models.TaxonomyLevel)
	repo.listErr = errors.New("down")
	_, err := NewTaxonomyService(repo, nil, nil, nil).List(context.Background())
	assert.Equal(t, http.StatusInternalServerError, appErrors.FromError(err).Status)
}

func TestTaxonomyServiceCreateGeneratesSlug(t *testing.T) {
	repo := newFakeTaxonomyRepo(models.TaxonomyCountry)
	cacheRepo := &stubCacheRepo{}
	svc := NewTaxonomyService(repo, NewCacheService(cacheRepo, nil, time.Minute, nil, true), nil, nil)

	ref, err := svc.Create(context.Background(), dto.TaxonomyRequest{Name: "Côte d'Ivoire"})
	require.NoError(t, err)
	assert.Equal(t, "cote-d-ivoire", ref.Slug)
	assert.NotZero(t, ref.ID)
	assert.Equal(t, []string{searchCachePattern}, cacheRepo.deleted)
}

func TestTaxonomyServiceCreateConflict(t *testing.T) {
	svc := NewTaxonomyService(newFixture().categories, nil, nil, nil)
	_, err := svc.Create(context.Background(), dto.TaxonomyRequest{Name: "Engineering"})
	assert.Equal(t, http.StatusConflict, appErrors.FromError(err).Status)

	_, err = svc.Create(context.Background(), dto.TaxonomyRequest{Name: "  "})
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestTaxonomyServiceUpdate(t *testing.T) {
	f := newFixture()
	svc := NewTaxonomyService(f.categories, nil, nil, nil)

	ref, err := svc.Update(context.Background(), 4, dto.TaxonomyRequest{Name: "Engineering", Slug: "Engineering & Tech"})
	require.NoError(t, err)
	assert.Equal(t, "engineering-tech", ref.Slug)
	assert.Equal(t, "engineering-tech", f.categories.items[4].Slug)

	_, err = svc.Update(context.Background(), 999, dto.TaxonomyRequest{Name: "X"})
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestTaxonomyServiceGetAndDelete(t *testing.T) {
	svc := NewTaxonomyService(newFixture().levels, nil, nil, nil)
	ctx := context.Background()

	ref, err := svc.GetBySlug(ctx, "masters")
	require.NoError(t, err)
	assert.Equal(t, int64(1), ref.ID)

	require.NoError(t, svc.Delete(ctx, 1))
	_, err = svc.Get(ctx, 1)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "level not found", appErr.Message)
}
