package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fullsco/scholarship-api/internal/models"
)

func TestAssemblerViewsBatchHydration(t *testing.T) {
	f := newFixture()
	rows := []models.Scholarship{
		{ID: 1, CategoryID: int64Ptr(4), CountryID: int64Ptr(1)},
		{ID: 2, CategoryID: int64Ptr(4), CountryID: int64Ptr(99)},
		{ID: 3, CategoryID: int64Ptr(2)},
	}

	views, err := f.assembler().Views(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, views, 3)

	assert.Equal(t, 1, f.categories.batchCalls)
	assert.ElementsMatch(t, []int64{4, 2}, f.categories.lastBatch)
	assert.Equal(t, 1, f.countries.batchCalls)
	assert.Zero(t, f.levels.batchCalls)

	require.NotNil(t, views[0].Category)
	assert.Equal(t, "Engineering", views[0].Category.Name)
	assert.Equal(t, "germany", views[0].Country.Slug)
	assert.Nil(t, views[1].Country, "dangling country reference renders as null")
	assert.Equal(t, int64(2), views[1].ID)
	assert.Nil(t, views[2].Country)
	assert.Nil(t, views[2].Level)
}

func TestAssemblerThumbnailAndDates(t *testing.T) {
	f := newFixture()
	jakarta := time.FixedZone("WIB", 7*3600)
	deadline := time.Date(2025, 1, 31, 23, 59, 0, 0, jakarta)
	rows := []models.Scholarship{
		{ID: 1, ImageURL: "https://cdn.example.com/a.jpg", CreatedAt: time.Date(2024, 5, 6, 7, 8, 9, 123456789, time.UTC), Deadline: &deadline},
		{ID: 2, ImageURL: "   "},
	}

	views, err := f.assembler().Views(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/a.jpg", views[0].ThumbnailURL)
	assert.Equal(t, "/images/scholarship-placeholder.jpg", views[1].ThumbnailURL)
	assert.Equal(t, "2024-05-06T07:08:09.123Z", views[0].CreatedAt)
	require.NotNil(t, views[0].Deadline)
	assert.Equal(t, "2025-01-31T16:59:00.000Z", *views[0].Deadline)
	assert.Nil(t, views[1].Deadline)
}

func TestAssemblerCustomThumbnail(t *testing.T) {
	f := newFixture()
	a := NewScholarshipAssembler(f.categories, f.countries, f.levels, "/static/none.png")

	view, err := a.View(context.Background(), models.Scholarship{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, "/static/none.png", view.ThumbnailURL)
}

func TestAssemblerFacetsOrderedByName(t *testing.T) {
	f := newFixture()
	facets, err := f.assembler().Facets(context.Background())
	require.NoError(t, err)

	require.Len(t, facets.Categories, 2)
	assert.Equal(t, "Arts", facets.Categories[0].Name)
	assert.Equal(t, "Engineering", facets.Categories[1].Name)
	assert.Len(t, facets.Countries, 1)
	assert.Len(t, facets.Levels, 1)
}

func TestAssemblerFailures(t *testing.T) {
	f := newFixture()
	f.levels.batchErr = errors.New("timeout")
	_, err := f.assembler().Views(context.Background(), []models.Scholarship{{ID: 1, LevelID: int64Ptr(1)}})
	assert.Error(t, err)

	f = newFixture()
	f.countries.listErr = errors.New("timeout")
	_, err = f.assembler().Facets(context.Background())
	assert.Error(t, err)
}

func TestAssemblerAssemblePagination(t *testing.T) {
	f := newFixture()
	result, err := f.assembler().Assemble(context.Background(), []models.Scholarship{}, 25, models.ScholarshipFilter{Page: 3, PageSize: 10})
	require.NoError(t, err)

	assert.Empty(t, result.Items)
	assert.NotNil(t, result.Items)
	assert.Equal(t, models.Pagination{Total: 25, Page: 3, PageSize: 10, TotalPages: 3}, result.Pagination)
}
