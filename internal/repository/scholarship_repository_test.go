package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fullsco/scholarship-api/internal/models"
)

var scholarshipRowColumns = []string{"id", "title", "slug", "description", "content", "amount", "currency", "university", "department",
	"is_featured", "is_fully_funded", "image_url", "deadline", "category_id", "country_id", "level_id", "is_published", "created_at", "updated_at"}

func newScholarshipMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestScholarshipRepositorySearch(t *testing.T) {
	db, mock, cleanup := newScholarshipMock(t)
	defer cleanup()
	repo := NewScholarshipRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(scholarshipRowColumns).
		AddRow(1, "Chevening", "chevening", "UK award", "<p>x</p>", "100%", "GBP", "Any", "", true, true, "", now, 3, nil, nil, true, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM scholarships s WHERE 1=1 AND s.is_published = true AND s.category_id = $1 ORDER BY s.created_at DESC, s.id DESC LIMIT 10 OFFSET 10")).
		WithArgs(int64(3)).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM scholarships s WHERE 1=1 AND s.is_published = true AND s.category_id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	cat := int64(3)
	items, total, err := repo.Search(context.Background(), models.ScholarshipFilter{CategoryID: &cat, SortBy: models.SortNewest, Page: 2, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 11, total)
	assert.Equal(t, "chevening", items[0].Slug)
	require.NotNil(t, items[0].CategoryID)
	assert.Equal(t, int64(3), *items[0].CategoryID)
	assert.Nil(t, items[0].CountryID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScholarshipRepositorySearchEmptyPage(t *testing.T) {
	db, mock, cleanup := newScholarshipMock(t)
	defer cleanup()
	repo := NewScholarshipRepository(db)

	mock.ExpectQuery("LIMIT 10 OFFSET 990").WillReturnRows(sqlmock.NewRows(scholarshipRowColumns))
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	items, total, err := repo.Search(context.Background(), models.ScholarshipFilter{Page: 100, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
	assert.Equal(t, 4, total)
}

func TestScholarshipRepositorySearchCountError(t *testing.T) {
	db, mock, cleanup := newScholarshipMock(t)
	defer cleanup()
	repo := NewScholarshipRepository(db)

	mock.ExpectQuery("FROM scholarships s").WillReturnRows(sqlmock.NewRows(scholarshipRowColumns))
	mock.ExpectQuery("SELECT COUNT").WillReturnError(sql.ErrConnDone)

	_, _, err := repo.Search(context.Background(), models.ScholarshipFilter{Page: 1, PageSize: 10})
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestScholarshipRepositoryFindBySlugPublishedOnly(t *testing.T) {
	db, mock, cleanup := newScholarshipMock(t)
	defer cleanup()
	repo := NewScholarshipRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.slug = $1 AND s.is_published = true")).
		WithArgs("draft").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindBySlug(context.Background(), "draft", true)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestScholarshipRepositoryExistsBySlug(t *testing.T) {
	db, mock, cleanup := newScholarshipMock(t)
	defer cleanup()
	repo := NewScholarshipRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM scholarships WHERE slug = $1 AND id <> $2 LIMIT 1")).
		WithArgs("fulbright", int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM scholarships WHERE slug = $1 LIMIT 1")).
		WithArgs("new").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsBySlug(context.Background(), "fulbright", 4)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsBySlug(context.Background(), "new", 0)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestScholarshipRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newScholarshipMock(t)
	defer cleanup()
	repo := NewScholarshipRepository(db)

	args := make([]driver.Value, 18)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	mock.ExpectQuery("INSERT INTO scholarships").
		WithArgs(args...).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	s := &models.Scholarship{Title: "DAAD", Slug: "daad"}
	require.NoError(t, repo.Create(context.Background(), s))
	assert.Equal(t, int64(42), s.ID)
	assert.False(t, s.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScholarshipRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newScholarshipMock(t)
	defer cleanup()
	repo := NewScholarshipRepository(db)

	mock.ExpectExec("UPDATE scholarships SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Scholarship{ID: 9, Title: "Gone"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestScholarshipRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newScholarshipMock(t)
	defer cleanup()
	repo := NewScholarshipRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM scholarships WHERE id = $1")).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}
