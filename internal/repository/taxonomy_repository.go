package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/fullsco/scholarship-api/internal/models"
)

// TaxonomyRepository persists one of the categories, countries or levels tables.
// All three share the {id, name, slug} shape, so a single implementation serves them.
type TaxonomyRepository struct {
	db   *sqlx.DB
	kind models.TaxonomyKind
}

// NewTaxonomyRepository constructs a repository for kind. It panics on an unknown kind
// because the table name is interpolated into SQL.
func NewTaxonomyRepository(db *sqlx.DB, kind models.TaxonomyKind) *TaxonomyRepository {
	if !kind.Valid() {
		panic(fmt.Sprintf("unknown taxonomy kind %q", kind))
	}
	return &TaxonomyRepository{db: db, kind: kind}
}

// Kind returns the taxonomy served by the repository.
func (r *TaxonomyRepository) Kind() models.TaxonomyKind {
	return r.kind
}

// List returns every row ordered by name.
func (r *TaxonomyRepository) List(ctx context.Context) ([]models.Taxonomy, error) {
	query := fmt.Sprintf("SELECT id, name, slug, created_at, updated_at FROM %s ORDER BY name ASC, id ASC", r.kind.Table())
	items := []models.Taxonomy{}
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.kind.Table(), err)
	}
	return items, nil
}

// FindByID fetches a row by id. Missing rows yield sql.ErrNoRows.
func (r *TaxonomyRepository) FindByID(ctx context.Context, id int64) (*models.Taxonomy, error) {
	query := fmt.Sprintf("SELECT id, name, slug, created_at, updated_at FROM %s WHERE id = $1", r.kind.Table())
	var item models.Taxonomy
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// FindBySlug fetches a row by slug. Missing rows yield sql.ErrNoRows.
func (r *TaxonomyRepository) FindBySlug(ctx context.Context, slug string) (*models.Taxonomy, error) {
	query := fmt.Sprintf("SELECT id, name, slug, created_at, updated_at FROM %s WHERE slug = $1", r.kind.Table())
	var item models.Taxonomy
	if err := r.db.GetContext(ctx, &item, query, slug); err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByIDs returns the rows whose id is in ids in a single query. Ids without a
// row are simply absent from the result.
func (r *TaxonomyRepository) FindByIDs(ctx context.Context, ids []int64) ([]models.Taxonomy, error) {
	if len(ids) == 0 {
		return []models.Taxonomy{}, nil
	}
	query := fmt.Sprintf("SELECT id, name, slug, created_at, updated_at FROM %s WHERE id = ANY($1)", r.kind.Table())
	items := []models.Taxonomy{}
	if err := r.db.SelectContext(ctx, &items, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find %s by ids: %w", r.kind.Table(), err)
	}
	return items, nil
}

// ExistsBySlug checks slug uniqueness, optionally ignoring excludeID.
func (r *TaxonomyRepository) ExistsBySlug(ctx context.Context, slug string, excludeID int64) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE slug = $1", r.kind.Table())
	args := []interface{}{slug}
	if excludeID > 0 {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check %s slug: %w", r.kind.Table(), err)
	}
	return true, nil
}

// Create inserts item and fills its id and timestamps.
func (r *TaxonomyRepository) Create(ctx context.Context, item *models.Taxonomy) error {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	query := fmt.Sprintf("INSERT INTO %s (name, slug, created_at, updated_at) VALUES ($1, $2, $3, $4) RETURNING id", r.kind.Table())
	if err := r.db.QueryRowxContext(ctx, query, item.Name, item.Slug, item.CreatedAt, item.UpdatedAt).Scan(&item.ID); err != nil {
		return fmt.Errorf("create %s: %w", r.kind.Table(), err)
	}
	return nil
}

// Update modifies name and slug. A missing row yields sql.ErrNoRows.
func (r *TaxonomyRepository) Update(ctx context.Context, item *models.Taxonomy) error {
	item.UpdatedAt = time.Now().UTC()
	query := fmt.Sprintf("UPDATE %s SET name = $1, slug = $2, updated_at = $3 WHERE id = $4", r.kind.Table())
	res, err := r.db.ExecContext(ctx, query, item.Name, item.Slug, item.UpdatedAt, item.ID)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.kind.Table(), err)
	}
	return requireAffected(res)
}

// Delete removes a row. Scholarships referencing it fall back to NULL through the FK.
func (r *TaxonomyRepository) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.kind.Table())
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.kind.Table(), err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
