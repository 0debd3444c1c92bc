package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fullsco/scholarship-api/internal/models"
)

// ScholarshipRepository handles persistence for scholarships.
type ScholarshipRepository struct {
	db *sqlx.DB
}

// NewScholarshipRepository constructs the repository.
func NewScholarshipRepository(db *sqlx.DB) *ScholarshipRepository {
	return &ScholarshipRepository{db: db}
}

// Search returns one page of scholarships matching filter together with the
// total number of matching rows.
func (r *ScholarshipRepository) Search(ctx context.Context, filter models.ScholarshipFilter) ([]models.Scholarship, int, error) {
	rowsQuery, countQuery, args := buildScholarshipSearch(filter)

	items := []models.Scholarship{}
	if err := r.db.SelectContext(ctx, &items, rowsQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("search scholarships: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count scholarships: %w", err)
	}

	return items, total, nil
}

// FindByID fetches a scholarship regardless of its published state.
func (r *ScholarshipRepository) FindByID(ctx context.Context, id int64) (*models.Scholarship, error) {
	query := fmt.Sprintf("SELECT %s FROM scholarships s WHERE s.id = $1", scholarshipColumns)
	var item models.Scholarship
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// FindBySlug fetches a scholarship by slug. With publishedOnly set, drafts are
// reported as sql.ErrNoRows.
func (r *ScholarshipRepository) FindBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.Scholarship, error) {
	query := fmt.Sprintf("SELECT %s FROM scholarships s WHERE s.slug = $1", scholarshipColumns)
	if publishedOnly {
		query += " AND s.is_published = true"
	}
	var item models.Scholarship
	if err := r.db.GetContext(ctx, &item, query, slug); err != nil {
		return nil, err
	}
	return &item, nil
}

// ExistsBySlug checks slug uniqueness, ignoring excludeID when positive.
func (r *ScholarshipRepository) ExistsBySlug(ctx context.Context, slug string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM scholarships WHERE slug = $1"
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
		return false, fmt.Errorf("check scholarship slug: %w", err)
	}
	return true, nil
}

// Create inserts a scholarship and fills its id and timestamps.
func (r *ScholarshipRepository) Create(ctx context.Context, s *models.Scholarship) error {
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	const query = `INSERT INTO scholarships (title, slug, description, content, amount, currency, university, department,
        is_featured, is_fully_funded, image_url, deadline, category_id, country_id, level_id, is_published, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18) RETURNING id`
	err := r.db.QueryRowxContext(ctx, query,
		s.Title, s.Slug, s.Description, s.Content, s.Amount, s.Currency, s.University, s.Department,
		s.IsFeatured, s.IsFullyFunded, s.ImageURL, s.Deadline, s.CategoryID, s.CountryID, s.LevelID, s.IsPublished,
		s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("create scholarship: %w", err)
	}
	return nil
}

// Update overwrites every mutable column. A missing row yields sql.ErrNoRows.
func (r *ScholarshipRepository) Update(ctx context.Context, s *models.Scholarship) error {
	s.UpdatedAt = time.Now().UTC()
	const query = `UPDATE scholarships SET title = $1, slug = $2, description = $3, content = $4, amount = $5, currency = $6,
        university = $7, department = $8, is_featured = $9, is_fully_funded = $10, image_url = $11, deadline = $12,
        category_id = $13, country_id = $14, level_id = $15, is_published = $16, updated_at = $17 WHERE id = $18`
	res, err := r.db.ExecContext(ctx, query,
		s.Title, s.Slug, s.Description, s.Content, s.Amount, s.Currency, s.University, s.Department,
		s.IsFeatured, s.IsFullyFunded, s.ImageURL, s.Deadline, s.CategoryID, s.CountryID, s.LevelID, s.IsPublished,
		s.UpdatedAt, s.ID,
	)
	if err != nil {
		return fmt.Errorf("update scholarship: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a scholarship. A missing row yields sql.ErrNoRows.
func (r *ScholarshipRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM scholarships WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete scholarship: %w", err)
	}
	return requireAffected(res)
}
