package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fullsco/scholarship-api/internal/models"
)

const upsertSiteSettingQuery = `INSERT INTO site_settings (key, value, updated_by, updated_at)
VALUES (:key, :value, :updated_by, :updated_at)
ON CONFLICT (key)
DO UPDATE SET value = EXCLUDED.value, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`

// SiteSettingsRepository persists the key/value site settings.
type SiteSettingsRepository struct {
	db *sqlx.DB
}

// NewSiteSettingsRepository constructs the repository.
func NewSiteSettingsRepository(db *sqlx.DB) *SiteSettingsRepository {
	return &SiteSettingsRepository{db: db}
}

// List returns every setting ordered by key.
func (r *SiteSettingsRepository) List(ctx context.Context) ([]models.SiteSetting, error) {
	const query = `SELECT key, value, updated_by, updated_at FROM site_settings ORDER BY key ASC`
	settings := []models.SiteSetting{}
	if err := r.db.SelectContext(ctx, &settings, query); err != nil {
		return nil, fmt.Errorf("list site settings: %w", err)
	}
	return settings, nil
}

// ListByKeys returns settings whose key is in keys.
func (r *SiteSettingsRepository) ListByKeys(ctx context.Context, keys []string) ([]models.SiteSetting, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT key, value, updated_by, updated_at
FROM site_settings WHERE key IN (%s) ORDER BY key ASC`, placeholders(len(keys)))
	args := make([]interface{}, len(keys))
	for i, key := range keys {
		args[i] = key
	}
	var settings []models.SiteSetting
	if err := r.db.SelectContext(ctx, &settings, query, args...); err != nil {
		return nil, fmt.Errorf("list site settings by keys: %w", err)
	}
	return settings, nil
}

// BulkUpsert writes all settings in one transaction.
func (r *SiteSettingsRepository) BulkUpsert(ctx context.Context, settings []models.SiteSetting) error {
	if len(settings) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin site settings tx: %w", err)
	}
	now := time.Now().UTC()
	for i := range settings {
		settings[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, upsertSiteSettingQuery, settings[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert site setting %s: %w", settings[i].Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit site settings tx: %w", err)
	}
	return nil
}

func placeholders(n int) string {
	values := make([]string, n)
	for i := 1; i <= n; i++ {
		values[i-1] = fmt.Sprintf("$%d", i)
	}
	return strings.Join(values, ",")
}
