package models

import "time"

// SiteSetting is a key/value entry of the public site configuration.
type SiteSetting struct {
	Key       string    `db:"key" json:"key"`
	Value     string    `db:"value" json:"value"`
	UpdatedBy *string   `db:"updated_by" json:"updatedBy,omitempty"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
