package dto

// SiteSettingsResponse is the public site configuration with derived theme variables.
type SiteSettingsResponse struct {
	Settings map[string]string `json:"settings"`
	Theme    map[string]string `json:"theme"`
}

// UpdateSiteSettingRequest updates a single setting.
type UpdateSiteSettingRequest struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value"`
}

// BulkUpdateSiteSettingsRequest holds multiple setting updates.
type BulkUpdateSiteSettingsRequest struct {
	Items []UpdateSiteSettingRequest `json:"items" validate:"required,min=1,dive"`
}
