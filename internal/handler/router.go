package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/fullsco/scholarship-api/internal/middleware"
	"github.com/fullsco/scholarship-api/internal/models"
)

// RouterDeps groups the handlers and middleware the API routes need.
type RouterDeps struct {
	Scholarships *ScholarshipHandler
	Categories   *TaxonomyHandler
	Countries    *TaxonomyHandler
	Levels       *TaxonomyHandler
	Settings     *SettingsHandler
	Metrics      *MetricsHandler

	Tokens middleware.TokenValidator
	// RateLimit guards public read endpoints. Nil disables throttling.
	RateLimit gin.HandlerFunc
}

// RegisterRoutes mounts probes and metrics on r and the API under prefix.
//
// Public reads sit behind the rate limiter. Everything under /admin and
// /system requires an ADMIN or SUPERADMIN bearer token.
func RegisterRoutes(r gin.IRouter, prefix string, deps RouterDeps) {
	r.GET("/health", deps.Metrics.Health)
	r.GET("/ready", deps.Metrics.Ready)
	r.GET("/metrics", deps.Metrics.Prometheus)

	api := r.Group(prefix)

	public := api.Group("")
	if deps.RateLimit != nil {
		public.Use(deps.RateLimit)
	}
	public.GET("/scholarships", deps.Scholarships.List)
	public.GET("/scholarships/search", deps.Scholarships.Search)
	public.GET("/scholarships/:slug", deps.Scholarships.GetBySlug)
	public.GET("/categories", deps.Categories.List)
	public.GET("/countries", deps.Countries.List)
	public.GET("/levels", deps.Levels.List)
	public.GET("/settings", deps.Settings.Get)

	guard := []gin.HandlerFunc{
		middleware.JWT(deps.Tokens),
		middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin),
	}

	api.Group("/system", guard...).GET("/metrics", deps.Metrics.System)

	admin := api.Group("/admin", guard...)
	admin.GET("/scholarships", deps.Scholarships.AdminList)
	admin.GET("/scholarships/export", deps.Scholarships.Export)
	admin.GET("/scholarships/:id", deps.Scholarships.AdminGet)
	admin.POST("/scholarships", deps.Scholarships.Create)
	admin.PUT("/scholarships/:id", deps.Scholarships.Update)
	admin.DELETE("/scholarships/:id", deps.Scholarships.Delete)

	registerTaxonomy(admin.Group("/categories"), deps.Categories)
	registerTaxonomy(admin.Group("/countries"), deps.Countries)
	registerTaxonomy(admin.Group("/levels"), deps.Levels)

	admin.PUT("/settings", deps.Settings.Update)
}

func registerTaxonomy(g *gin.RouterGroup, h *TaxonomyHandler) {
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
