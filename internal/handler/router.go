package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/eufiscalizo-api/internal/middleware"
	"github.com/noah-isme/eufiscalizo-api/internal/models"
)

// RouterConfig carries the collaborators mounted by RegisterRoutes.
type RouterConfig struct {
	APIPrefix   string
	Auth        *AuthHandler
	Inspections *InspectionHandler
	Metrics     *MetricsHandler
	Tokens      middleware.TokenValidator
	Limiter     middleware.Limiter
	LoginLimit  int
	LoginWindow time.Duration
}

// RegisterRoutes mounts the public API on r.
func RegisterRoutes(r gin.IRouter, cfg RouterConfig) {
	if cfg.Metrics != nil {
		r.GET("/health", cfg.Metrics.Health)
		r.GET("/ready", cfg.Metrics.Ready)
		r.GET("/metrics", cfg.Metrics.Prometheus)
	}

	api := r.Group(cfg.APIPrefix)
	authRequired := middleware.JWT(cfg.Tokens)

	auth := api.Group("/auth")
	auth.POST("/login", middleware.LoginRateLimit(cfg.Limiter, cfg.LoginLimit, cfg.LoginWindow), cfg.Auth.Login)
	auth.POST("/register", cfg.Auth.Register)
	auth.POST("/logout", authRequired, cfg.Auth.Logout)
	auth.GET("/me", authRequired, cfg.Auth.Me)

	inspections := api.Group("/inspections", authRequired)
	inspections.GET("", cfg.Inspections.List)
	inspections.GET("/stats", cfg.Inspections.Stats)
	inspections.GET("/categories", cfg.Inspections.Categories)
	inspections.GET("/export", middleware.RequireRoles(models.RoleAdmin), cfg.Inspections.Export)
	inspections.GET("/:id", cfg.Inspections.Get)
	inspections.POST("", middleware.RequireRoles(models.RoleStudent), cfg.Inspections.Create)
	inspections.PATCH("/:id/status", middleware.RequireRoles(models.RoleAdmin), cfg.Inspections.UpdateStatus)
	inspections.POST("/:id/feedback", middleware.RequireRoles(models.RoleStudent), cfg.Inspections.Feedback)

	if cfg.Metrics != nil {
		api.GET("/metrics/summary", authRequired, middleware.RequireRoles(models.RoleAdmin), cfg.Metrics.Summary)
	}
}
