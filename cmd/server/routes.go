package main

import (
	"github.com/gin-gonic/gin"

	"github.com/grantlyhq/grantly/backend/internal/middleware"
	"github.com/grantlyhq/grantly/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	r.Use(middleware.RequestID())
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())
	r.Use(middleware.SecureHeaders())

	// Liveness and health
	r.GET("/", svc.healthHandler.Root)
	r.GET("/health", svc.healthHandler.CheckHealth)

	publicLimiter := middleware.NewRateLimiter(10, 20)

	// Current user profile (auth required, no admin scope)
	user := r.Group("/user", middleware.AuthRequired(svc.verifier))
	{
		user.GET("", svc.userHandler.Get)
		user.PATCH("", svc.userHandler.Update)
	}

	api := r.Group("/api")
	{
		// Public catalog routes
		public := api.Group("", publicLimiter.Middleware())
		{
			public.GET("/grants", svc.grantHandler.List)
			public.GET("/grants/:id", svc.grantHandler.GetByID)
			public.POST("/grants/:id/requests", svc.grantHandler.CreateRequest)
		}

		// Favorites (auth required)
		favorites := api.Group("/favorites", middleware.AuthRequired(svc.verifier))
		{
			favorites.GET("", svc.favoriteHandler.List)
			favorites.POST("", svc.favoriteHandler.Create)
			favorites.DELETE("/:id", svc.favoriteHandler.Delete)
		}

		// Admin routes (auth + admin scope, audited)
		admin := api.Group("/admin",
			middleware.AuthRequired(svc.verifier),
			middleware.ScopeRequired(svc.cfg.Auth.AdminScopes...),
			middleware.AuditLog(),
		)
		{
			admin.PATCH("/grants/:id", svc.grantHandler.Update)
			admin.DELETE("/grants/:id", svc.grantHandler.Delete)
			admin.DELETE("/requests/:id", svc.grantHandler.DeleteRequest)

			admin.GET("/users", svc.adminHandler.ListUsers)
			admin.GET("/users/:userId", svc.adminHandler.GetUser)
			admin.GET("/roles", svc.adminHandler.ListRoles)

			moderator := admin.Group("/moderator/:userId",
				svc.adminHandler.CheckRoleID(),
				svc.adminHandler.CheckUser(),
			)
			{
				moderator.POST("", svc.adminHandler.Promote)
				moderator.DELETE("", svc.adminHandler.Demote)
			}

			admin.GET("/logs", svc.systemLogHandler.List)
			admin.GET("/logs/modules", svc.systemLogHandler.GetModules)
		}
	}
}
