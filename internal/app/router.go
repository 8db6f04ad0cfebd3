package app

import (
	"solveit_backend/docs"
	"solveit_backend/internal/config"
	"solveit_backend/internal/middleware"
	"solveit_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)

		// Public catalog; the caller is identified when possible for solved counts.
		companies := api.Group("/companies")
		companies.Use(middleware.TryAuthMiddleware(cfg))
		{
			companies.GET("", c.company.ListCompanies)
			companies.GET("/:id", c.company.GetCompany)
		}

		auth := api.Group("/auth")
		{
			auth.POST("/signup", c.auth.Signup)
			auth.POST("/login", c.auth.Login)
			auth.GET("/me", middleware.AuthMiddleware(cfg), c.auth.Me)
		}

		user := api.Group("/user")
		user.Use(middleware.AuthMiddleware(cfg))
		{
			user.GET("/stats", c.stats.GetStats)
			user.POST("/progress", c.progress.UpdateProgress)
		}

		// Authorised by the cron secret, not by user auth.
		api.GET("/cron/daily-streak", c.cron.DailyStreak)
	}
}
