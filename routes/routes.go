package routes

import (
	"time"

	"portal-cms/handlers"
	"portal-cms/middleware"
	"portal-cms/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Content  *handlers.ContentHandler
	History  *handlers.HistoryHandler
	Autosave *handlers.AutosaveHandler
	Health   *handlers.HealthHandler
}

// SetupRouter wires every route of the API.
func SetupRouter(h Handlers, allowOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(allowOrigins) == 0 || (len(allowOrigins) == 1 && allowOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowOrigins
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", h.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		// Public content routes (published only)
		public := v1.Group("/public")
		{
			public.GET("/contents", h.Content.GetPublicContents)
			public.GET("/contents/:slug", h.Content.GetPublicContent)
		}

		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			contents := protected.Group("/contents")
			{
				contents.POST("", h.Content.CreateContent)
				contents.GET("", h.Content.GetContents)
				contents.GET("/:id", h.Content.GetContent)
				contents.PUT("/:id", h.Content.UpdateContent)
				contents.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), h.Content.DeleteContent)

				contents.POST("/:id/publish", h.Content.PublishContent)
				contents.POST("/:id/schedule", h.Content.ScheduleContent)
				contents.DELETE("/:id/schedule", h.Content.CancelSchedule)
				contents.POST("/:id/archive", h.Content.ArchiveContent)
				contents.POST("/:id/revert", h.Content.RevertContent)

				contents.GET("/:id/versions", h.History.GetVersions)
				contents.GET("/:id/versions/:version_id", h.History.GetVersion)
			}

			autosave := protected.Group("/autosave")
			{
				autosave.POST("", h.Autosave.Save)
				autosave.GET("/:key", h.Autosave.Load)
				autosave.DELETE("/:key", h.Autosave.Clear)
			}
		}
	}

	return router
}
