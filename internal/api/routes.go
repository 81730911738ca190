package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"resumebuilder/internal/api/middleware"
	"resumebuilder/internal/auth"
	"resumebuilder/internal/config"
	"resumebuilder/internal/storage"
)

// RegisterRoutes registers the /v1 surface.
func RegisterRoutes(
	router *gin.Engine,
	cfg *config.Config,
	db *gorm.DB,
	asynqClient *asynq.Client,
	authService *auth.AuthService,
	redisClient *redis.Client,
	logger *slog.Logger,
	storageClient *storage.Client,
) {
	publisher := NewActivityPublisher(db, asynqClient, redisClient, logger)

	authHandler := NewAuthHandler(db, authService, redisClient, logger,
		cfg.Auth.LoginRateLimitPerHour,
		cfg.Auth.LoginLockThreshold,
		time.Duration(cfg.Auth.LoginLockTTLMins)*time.Minute,
		cfg.Auth.CookieDomain,
	)
	projectHandler := NewProjectHandler(db, publisher, logger)
	sectionHandler := NewSectionHandler(db, publisher, logger)
	itemHandler := NewItemHandler(db, publisher, logger)
	templateHandler := NewTemplateHandler(db, logger)
	bookmarkHandler := NewBookmarkHandler(db, logger)
	faqHandler := NewFaqHandler(db, logger)
	exampleHandler := NewExampleItemHandler(db, logger)
	dashboardHandler := NewDashboardHandler(db, redisClient, logger)
	photoHandler := NewPhotoHandler(db, storageClient, publisher, redisClient, logger, cfg.Uploads)
	proxyHandler := NewProxyHandler(cfg.Parent, logger)
	wsHandler := NewWsHandler(redisClient, authService, logger, cfg.API.AllowedOrigins)

	authMiddleware := middleware.AuthMiddleware(authService)

	v1 := router.Group("/v1")
	{
		v1.GET("/ws", wsHandler.HandleConnection)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authHandler.Logout)
			authGroup.POST("/change-password", authMiddleware, authHandler.ChangePassword)
		}

		faqGroup := v1.Group("/faqs")
		{
			faqGroup.GET("", faqHandler.List)
		}

		projectGroup := v1.Group("/projects")
		projectGroup.Use(authMiddleware)
		{
			projectGroup.GET("", projectHandler.ListProjects)
			projectGroup.POST("", projectHandler.CreateProject)
			projectGroup.GET("/:id", projectHandler.GetProject)
			projectGroup.PATCH("/:id", projectHandler.UpdateProject)
			projectGroup.DELETE("/:id", projectHandler.DeleteProject)
			projectGroup.POST("/:id/default", projectHandler.SetDefault)

			projectGroup.PUT("/:id/sections/:key", sectionHandler.UpsertSection)
			projectGroup.POST("/:id/sections/:key/items", itemHandler.SaveItem)
			projectGroup.DELETE("/:id/items/:itemID", itemHandler.DeleteItem)

			projectGroup.POST("/:id/photo", photoHandler.UploadPhoto)
			projectGroup.GET("/:id/photo", photoHandler.GetPhotoURL)
			projectGroup.DELETE("/:id/photo", photoHandler.DeletePhoto)
		}

		templateGroup := v1.Group("/templates")
		templateGroup.Use(authMiddleware)
		{
			templateGroup.GET("", templateHandler.ListTemplates)
		}

		bookmarkGroup := v1.Group("/bookmarks")
		bookmarkGroup.Use(authMiddleware)
		{
			bookmarkGroup.GET("", bookmarkHandler.List)
			bookmarkGroup.POST("/toggle", bookmarkHandler.Toggle)
		}

		exampleGroup := v1.Group("/example-items")
		exampleGroup.Use(authMiddleware)
		{
			exampleGroup.GET("", exampleHandler.List)
			exampleGroup.GET("/all", exampleHandler.ListAll)
			exampleGroup.POST("", exampleHandler.Create)
			exampleGroup.PATCH("/:id", exampleHandler.Update)
			exampleGroup.DELETE("/:id", exampleHandler.Delete)
		}

		dashboardGroup := v1.Group("/dashboard")
		dashboardGroup.Use(authMiddleware)
		{
			dashboardGroup.GET("/summary", dashboardHandler.Summary)
		}

		aiGroup := v1.Group("/ai")
		aiGroup.Use(authMiddleware)
		{
			aiGroup.POST("/suggest", proxyHandler.SuggestAI)
		}

		mediaGroup := v1.Group("/media")
		mediaGroup.Use(authMiddleware)
		{
			mediaGroup.POST("/upload", proxyHandler.UploadMedia)
		}

		notificationGroup := v1.Group("/notifications")
		notificationGroup.Use(authMiddleware)
		{
			notificationGroup.GET("/unread-count", proxyHandler.UnreadCount)
		}
	}
}
