package app

import (
	"lumen_quiz_backend/docs"
	"lumen_quiz_backend/internal/config"
	"lumen_quiz_backend/internal/middleware"
	"lumen_quiz_backend/internal/model"
	"lumen_quiz_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// Public routes, with optional auth so admins see drafts in listings.
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/leaderboard", c.user.Leaderboard)
		public.GET("/quizzes", middleware.TryAuthMiddleware(cfg), c.quiz.List)
		public.GET("/quizzes/:id", middleware.TryAuthMiddleware(cfg), c.quiz.Detail)
	}

	// Player routes.
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/me", c.auth.Me)
		authGroup.GET("/profile", c.user.Profile)
		authGroup.POST("/profile/avatar", c.user.UploadAvatar)

		authGroup.POST("/quizzes/:id/play", c.play.Start)
		authGroup.GET("/quizzes/:id/question", c.play.Question)
		authGroup.POST("/quizzes/:id/answer", c.play.Answer)
		authGroup.DELETE("/quizzes/:id/play", c.play.Abandon)
	}

	// Authoring and import, admin only.
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/quizzes", c.quiz.Create)
		admin.GET("/quizzes/:id", c.quiz.AdminDetail)
		admin.PUT("/quizzes/:id", c.quiz.Update)
		admin.DELETE("/quizzes/:id", c.quiz.Delete)
		admin.POST("/quizzes/:id/publish", c.quiz.Publish)
		admin.POST("/quizzes/:id/unpublish", c.quiz.Unpublish)

		admin.GET("/import/categories", c.importc.Categories)
		admin.POST("/import", c.importc.Import)
	}
}
