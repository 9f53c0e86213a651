package app

import (
	"course_backend/docs"
	"course_backend/internal/middleware"
	"course_backend/internal/model"
	"course_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.GET("/modules", c.catalog.ListModules)
		public.POST("/checkout/webhook", c.checkout.Webhook)
	}

	authorized := router.Group("/api")
	authorized.Use(middleware.AuthMiddleware(a.Services.Auth))
	{
		authorized.GET("/profile", c.auth.Profile)

		authorized.GET("/progress", c.progress.GetProgress)
		authorized.DELETE("/progress", c.progress.ResetProgress)
		authorized.POST("/lessons/:id/complete", c.progress.CompleteLesson)

		authorized.GET("/tests/:id", c.test.GetTest)
		authorized.POST("/tests/:id/submit", c.test.SubmitTest)
		authorized.GET("/tests/:id/attempts", c.test.ListAttempts)

		authorized.GET("/grades", c.grade.Summary)
		authorized.POST("/grades/recompute", c.grade.Recompute)
		authorized.GET("/certificate", c.grade.Certificate)

		authorized.GET("/assignments", c.submission.ListAssignments)
		authorized.POST("/assignments/:id/submissions", c.submission.SubmitAssignment)
		authorized.GET("/assignments/:id/submissions", c.submission.ListSubmissions)
		authorized.POST("/projects", c.submission.SubmitProject)
		authorized.GET("/projects/mine", c.submission.MyProject)

		authorized.POST("/checkout/session", c.checkout.CreateSession)
		authorized.GET("/checkout/access", c.checkout.Access)
	}

	admin := authorized.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/modules", c.catalog.CreateModule)
		admin.POST("/modules/:id/lessons", c.catalog.AddLesson)
		admin.PUT("/modules/:id/test", c.catalog.SaveTest)
		admin.POST("/modules/:id/assignments", c.catalog.AddAssignment)
		admin.POST("/users/:userId/exemptions", c.progress.GrantExemption)
		admin.DELETE("/users/:userId/exemptions/:moduleId", c.progress.RevokeExemption)
		admin.POST("/users/:userId/grades/recompute", c.grade.RecomputeUser)
	}
}
