package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"timesheet/backend/internal/handler"
	"timesheet/backend/internal/middleware"
	"timesheet/backend/internal/service"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Logs    *handler.LogHandler
	Project *handler.ProjectHandler
}

func New(
	authService *service.AuthService,
	handlers Handlers,
	corsOrigins []string,
	logger *slog.Logger,
) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestLogger(logger), gin.Recovery(), middleware.CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/register", handlers.Auth.Register)
	auth.POST("/login", handlers.Auth.Login)

	requireUser := middleware.Auth(authService)
	requireAdmin := middleware.RequireAdmin()

	auth.GET("/me", requireUser, handlers.Auth.Me)

	logs := api.Group("/logs", requireUser)
	logs.GET("/week", handlers.Logs.Week)
	logs.POST("", handlers.Logs.Submit)
	logs.PATCH("/:id", handlers.Logs.Edit)
	logs.DELETE("/:id", handlers.Logs.Delete)

	projects := api.Group("/projects", requireUser)
	projects.GET("", handlers.Project.List)
	projects.GET("/:id", requireAdmin, handlers.Project.Details)
	projects.POST("", requireAdmin, handlers.Project.Create)
	projects.PUT("/:id", requireAdmin, handlers.Project.Update)
	projects.DELETE("/:id", requireAdmin, handlers.Project.Delete)

	admin := api.Group("/admin", requireUser, requireAdmin)
	admin.GET("/users/:id/week", handlers.Logs.UserWeek)

	return engine
}
