// Package router builds the HTTP engine and wires services into handlers.
package router

import (
	"net/http"

	"github.com/custor/portal-api/internal/auth"
	"github.com/custor/portal-api/internal/config"
	"github.com/custor/portal-api/internal/constants"
	"github.com/custor/portal-api/internal/handlers"
	"github.com/custor/portal-api/internal/mailer"
	"github.com/custor/portal-api/internal/metrics"
	"github.com/custor/portal-api/internal/middleware"
	"github.com/custor/portal-api/internal/repository"
	"github.com/custor/portal-api/internal/services"
	"github.com/custor/portal-api/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the long-lived resources the routes need. Redis, Metrics and
// MetricsHandler may be nil.
type Deps struct {
	Config         *config.Config
	DB             *gorm.DB
	Redis          *redis.Client
	Storage        storage.Storage
	Mailer         mailer.Mailer
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	Logger         *zap.Logger
}

// Setup builds the engine with every route mounted under /api.
func Setup(deps Deps) *gin.Engine {
	cfg := deps.Config
	logger := deps.Logger

	r := gin.New()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(deps.Metrics))
	r.MaxMultipartMemory = 8 << 20

	store := repository.NewStore(deps.DB)
	tokens := auth.NewTokenManager(cfg.JWT)

	notificationService := services.NewNotificationService(store, deps.Redis, cfg.Redis.UnreadTTL, deps.Metrics, logger)
	authService := services.NewAuthService(store, tokens, deps.Mailer, cfg.Frontend.BaseURL, deps.Metrics, logger)
	teamService := services.NewTeamService(store, logger)
	projectService := services.NewProjectService(store, logger)
	taskService := services.NewTaskService(store, notificationService, logger)
	fileService := services.NewFileService(store, deps.Storage, notificationService, cfg.Storage.MaxUpload, deps.Metrics, logger)
	commentService := services.NewCommentService(store, notificationService, deps.Metrics, logger)

	authHandler := handlers.NewAuthHandler(authService, logger)
	userHandler := handlers.NewUserHandler(authService, logger)
	teamHandler := handlers.NewTeamHandler(teamService, logger)
	projectHandler := handlers.NewProjectHandler(projectService, logger)
	taskHandler := handlers.NewTaskHandler(taskService, logger)
	fileHandler := handlers.NewFileHandler(fileService, logger)
	commentHandler := handlers.NewCommentHandler(commentService, logger)
	notificationHandler := handlers.NewNotificationHandler(notificationService, logger)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Redis, logger)

	r.GET("/health", healthHandler.Health)
	metricsHandler := deps.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.GET("/metrics", gin.WrapH(metricsHandler))

	requireAuth := middleware.RequireAuth(tokens)
	optionalAuth := middleware.OptionalAuth(tokens)
	adminOnly := middleware.RequireRole(constants.RoleAdmin)

	api := r.Group("/api")
	{
		users := api.Group("/users")
		{
			users.POST("/login", authHandler.Login)
			users.POST("/forgot-password", authHandler.ForgotPassword)
			users.POST("/reset-password", authHandler.ResetPassword)

			users.POST("/register", requireAuth, adminOnly, userHandler.Register)
			users.GET("", requireAuth, userHandler.ListUsers)
			users.GET("/me", requireAuth, userHandler.CurrentUser)
			users.GET("/roles", requireAuth, adminOnly, userHandler.ListRoles)
			users.PUT("/:userId", requireAuth, adminOnly, userHandler.UpdateUserRole)
		}

		teamManagement := api.Group("/team-management")
		teamManagement.Use(requireAuth)
		{
			teamManagement.GET("/teams", teamHandler.ListTeamSummaries)
			teamManagement.POST("/teams", teamHandler.CreateTeamSummary)
			teamManagement.POST("/assign-user", teamHandler.AssignUser)
			teamManagement.POST("/remove-user", teamHandler.RemoveUser)
			teamManagement.GET("/unassigned-users", teamHandler.ListUnassignedUsers)
			teamManagement.GET("/mentor-teams/:mentorId", teamHandler.ListMentorTeams)
		}

		teams := api.Group("/teams")
		teams.Use(requireAuth)
		{
			teams.GET("", teamHandler.ListTeams)
			teams.POST("", teamHandler.CreateTeam)
			teams.GET("/:teamId", teamHandler.GetTeam)
			teams.PUT("/:teamId", teamHandler.UpdateTeam)
			teams.DELETE("/:teamId", teamHandler.DeleteTeam)
			teams.POST("/:teamId/members", teamHandler.AddMember)
			teams.DELETE("/:teamId/members/:userId", teamHandler.RemoveMember)
		}

		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/:projectId", projectHandler.GetProject)
			projects.GET("/:projectId/tasks", projectHandler.ListTasks)
			projects.POST("/:projectId/tasks", projectHandler.CreateTask)
			projects.GET("/:projectId/files", fileHandler.ListProjectFiles)
			projects.POST("/:projectId/files", fileHandler.Upload)
		}

		tasks := api.Group("/tasks")
		{
			tasks.GET("/:taskId", requireAuth, projectHandler.GetTask)
			tasks.PATCH("/:taskId", requireAuth, projectHandler.UpdateTask)

			tasks.GET("/:taskId/assignees", optionalAuth, taskHandler.ListAssignees)
			tasks.POST("/:taskId/assignees", optionalAuth, taskHandler.AssignUser)
			tasks.DELETE("/:taskId/assignees/:userId", optionalAuth, taskHandler.UnassignUser)

			tasks.GET("/:taskId/comments", optionalAuth, commentHandler.ListTaskComments)
			tasks.POST("/:taskId/comments", optionalAuth, commentHandler.CreateTaskComment)
		}

		files := api.Group("/files")
		{
			files.GET("/:fileId", requireAuth, fileHandler.GetFile)

			files.GET("/:fileId/comments", optionalAuth, commentHandler.ListFileComments)
			files.POST("/:fileId/comments", optionalAuth, commentHandler.CreateFileComment)
			files.PUT("/:fileId/comments/:commentId", optionalAuth, commentHandler.UpdateFileComment)
			files.DELETE("/:fileId/comments/:commentId", optionalAuth, commentHandler.DeleteFileComment)
		}

		byName := api.Group("/file-comments/by-name")
		byName.Use(optionalAuth)
		{
			byName.GET("/:fileName", commentHandler.ListFileCommentsByName)
			byName.POST("/:fileName", commentHandler.CreateFileCommentByName)
		}

		notifications := api.Group("/notifications")
		notifications.Use(requireAuth)
		{
			notifications.GET("", notificationHandler.List)
			notifications.GET("/unread-count", notificationHandler.UnreadCount)
			notifications.PUT("/mark-all-read", notificationHandler.MarkAllAsRead)
			notifications.PUT("/:id/read", notificationHandler.MarkAsRead)
			notifications.POST("", notificationHandler.Create)
			notifications.DELETE("/:id", notificationHandler.Delete)
		}
	}

	return r
}
