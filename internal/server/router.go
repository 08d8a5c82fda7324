package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/yukikurage/devboard-api/internal/handlers"
	"github.com/yukikurage/devboard-api/internal/middleware"
	"github.com/yukikurage/devboard-api/internal/services"
)

// Deps are the services the router dispatches to.
type Deps struct {
	Users    *services.UserService
	Tasks    *services.TaskService
	Comments *services.CommentService
	Admin    *services.AdminService
	// AuthLimiter throttles signup and login. Nil disables throttling.
	AuthLimiter middleware.Limiter
	Ping        handlers.Pinger
	Log         zerolog.Logger
}

// NewRouter wires every route onto a new gin engine.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(d.Log),
		middleware.Metrics(),
		middleware.ErrorHandler(d.Log),
	)

	authHandler := handlers.NewAuthHandler(d.Users)
	userHandler := handlers.NewUserHandler(d.Users)
	taskHandler := handlers.NewTaskHandler(d.Tasks)
	commentHandler := handlers.NewCommentHandler(d.Comments)
	adminHandler := handlers.NewAdminHandler(d.Admin)
	healthHandler := handlers.NewHealthHandler(d.Ping, d.Log)

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.RequireAuth(d.Users)
	requireAdmin := middleware.RequireAdmin()

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			throttle := middleware.RateLimit(d.AuthLimiter, d.Log)
			auth.POST("/signup", throttle, authHandler.Signup)
			auth.POST("/login", throttle, authHandler.Login)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
		}

		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("/me", userHandler.GetProfile)
			users.PUT("/me", userHandler.UpdateProfile)
			users.GET("", requireAdmin, userHandler.ListUsers)
		}

		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.POST("/suggest", taskHandler.SuggestTasks)
			tasks.GET("/my", taskHandler.ListMyTasks)
			tasks.GET("/status/:status", taskHandler.ListTasksByStatus)
			tasks.DELETE("/admin/:id", requireAdmin, taskHandler.AdminDeleteTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.GET("/:id/detail", taskHandler.GetTaskDetail)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.RequireTaskOwnerOrAdmin(d.Tasks), taskHandler.DeleteTask)
			tasks.POST("/:id/comments", commentHandler.CreateComment)
			tasks.GET("/:id/comments", commentHandler.ListComments)
		}

		comments := api.Group("/comments")
		comments.Use(requireAuth)
		{
			comments.DELETE("/:commentId", commentHandler.DeleteComment)
		}

		admin := api.Group("/admin")
		admin.Use(requireAuth, requireAdmin)
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/users/:id", adminHandler.GetUser)
			admin.GET("/dashboard", adminHandler.Dashboard)
		}
	}

	return r
}
