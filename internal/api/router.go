package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/taskhub/task-manager/docs"
	"github.com/taskhub/task-manager/internal/api/handler"
	"github.com/taskhub/task-manager/internal/api/middleware"
	"github.com/taskhub/task-manager/internal/core/ports"
	"github.com/taskhub/task-manager/internal/core/service"
	"github.com/taskhub/task-manager/internal/infrastructure/config"
	mongodb "github.com/taskhub/task-manager/internal/infrastructure/db/mongo"
	redisdb "github.com/taskhub/task-manager/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The notifier is passed in so the caller can drain in-flight email sends on
// shutdown.
func NewRouter(db *mongo.Database, rdb *redis.Client, notifier ports.Notifier, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("taskman"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	taskRepo := mongodb.NewTaskRepository(db)
	imageCache := redisdb.NewImageCache(rdb, log)

	userService := service.NewUserService(userRepo, taskRepo, notifier, imageCache, cfg.JWTSecret, log)
	taskService := service.NewTaskService(taskRepo, imageCache, log)

	userHandler := handler.NewUserHandler(userService)
	taskHandler := handler.NewTaskHandler(taskService)
	auth := middleware.Auth(cfg.JWTSecret, userRepo)

	// --- User routes ---
	e.POST("/users", userHandler.Signup)
	e.POST("/users/login", userHandler.Login)
	e.POST("/users/logout", userHandler.Logout, auth)
	e.POST("/users/logoutAll", userHandler.LogoutAll, auth)
	e.GET("/users/me", userHandler.Me, auth)
	e.PATCH("/users/me", userHandler.UpdateMe, auth)
	e.DELETE("/users/me", userHandler.DeleteMe, auth)
	e.POST("/users/me/avatar", userHandler.UploadAvatar, auth)
	e.DELETE("/users/me/avatar", userHandler.DeleteAvatar, auth)
	e.GET("/users/:id/avatar", userHandler.Avatar) // public

	// --- Task routes ---
	e.GET("/tasks", taskHandler.List, auth)
	e.POST("/tasks", taskHandler.Create, auth)
	e.GET("/tasks/:id", taskHandler.Get, auth)
	e.PATCH("/tasks/:id", taskHandler.Update, auth)
	e.DELETE("/tasks/:id", taskHandler.Delete, auth)
	e.POST("/tasks/:id/image", taskHandler.UploadImage, auth)
	e.DELETE("/tasks/:id/image", taskHandler.DeleteImage, auth)
	e.GET("/tasks/:id/image", taskHandler.Image) // public

	// --- Operational routes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
