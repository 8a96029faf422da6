package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/aidarbek/todochat/internal/transport/http/handler"
	"github.com/aidarbek/todochat/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(logger *slog.Logger, userHandler *handler.UserHandler, todoHandler *handler.TodoHandler, resolver middleware.TokenResolver) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	authMW := middleware.Auth(resolver)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "up"})
	})

	// Public user routes
	r.POST("/users", userHandler.Register)
	r.POST("/users/login", userHandler.Login)

	// Protected user routes
	me := r.Group("/users", authMW)
	me.GET("/me", userHandler.Me)
	me.DELETE("/me/token", userHandler.Logout)

	// Protected todo routes
	todos := r.Group("/todos", authMW)
	todos.POST("", todoHandler.Create)
	todos.GET("", todoHandler.List)
	todos.GET("/:id", todoHandler.GetByID)
	todos.PATCH("/:id", todoHandler.Update)
	todos.DELETE("/:id", todoHandler.Delete)

	return r
}
