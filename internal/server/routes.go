package server

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SetupRoutes sets up the API routes.
func SetupRoutes(handler *Handler, logger logrus.FieldLogger) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(CORS())
	router.Use(Logger(logger))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		users := v1.Group("/users/:handle")
		{
			users.GET("", handler.GetUser)
			users.GET("/repos", handler.GetRepositories)
			users.GET("/report", handler.GetReport)
		}
	}

	return router
}
