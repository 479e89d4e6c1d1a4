package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all application routes
func SetupRoutes(router *gin.Engine, h *Handlers) {
	// Quiz routes, at the paths the front end calls
	router.GET("/cases_info", h.ListCases)
	router.POST("/check_answer", h.CheckAnswer)

	api := router.Group("/api")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/cache/stats", h.CacheStats)
		api.GET("/answers", h.ListAnswersAPI)
	}
}
