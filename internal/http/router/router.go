package router

import (
	"net/http"
	"time"

	"frontier.app/frontier/internal/http/handler"
	"frontier.app/frontier/internal/service"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, analyses service.AnalysisService) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "frontier",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	v1 := router.Group("/api/v1")
	{
		analysisHandler := handler.NewAnalysisHandler(analyses)
		AnalysisRouter(v1.Group("/analyses"), analysisHandler)
	}
}
