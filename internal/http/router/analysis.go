package router

import (
	"frontier.app/frontier/internal/http/handler"
	"github.com/gin-gonic/gin"
)

func AnalysisRouter(router *gin.RouterGroup, handler *handler.AnalysisHandler) {
	router.POST("", handler.Create)
	router.GET("", handler.List)
	router.GET("/:id", handler.Get)
	router.DELETE("/:id", handler.Cancel)
	router.GET("/:id/result", handler.Result)
	router.GET("/:id/documents", handler.Documents)
}
