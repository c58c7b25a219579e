package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tieubaoca/manualbot/middleware"
	"github.com/tieubaoca/manualbot/service"
)

type RouterConfig struct {
	Ingest    *service.IngestService
	Extractor *service.ExtractService
	Answer    *service.AnswerService
	Manuals   *service.ManualService
	Search    *service.SearchService
	Chat      *service.WebSocketService
	// DELETE /manual is only served when AdminSecret is set.
	AdminSecret string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = maxUploadMemory
	router.Use(gin.Recovery(), middleware.RequestLogger(), CorsMiddleware())

	uploadHandler := NewUploadHandler(cfg.Ingest, cfg.Extractor)
	manualHandler := NewManualHandler(cfg.Manuals)
	chatHandler := NewChatHandler(cfg.Answer, cfg.Chat)
	searchHandler := NewSearchHandler(cfg.Search)

	router.GET("/health", manualHandler.HandleHealth)

	router.POST("/upload", uploadHandler.HandleUpload)
	router.POST("/extract", uploadHandler.HandleExtract)

	router.GET("/manuals", manualHandler.HandleListManuals)
	router.GET("/manual", manualHandler.HandleGetManual)

	router.POST("/search", searchHandler.HandleSearch)
	router.POST("/ask", chatHandler.HandleAsk)
	router.GET("/ws", chatHandler.HandleWebSocket)

	if cfg.AdminSecret != "" {
		admin := router.Group("/")
		admin.Use(middleware.AdminAuth(cfg.AdminSecret))
		admin.DELETE("/manual", manualHandler.HandleDeleteManual)
	}
	return router
}
