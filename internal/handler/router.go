package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Routes - 라우터에 등록할 핸들러 묶음
type Routes struct {
	Webhook        *WebhookHandler
	Alerts         *AlertHandler
	Metrics        http.Handler
	AllowedOrigins []string
}

// NewRouter - gin 라우터 생성 및 엔드포인트 등록
func NewRouter(routes Routes) *gin.Engine {
	router := gin.Default()
	router.Use(CORSMiddleware(routes.AllowedOrigins))

	router.GET("/", Root)
	router.GET("/ping", Ping)
	if routes.Metrics != nil {
		router.GET("/metrics", gin.WrapH(routes.Metrics))
	}

	if routes.Webhook != nil {
		router.POST("/webhook", routes.Webhook.Ingest)
		router.POST("/webhook/ingest", routes.Webhook.Ingest)
	}

	if routes.Alerts != nil {
		api := router.Group("/api/v1")
		api.GET("/alerts", routes.Alerts.GetAlerts)
		api.GET("/alerts/stats", routes.Alerts.GetAlertStats)
		api.GET("/alerts/:id", routes.Alerts.GetAlertDetail)
	}

	return router
}
