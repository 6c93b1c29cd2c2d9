package handler

import (
	"net/http"

	"github.com/autoops/backend/internal/model"
	"github.com/gin-gonic/gin"
)

// 헬스체크 엔드포인트
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, model.PingResponse{Message: "pong"})
}

// 루트 엔드포인트
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, model.StatusResponse{Status: "AutoOps Listener is Online"})
}
