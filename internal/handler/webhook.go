// 외부 모니터링 도구의 Alert 웹훅 요청을 처리하는 핸들러
//
// 요청 흐름:
//  1. POST /webhook 또는 POST /webhook/ingest로 JSON 전송
//  2. 페이로드를 AlertPayload로 파싱
//  3. service 레이어에서 tenant 확인 및 저장 (status=new)

package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/autoops/backend/internal/model"
	"github.com/autoops/backend/internal/service"
	"github.com/gin-gonic/gin"
)

const apiKeyHeader = "X-API-Key"

type ingestService interface {
	Ingest(ctx context.Context, apiKey string, payload model.AlertPayload) (string, error)
}

// WebhookHandler 구조체 정의
type WebhookHandler struct {
	svc ingestService
}

func NewWebhookHandler(svc ingestService) *WebhookHandler {
	return &WebhookHandler{svc: svc}
}

// Ingest godoc
// @Summary Queue an alert for the remediation worker
// @Tags webhook
// @Accept json
// @Produce json
// @Param X-API-Key header string false "Tenant API key (tenant mode)"
// @Param request body model.AlertPayload true "Alert payload"
// @Success 200 {object} model.IngestResponse
// @Failure 400,401,403,500 {object} model.ErrorResponse
// @Router /webhook [post]
func (h *WebhookHandler) Ingest(c *gin.Context) {
	var payload model.AlertPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Printf("Failed to parse webhook: %v", err)
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid payload"})
		return
	}

	id, err := h.svc.Ingest(c.Request.Context(), c.GetHeader(apiKeyHeader), payload)
	if err != nil {
		status := ingestErrorStatus(err)
		if status == http.StatusInternalServerError {
			log.Printf("Failed to store alert: %v", err)
		}
		c.JSON(status, model.ErrorResponse{Error: err.Error()})
		return
	}

	log.Printf("Alert queued (alert_id=%s, source=%s, severity=%s)", id, payload.Source, payload.Severity)
	c.JSON(http.StatusOK, model.IngestResponse{
		Status: "success",
		Msg:    "Alert queued for AI Agent",
		ID:     id,
	})
}

func ingestErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrMissingAPIKey):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrInvalidAPIKey):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidPayload):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
