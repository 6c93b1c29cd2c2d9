package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/autoops/backend/internal/model"
	"github.com/autoops/backend/internal/service"
	"github.com/gin-gonic/gin"
)

type alertQueryService interface {
	GetAlertList(ctx context.Context, status string, limit int) ([]model.Alert, error)
	GetAlertDetail(ctx context.Context, id string) (*model.Alert, error)
	GetAlertStats(ctx context.Context) (model.AlertStats, error)
}

// AlertHandler - 대시보드 조회 핸들러
type AlertHandler struct {
	svc alertQueryService
}

func NewAlertHandler(svc alertQueryService) *AlertHandler {
	return &AlertHandler{svc: svc}
}

// GetAlerts godoc
// @Summary List alerts (newest first)
// @Tags alerts
// @Produce json
// @Param status query string false "new or processed"
// @Param limit query int false "max rows (default 100)"
// @Success 200 {object} model.AlertListEnvelope
// @Failure 400,500 {object} model.ErrorResponse
// @Router /api/v1/alerts [get]
func (h *AlertHandler) GetAlerts(c *gin.Context) {
	status := c.Query("status")
	if status != "" && status != model.AlertStatusNew && status != model.AlertStatusProcessed {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid status"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = parsed
	}

	alerts, err := h.svc.GetAlertList(c.Request.Context(), status, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.AlertListEnvelope{Status: "success", Data: alerts})
}

// GetAlertDetail godoc
// @Summary Get alert detail including ai_solution
// @Tags alerts
// @Produce json
// @Param id path string true "Alert ID"
// @Success 200 {object} model.AlertDetailEnvelope
// @Failure 404,500 {object} model.ErrorResponse
// @Router /api/v1/alerts/{id} [get]
func (h *AlertHandler) GetAlertDetail(c *gin.Context) {
	alert, err := h.svc.GetAlertDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrAlertNotFound) {
			c.JSON(http.StatusNotFound, model.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.AlertDetailEnvelope{Status: "success", Data: alert})
}

// GetAlertStats godoc
// @Summary Alert counters (total, critical, processed, pending)
// @Tags alerts
// @Produce json
// @Success 200 {object} model.AlertStatsEnvelope
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/alerts/stats [get]
func (h *AlertHandler) GetAlertStats(c *gin.Context) {
	stats, err := h.svc.GetAlertStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.AlertStatsEnvelope{Status: "success", Data: stats})
}
