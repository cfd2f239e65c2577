package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hemo-scheduler-api/internal/dto"
	"github.com/noah-isme/hemo-scheduler-api/internal/service"
	appErrors "github.com/noah-isme/hemo-scheduler-api/pkg/errors"
	"github.com/noah-isme/hemo-scheduler-api/pkg/response"
)

// AnalyticsHandler exposes capacity analytics and the allocation simulator.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	metrics   *service.MetricsService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService, metrics *service.MetricsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, metrics: metrics}
}

// Report godoc
// @Summary Capacity report with gaps and optimization candidates
// @Tags Analytics
// @Produce json
// @Param strategy query string false "late_start or anticipation"
// @Success 200 {object} response.Envelope
// @Router /analytics/report [get]
func (h *AnalyticsHandler) Report(c *gin.Context) {
	var q dto.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err, "invalid report query"))
		return
	}
	start := time.Now()
	report, err := h.analytics.Report(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, map[string]interface{}{
		"processing_time_ms": time.Since(start).Milliseconds(),
	})
}

// Stats returns the headline counters.
func (h *AnalyticsHandler) Stats(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.analytics.Stats(c.Request.Context()))
}

// Simulate godoc
// @Summary Rank free placements for a new session
// @Tags Analytics
// @Accept json
// @Produce json
// @Param payload body dto.SimulateRequest true "Simulation"
// @Success 200 {object} response.Envelope
// @Router /analytics/simulate [post]
func (h *AnalyticsHandler) Simulate(c *gin.Context) {
	var req dto.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid simulation payload"))
		return
	}
	resp, err := h.analytics.Simulate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

// System returns process counters for the admin dashboard.
func (h *AnalyticsHandler) System(c *gin.Context) {
	if h.metrics == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnavailable, "metrics disabled"))
		return
	}
	response.JSON(c, http.StatusOK, h.metrics.Snapshot())
}
