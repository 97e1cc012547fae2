package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"feedlink-backend/internal/services"
)

// DashboardHandlers serves the aggregate dashboard views
type DashboardHandlers struct {
	metrics *services.MetricsService
	store   *services.StoreService
	ws      *services.WebSocketService
}

// NewDashboardHandlers creates new dashboard handlers
func NewDashboardHandlers(metrics *services.MetricsService, store *services.StoreService, ws *services.WebSocketService) *DashboardHandlers {
	return &DashboardHandlers{
		metrics: metrics,
		store:   store,
		ws:      ws,
	}
}

// GetMetrics serves the dashboard card figures
func (h *DashboardHandlers) GetMetrics(c *gin.Context) {
	metrics, err := h.metrics.Compute(c.Request.Context())
	if err != nil {
		relayError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    metrics,
	})
}

// GetMonthly serves the 12-month revenue/weight chart
func (h *DashboardHandlers) GetMonthly(c *gin.Context) {
	buckets, err := h.metrics.Monthly(c.Request.Context())
	if err != nil {
		relayError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    buckets,
	})
}

// GetBadges serves achievement badge progress
func (h *DashboardHandlers) GetBadges(c *gin.Context) {
	badges, err := h.metrics.BadgeProgress(c.Request.Context())
	if err != nil {
		relayError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    badges,
	})
}

// GetHistory serves stored metric snapshots, newest first
func (h *DashboardHandlers) GetHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	snapshots, err := h.metrics.History(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to load metric history: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    snapshots,
	})
}

// Refresh forces a full mirror refresh and tells connected dashboards to
// re-fetch
func (h *DashboardHandlers) Refresh(c *gin.Context) {
	if err := h.store.Refresh(c.Request.Context()); err != nil {
		relayError(c, err)
		return
	}

	if h.ws != nil {
		h.ws.NotifyMetricsUpdated()
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Collections refreshed successfully",
	})
}
