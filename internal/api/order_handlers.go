package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"feedlink-backend/internal/models"
	"feedlink-backend/internal/services"
	"feedlink-backend/internal/upstream"
)

// OrderHandlers serves the orders table and proxies order operations
type OrderHandlers struct {
	client *upstream.Client
	orders *services.OrderService
}

// NewOrderHandlers creates new order handlers
func NewOrderHandlers(client *upstream.Client, orders *services.OrderService) *OrderHandlers {
	return &OrderHandlers{
		client: client,
		orders: orders,
	}
}

// GetOrders serves the filtered, paginated orders table
func (h *OrderHandlers) GetOrders(c *gin.Context) {
	filter := services.OrderFilter{
		Status: c.Query("status"),
		Date:   c.Query("date"),
		Search: c.Query("search"),
	}

	page, err := h.orders.View(c.Request.Context(), filter, queryPage(c))
	if err != nil {
		relayError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    page,
	})
}

// GetOrder relays a single order from the backend
func (h *OrderHandlers) GetOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	resp, err := h.client.Do(c.Request.Context(), http.MethodGet, fmt.Sprintf("/orders/%d/", id), nil, "")
	if err != nil {
		relayError(c, err)
		return
	}
	relay(c, resp)
}

// UpdateOrderStatus PATCHes a status change through to the backend and
// merges the confirmed change into the mirrored collection
func (h *OrderHandlers) UpdateOrderStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"order_status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	if !requireFields(c, map[string]string{"order_status": req.Status}, []string{"order_status"}) {
		return
	}

	status := models.OrderStatus(req.Status)
	if !status.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid order status: " + req.Status,
		})
		return
	}

	if err := h.orders.UpdateStatus(c.Request.Context(), id, status); err != nil {
		relayError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order status updated successfully",
	})
}
