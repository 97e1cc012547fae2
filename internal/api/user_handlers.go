package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"feedlink-backend/internal/models"
	"feedlink-backend/internal/upstream"
)

// UserHandlers serves the producer directory
type UserHandlers struct {
	client *upstream.Client
}

// NewUserHandlers creates new user handlers
func NewUserHandlers(client *upstream.Client) *UserHandlers {
	return &UserHandlers{client: client}
}

// GetProducers fetches the backend's users and returns only producers
func (h *UserHandlers) GetProducers(c *gin.Context) {
	users, err := h.client.Users(c.Request.Context())
	if err != nil {
		relayError(c, err)
		return
	}

	producers := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.IsProducer() {
			producers = append(producers, u)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    producers,
		"meta": gin.H{
			"count": len(producers),
		},
	})
}
