package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"feedlink-backend/internal/upstream"
)

// relay writes an upstream reply back to the caller verbatim: same status,
// same body, same content type
func relay(c *gin.Context, resp *upstream.Response) {
	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(resp.StatusCode, contentType, resp.Body)
}

// relayError maps proxy-side failures onto the error taxonomy: a missing
// backend origin is a configuration error, a backend rejection keeps its
// upstream status and body, and everything else is a 500 round-trip failure.
func relayError(c *gin.Context, err error) {
	if errors.Is(err, upstream.ErrNotConfigured) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Backend API is not configured. Set BASE_URL.",
		})
		return
	}

	var rejected *upstream.StatusError
	if errors.As(err, &rejected) {
		if len(rejected.Body) > 0 {
			relay(c, &upstream.Response{
				StatusCode:  rejected.StatusCode,
				ContentType: rejected.ContentType,
				Body:        rejected.Body,
			})
			return
		}
		c.JSON(rejected.StatusCode, gin.H{
			"success": false,
			"error":   rejected.Message,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

// pathID parses the numeric :id route parameter
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid id parameter",
		})
		return 0, false
	}
	return id, true
}

// queryPage parses the page query parameter, defaulting to 1
func queryPage(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// requireFields answers 400 naming the first missing field; returns false
// when validation failed
func requireFields(c *gin.Context, fields map[string]string, order []string) bool {
	for _, name := range order {
		if fields[name] == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   name + " is required",
			})
			return false
		}
	}
	return true
}
