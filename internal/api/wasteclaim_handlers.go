package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"feedlink-backend/internal/models"
	"feedlink-backend/internal/services"
	"feedlink-backend/internal/upstream"
)

// WasteClaimHandlers serves the waste-claims table and proxies claim operations
type WasteClaimHandlers struct {
	client *upstream.Client
	claims *services.WasteClaimService
}

// NewWasteClaimHandlers creates new waste claim handlers
func NewWasteClaimHandlers(client *upstream.Client, claims *services.WasteClaimService) *WasteClaimHandlers {
	return &WasteClaimHandlers{
		client: client,
		claims: claims,
	}
}

// GetClaims serves the filtered, paginated waste-claims table
func (h *WasteClaimHandlers) GetClaims(c *gin.Context) {
	filter := services.ClaimFilter{
		Status: c.Query("status"),
		Date:   c.Query("date"),
		Search: c.Query("search"),
	}

	page, err := h.claims.View(c.Request.Context(), filter, queryPage(c))
	if err != nil {
		relayError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    page,
	})
}

// GetClaim relays a single waste claim from the backend
func (h *WasteClaimHandlers) GetClaim(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	resp, err := h.client.Do(c.Request.Context(), http.MethodGet, fmt.Sprintf("/wasteclaims/%d/", id), nil, "")
	if err != nil {
		relayError(c, err)
		return
	}
	relay(c, resp)
}

type claimStatusRequest struct {
	WasteID int64  `json:"waste_id"`
	Status  string `json:"claim_status"`
}

func (h *WasteClaimHandlers) updateStatus(c *gin.Context, claimID int64, rawStatus string) {
	if !requireFields(c, map[string]string{"claim_status": rawStatus}, []string{"claim_status"}) {
		return
	}

	status := models.ClaimStatus(rawStatus)
	if !status.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid claim status: " + rawStatus,
		})
		return
	}

	if err := h.claims.UpdateStatus(c.Request.Context(), claimID, status); err != nil {
		relayError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Claim status updated successfully",
	})
}

// UpdateClaimStatus PATCHes a status change for the claim in the URL
func (h *WasteClaimHandlers) UpdateClaimStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req claimStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	h.updateStatus(c, id, req.Status)
}

// UpdateClaimStatusByBody PATCHes a status change for the claim named in the
// request body (the collection-level endpoint)
func (h *WasteClaimHandlers) UpdateClaimStatusByBody(c *gin.Context) {
	var req claimStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	if req.WasteID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "waste_id is required",
		})
		return
	}

	h.updateStatus(c, req.WasteID, req.Status)
}

// VerifyPIN checks a collection PIN against the mirrored claim
func (h *WasteClaimHandlers) VerifyPIN(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		PIN string `json:"pin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	if !requireFields(c, map[string]string{"pin": req.PIN}, []string{"pin"}) {
		return
	}

	valid, err := h.claims.VerifyPIN(id, req.PIN)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"valid": valid},
	})
}
