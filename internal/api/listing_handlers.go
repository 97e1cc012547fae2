package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"feedlink-backend/internal/models"
	"feedlink-backend/internal/services"
	"feedlink-backend/internal/upstream"
)

// ListingHandlers proxies listing CRUD to the backend and serves the
// filtered inventory view
type ListingHandlers struct {
	client    *upstream.Client
	inventory *services.InventoryService
}

// NewListingHandlers creates new listing handlers
func NewListingHandlers(client *upstream.Client, inventory *services.InventoryService) *ListingHandlers {
	return &ListingHandlers{
		client:    client,
		inventory: inventory,
	}
}

// GetListings relays the backend's listing collection verbatim
func (h *ListingHandlers) GetListings(c *gin.Context) {
	resp, err := h.client.Do(c.Request.Context(), http.MethodGet, "/listings/", nil, "")
	if err != nil {
		relayError(c, err)
		return
	}
	relay(c, resp)
}

// CreateListing validates the required fields and forwards the new listing
func (h *ListingHandlers) CreateListing(c *gin.Context) {
	var req models.ListingCreation
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request data: " + err.Error(),
		})
		return
	}

	if !requireFields(c, map[string]string{
		"product_type": req.ProductType,
		"category":     req.Category,
		"quantity":     req.Quantity,
		"unit":         req.Unit,
	}, []string{"product_type", "category", "quantity", "unit"}) {
		return
	}

	resp, err := h.client.DoJSON(c.Request.Context(), http.MethodPost, "/listings/", req)
	if err != nil {
		relayError(c, err)
		return
	}
	relay(c, resp)
}

// UpdateListing forwards a listing update to the backend
func (h *ListingHandlers) UpdateListing(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Failed to read request body: " + err.Error(),
		})
		return
	}

	resp, err := h.client.Do(c.Request.Context(), http.MethodPut, fmt.Sprintf("/listings/%d/", id), bytes.NewReader(body), "application/json")
	if err != nil {
		relayError(c, err)
		return
	}
	relay(c, resp)
}

// DeleteListing forwards a listing deletion to the backend
func (h *ListingHandlers) DeleteListing(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	resp, err := h.client.Do(c.Request.Context(), http.MethodDelete, fmt.Sprintf("/listings/%d/", id), nil, "")
	if err != nil {
		relayError(c, err)
		return
	}
	relay(c, resp)
}

// UploadCSV validates a bulk-listing CSV and forwards it to the backend.
// Validation stops at "is this parseable CSV with rows"; the backend owns
// the column semantics.
func (h *ListingHandlers) UploadCSV(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "file is required",
		})
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid file type: " + header.Filename,
		})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Failed to read uploaded file: " + err.Error(),
		})
		return
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid CSV file: " + err.Error(),
		})
		return
	}
	if len(records) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "CSV file has no data rows",
		})
		return
	}

	// Re-wrap the file into a fresh multipart body for the backend
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", header.Filename)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to build upload: " + err.Error(),
		})
		return
	}
	if _, err := part.Write(data); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to build upload: " + err.Error(),
		})
		return
	}
	if err := writer.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to build upload: " + err.Error(),
		})
		return
	}

	resp, err := h.client.Do(c.Request.Context(), http.MethodPost, "/listings/upload-csv/", &buf, writer.FormDataContentType())
	if err != nil {
		relayError(c, err)
		return
	}
	relay(c, resp)
}

// GetInventory serves the filtered, paginated inventory view
func (h *ListingHandlers) GetInventory(c *gin.Context) {
	filter := services.InventoryFilter{
		Search:     c.Query("search"),
		Category:   c.Query("category"),
		Status:     c.Query("status"),
		UploadDate: c.Query("date"),
	}

	page, err := h.inventory.View(c.Request.Context(), filter, queryPage(c))
	if err != nil {
		relayError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    page,
	})
}
