package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"feedlink-backend/internal/models"
)

// ErrNotConfigured is returned when no backend origin has been configured
var ErrNotConfigured = errors.New("backend API is not configured")

// StatusError is a backend rejection kept whole, so handlers can relay the
// upstream status and body instead of collapsing the reply into a 500
type StatusError struct {
	StatusCode  int
	ContentType string
	Body        []byte
	Message     string
}

func (e *StatusError) Error() string {
	return e.Message
}

// Client talks to the external FeedLink backend. Every call is bound to the
// caller's context and the configured timeout; there are no retries — a proxy
// round trip is a single attempt, fail-fast.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an upstream client for the given backend origin
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Configured reports whether a backend origin is set
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// Response captures an upstream reply for verbatim relay
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// OK reports whether the upstream answered with a 2xx status
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// statusError wraps a non-2xx reply for relay, using the backend's "detail"
// field as the message when it has one
func (r *Response) statusError() *StatusError {
	return &StatusError{
		StatusCode:  r.StatusCode,
		ContentType: r.ContentType,
		Body:        r.Body,
		Message:     r.Detail(fmt.Sprintf("backend returned status %d", r.StatusCode)),
	}
}

// Detail extracts the backend's "detail" error field, falling back to the
// given message when the body has no such field
func (r *Response) Detail(fallback string) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(r.Body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return fallback
}

// Do forwards a request to the backend and returns the reply.
// path must include the resource's trailing slash, e.g. "/listings/".
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader, contentType string) (*Response, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach backend: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read backend response: %w", err)
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

// DoJSON forwards a JSON payload to the backend
func (c *Client) DoJSON(ctx context.Context, method, path string, payload interface{}) (*Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode upstream payload: %w", err)
		}
		body = bytes.NewReader(data)
	}
	return c.Do(ctx, method, path, body, "application/json")
}

// decodeCollection accepts both a raw JSON array and a {"data": [...]} wrapper
func decodeCollection(data []byte, out interface{}) error {
	if err := json.Unmarshal(data, out); err == nil {
		return nil
	}
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return fmt.Errorf("unexpected response shape: %w", err)
	}
	if wrapper.Data == nil {
		return fmt.Errorf("unexpected response shape: no data field")
	}
	return json.Unmarshal(wrapper.Data, out)
}

func (c *Client) fetch(ctx context.Context, resource string, out interface{}) error {
	resp, err := c.Do(ctx, http.MethodGet, "/"+resource+"/", nil, "")
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	return decodeCollection(resp.Body, out)
}

// Listings fetches all listings from the backend
func (c *Client) Listings(ctx context.Context) ([]models.Listing, error) {
	var listings []models.Listing
	if err := c.fetch(ctx, "listings", &listings); err != nil {
		return nil, fmt.Errorf("failed to fetch listings: %w", err)
	}
	return listings, nil
}

// Orders fetches all orders from the backend
func (c *Client) Orders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.fetch(ctx, "orders", &orders); err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return orders, nil
}

// WasteClaims fetches all waste claims from the backend
func (c *Client) WasteClaims(ctx context.Context) ([]models.WasteClaim, error) {
	var claims []models.WasteClaim
	if err := c.fetch(ctx, "wasteclaims", &claims); err != nil {
		return nil, fmt.Errorf("failed to fetch waste claims: %w", err)
	}
	return claims, nil
}

// Users fetches all users from the backend
func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.fetch(ctx, "users", &users); err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, nil
}

// PatchOrderStatus updates an order's status on the backend and returns the
// server-confirmed record. The returned order may be sparse; callers merge it
// over their cached copy rather than replacing it blindly.
func (c *Client) PatchOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) (*models.Order, error) {
	resp, err := c.DoJSON(ctx, http.MethodPatch, fmt.Sprintf("/orders/%d/", orderID), map[string]string{
		"order_status": string(status),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update order %d: %w", orderID, err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("failed to update order %d: %w", orderID, resp.statusError())
	}

	var confirmed models.Order
	if err := json.Unmarshal(resp.Body, &confirmed); err != nil {
		// A 2xx with an undecodable body still counts as success; the caller
		// keeps its local fields in that case.
		return nil, nil
	}
	return &confirmed, nil
}

// PatchClaimStatus updates a waste claim's status on the backend
func (c *Client) PatchClaimStatus(ctx context.Context, claimID int64, status models.ClaimStatus) (*models.WasteClaim, error) {
	resp, err := c.DoJSON(ctx, http.MethodPatch, fmt.Sprintf("/wasteclaims/%d/", claimID), map[string]string{
		"claim_status": string(status),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update waste claim %d: %w", claimID, err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("failed to update waste claim %d: %w", claimID, resp.statusError())
	}

	var confirmed models.WasteClaim
	if err := json.Unmarshal(resp.Body, &confirmed); err != nil {
		return nil, nil
	}
	return &confirmed, nil
}
