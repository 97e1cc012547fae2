package services

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"feedlink-backend/internal/models"
	"feedlink-backend/internal/upstream"
)

func ft(t *testing.T, value string) models.FlexibleTime {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad fixture timestamp %q: %v", value, err)
	}
	return models.FlexibleTime{Time: parsed}
}

// backendFixture is a fake FeedLink backend serving the four collections and
// accepting status PATCHes.
type backendFixture struct {
	Listings []models.Listing
	Orders   []models.Order
	Claims   []models.WasteClaim
	Users    []models.User

	// Replies for PATCH requests. Zero PatchStatus means 200.
	PatchStatus int
	PatchBody   string

	mu           sync.Mutex
	requests     int
	patchedPaths []string
}

func (f *backendFixture) record(path string, patched bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	if patched {
		f.patchedPaths = append(f.patchedPaths, path)
	}
}

// Requests returns how many calls the fake backend has served
func (f *backendFixture) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

// PatchedPaths returns the paths of the PATCH requests served so far
func (f *backendFixture) PatchedPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.patchedPaths))
	copy(out, f.patchedPaths)
	return out
}

func (f *backendFixture) server(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/listings/", func(c *gin.Context) {
		f.record(c.Request.URL.Path, false)
		c.JSON(http.StatusOK, f.Listings)
	})
	router.GET("/orders/", func(c *gin.Context) {
		f.record(c.Request.URL.Path, false)
		c.JSON(http.StatusOK, f.Orders)
	})
	router.GET("/wasteclaims/", func(c *gin.Context) {
		f.record(c.Request.URL.Path, false)
		c.JSON(http.StatusOK, f.Claims)
	})
	router.GET("/users/", func(c *gin.Context) {
		f.record(c.Request.URL.Path, false)
		c.JSON(http.StatusOK, f.Users)
	})

	patch := func(c *gin.Context) {
		f.record(c.Request.URL.Path, true)
		status := f.PatchStatus
		if status == 0 {
			status = http.StatusOK
		}
		body := f.PatchBody
		if body == "" {
			body = "{}"
		}
		c.Data(status, "application/json", []byte(body))
	}
	router.PATCH("/orders/:id/", patch)
	router.PATCH("/wasteclaims/:id/", patch)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

// newFixtureStore wires a store against the fake backend
func newFixtureStore(t *testing.T, fixture *backendFixture) (*StoreService, *upstream.Client) {
	t.Helper()
	server := fixture.server(t)
	client := upstream.NewClient(server.URL, 5*time.Second)
	store := NewStoreService(client, time.Minute)
	return store, client
}

// newSeededStore builds a store with mirrored collections already in place,
// marked fresh so views never reach for a backend
func newSeededStore(listings []models.Listing, orders []models.Order, claims []models.WasteClaim, users []models.User) *StoreService {
	store := NewStoreService(upstream.NewClient("", time.Second), time.Hour)
	store.ReplaceListings(listings)
	store.ReplaceOrders(orders)
	store.ReplaceClaims(claims)
	store.ReplaceUsers(users)
	store.lastRefresh = time.Now()
	return store
}
