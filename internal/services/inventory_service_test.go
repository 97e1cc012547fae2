package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"feedlink-backend/internal/models"
)

func TestIsExpired(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("past expiry is expired", func(t *testing.T) {
		assert.True(t, IsExpired(now.Add(-time.Hour), now))
	})

	t.Run("future expiry is not expired", func(t *testing.T) {
		assert.False(t, IsExpired(now.Add(time.Hour), now))
	})

	t.Run("zero expiry is never expired", func(t *testing.T) {
		assert.False(t, IsExpired(time.Time{}, now))
	})
}

func TestIsExpiringSoon(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("within the window", func(t *testing.T) {
		assert.True(t, IsExpiringSoon(now.Add(24*time.Hour), now, 3))
	})

	t.Run("boundary day counts", func(t *testing.T) {
		assert.True(t, IsExpiringSoon(now.Add(3*24*time.Hour), now, 3))
	})

	t.Run("just past the boundary does not", func(t *testing.T) {
		assert.False(t, IsExpiringSoon(now.Add(3*24*time.Hour+time.Second), now, 3))
	})

	t.Run("already expired does not", func(t *testing.T) {
		assert.False(t, IsExpiringSoon(now.Add(-time.Hour), now, 3))
	})

	t.Run("zero expiry does not", func(t *testing.T) {
		assert.False(t, IsExpiringSoon(time.Time{}, now, 3))
	})
}

func testInventoryService(t *testing.T, now time.Time) *InventoryService {
	t.Helper()
	svc := NewInventoryService(nil)
	svc.now = func() time.Time { return now }
	return svc
}

func inventoryFixtures(t *testing.T) []models.Listing {
	t.Helper()
	return []models.Listing{
		{ID: 1, ProductType: "Tomatoes", Category: "food", Quantity: models.Num(10), CreatedAt: ft(t, "2025-06-10T08:00:00Z"), ExpiryDate: ft(t, "2025-06-20T00:00:00Z")},
		{ID: 2, ProductType: "Tomato paste", Category: "food", Quantity: models.Num(5), CreatedAt: ft(t, "2025-06-12T08:00:00Z"), ExpiryDate: ft(t, "2025-06-01T00:00:00Z")},
		{ID: 3, ProductType: "Cardboard", Category: "recyclable", Quantity: models.Num(30), CreatedAt: ft(t, "2025-06-14T08:00:00Z")},
		{ID: 4, ProductType: "Bread", Category: "food", Quantity: models.Num(8), CreatedAt: models.FlexibleTime{}, ExpiryDate: ft(t, "2025-06-16T13:00:00Z")},
	}
}

func TestInventoryFilter(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := testInventoryService(t, now)
	listings := inventoryFixtures(t)

	t.Run("no filter returns everything newest first", func(t *testing.T) {
		got := svc.Filter(listings, InventoryFilter{})
		assert.Len(t, got, 4)
		assert.Equal(t, int64(3), got[0].ID)
		assert.Equal(t, int64(2), got[1].ID)
		assert.Equal(t, int64(1), got[2].ID)
		// Malformed created_at decodes as the zero time and sorts oldest
		assert.Equal(t, int64(4), got[3].ID)
	})

	t.Run("search is a case-insensitive prefix match", func(t *testing.T) {
		got := svc.Filter(listings, InventoryFilter{Search: "toma"})
		assert.Len(t, got, 2)

		got = svc.Filter(listings, InventoryFilter{Search: "paste"})
		assert.Empty(t, got)
	})

	t.Run("category is an exact match", func(t *testing.T) {
		got := svc.Filter(listings, InventoryFilter{Category: "recyclable"})
		assert.Len(t, got, 1)
		assert.Equal(t, int64(3), got[0].ID)
	})

	t.Run("status is derived from expiry", func(t *testing.T) {
		expired := svc.Filter(listings, InventoryFilter{Status: "expired"})
		assert.Len(t, expired, 1)
		assert.Equal(t, int64(2), expired[0].ID)

		available := svc.Filter(listings, InventoryFilter{Status: "available"})
		assert.Len(t, available, 3)
	})

	t.Run("missing expiry counts as available", func(t *testing.T) {
		got := svc.Filter(listings, InventoryFilter{Status: "available"})
		ids := []int64{got[0].ID, got[1].ID, got[2].ID}
		assert.Contains(t, ids, int64(3))
	})

	t.Run("date matches the upload calendar day", func(t *testing.T) {
		got := svc.Filter(listings, InventoryFilter{UploadDate: "2025-06-12"})
		assert.Len(t, got, 1)
		assert.Equal(t, int64(2), got[0].ID)
	})

	t.Run("malformed date filter matches nothing", func(t *testing.T) {
		got := svc.Filter(listings, InventoryFilter{UploadDate: "12/06/2025"})
		assert.Empty(t, got)
	})

	t.Run("filters combine", func(t *testing.T) {
		got := svc.Filter(listings, InventoryFilter{Search: "tomato", Status: "available"})
		assert.Len(t, got, 1)
		assert.Equal(t, int64(1), got[0].ID)
	})

	t.Run("filtering twice gives the same result", func(t *testing.T) {
		filter := InventoryFilter{Category: "food", Status: "available"}
		first := svc.Filter(listings, filter)
		second := svc.Filter(first, filter)
		assert.Equal(t, first, second)
	})
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 1, clampPage(0, 5))
	assert.Equal(t, 1, clampPage(-3, 5))
	assert.Equal(t, 3, clampPage(3, 5))
	assert.Equal(t, 5, clampPage(9, 5))
	assert.Equal(t, 1, clampPage(4, 0))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 10))
	assert.Equal(t, 1, totalPages(1, 10))
	assert.Equal(t, 1, totalPages(10, 10))
	assert.Equal(t, 2, totalPages(11, 10))
}

func TestPaginateListings(t *testing.T) {
	items := make([]models.Listing, 23)
	for i := range items {
		items[i].ID = int64(i + 1)
	}

	t.Run("first page is full", func(t *testing.T) {
		page, pagination := paginateListings(items, 1, 10)
		assert.Len(t, page, 10)
		assert.Equal(t, 1, pagination.Page)
		assert.Equal(t, 3, pagination.TotalPages)
		assert.Equal(t, 23, pagination.TotalItems)
	})

	t.Run("last page is partial", func(t *testing.T) {
		page, pagination := paginateListings(items, 3, 10)
		assert.Len(t, page, 3)
		assert.Equal(t, int64(21), page[0].ID)
		assert.Equal(t, 3, pagination.Page)
	})

	t.Run("out of range clamps to the last page", func(t *testing.T) {
		page, pagination := paginateListings(items, 99, 10)
		assert.Len(t, page, 3)
		assert.Equal(t, 3, pagination.Page)
	})

	t.Run("empty collection reports page one", func(t *testing.T) {
		page, pagination := paginateListings(nil, 2, 10)
		assert.Empty(t, page)
		assert.Equal(t, 1, pagination.Page)
		assert.Equal(t, 0, pagination.TotalPages)
	})
}

func TestInventoryView(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	store := newSeededStore(inventoryFixtures(t), nil, nil, nil)

	svc := NewInventoryService(store)
	svc.now = func() time.Time { return now }

	t.Run("serves a page with expiring-soon count", func(t *testing.T) {
		page, err := svc.View(context.Background(), InventoryFilter{}, 1)
		assert.NoError(t, err)
		assert.Len(t, page.Listings, 4)
		assert.Equal(t, 1, page.Pagination.TotalPages)
		// Only the bread expires within three days
		assert.Equal(t, 1, page.ExpiringSoon)
	})

	t.Run("expiring-soon counts the whole filtered set", func(t *testing.T) {
		page, err := svc.View(context.Background(), InventoryFilter{Category: "recyclable"}, 1)
		assert.NoError(t, err)
		assert.Equal(t, 0, page.ExpiringSoon)
	})
}
