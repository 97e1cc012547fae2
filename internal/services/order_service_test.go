package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"feedlink-backend/internal/models"
)

func orderFixtures(t *testing.T) ([]models.Order, []models.User) {
	t.Helper()
	orders := []models.Order{
		{ID: 1, UserID: 101, Status: models.OrderStatusPending, TotalAmount: models.Num(100), OrderDate: ft(t, "2025-06-10T09:00:00Z")},
		{ID: 2, UserID: 102, Status: models.OrderStatusPicked, TotalAmount: models.Num(50), OrderDate: ft(t, "2025-06-11T09:00:00Z")},
		{ID: 3, UserID: 101, Status: models.OrderStatusPending, TotalAmount: models.Num(75), OrderDate: ft(t, "2025-06-11T15:00:00Z")},
	}
	users := []models.User{
		{ID: 101, FirstName: "jane", LastName: "mwangi", Role: models.UserRoleBuyer},
		{ID: 102, FirstName: "peter", LastName: "otieno", Role: models.UserRoleBuyer},
	}
	return orders, users
}

func TestOrderFilter(t *testing.T) {
	orders, users := orderFixtures(t)
	store := newSeededStore(nil, orders, nil, users)
	svc := NewOrderService(store, nil, nil)

	t.Run("empty and all pass every status", func(t *testing.T) {
		assert.Len(t, svc.Filter(orders, OrderFilter{}), 3)
		assert.Len(t, svc.Filter(orders, OrderFilter{Status: "all"}), 3)
		assert.Len(t, svc.Filter(orders, OrderFilter{Status: "All"}), 3)
	})

	t.Run("status narrows the rows", func(t *testing.T) {
		pending := svc.Filter(orders, OrderFilter{Status: "pending"})
		assert.Len(t, pending, 2)

		picked := svc.Filter(orders, OrderFilter{Status: "picked"})
		assert.Len(t, picked, 1)
		assert.Equal(t, int64(2), picked[0].ID)
	})

	t.Run("date matches the order calendar day", func(t *testing.T) {
		got := svc.Filter(orders, OrderFilter{Date: "2025-06-11"})
		assert.Len(t, got, 2)
		assert.Equal(t, int64(2), got[0].ID)
		assert.Equal(t, int64(3), got[1].ID)
	})

	t.Run("search is a substring of the buyer name", func(t *testing.T) {
		got := svc.Filter(orders, OrderFilter{Search: "mwan"})
		assert.Len(t, got, 2)
		assert.Equal(t, "Jane Mwangi", got[0].CustomerName)

		got = svc.Filter(orders, OrderFilter{Search: "OTIENO"})
		assert.Len(t, got, 1)
		assert.Equal(t, "Peter Otieno", got[0].CustomerName)
	})

	t.Run("unknown buyers resolve to an empty name", func(t *testing.T) {
		unknown := []models.Order{{ID: 9, UserID: 999}}
		got := svc.Filter(unknown, OrderFilter{})
		assert.Len(t, got, 1)
		assert.Equal(t, "", got[0].CustomerName)
	})

	t.Run("backend order is preserved", func(t *testing.T) {
		got := svc.Filter(orders, OrderFilter{Status: "pending"})
		assert.Equal(t, int64(1), got[0].ID)
		assert.Equal(t, int64(3), got[1].ID)
	})
}

func TestOrderView(t *testing.T) {
	orders := make([]models.Order, 13)
	for i := range orders {
		orders[i].ID = int64(i + 1)
		orders[i].UserID = 101
		orders[i].Status = models.OrderStatusPending
	}
	_, users := orderFixtures(t)
	store := newSeededStore(nil, orders, nil, users)
	svc := NewOrderService(store, nil, nil)

	t.Run("pages are six rows", func(t *testing.T) {
		page, err := svc.View(context.Background(), OrderFilter{}, 1)
		assert.NoError(t, err)
		assert.Len(t, page.Orders, 6)
		assert.Equal(t, 13, page.Pagination.TotalItems)
		assert.Equal(t, 3, page.Pagination.TotalPages)
	})

	t.Run("last page holds the remainder", func(t *testing.T) {
		page, err := svc.View(context.Background(), OrderFilter{}, 3)
		assert.NoError(t, err)
		assert.Len(t, page.Orders, 1)
		assert.Equal(t, int64(13), page.Orders[0].ID)
	})

	t.Run("out of range lands on the last page", func(t *testing.T) {
		page, err := svc.View(context.Background(), OrderFilter{}, 42)
		assert.NoError(t, err)
		assert.Equal(t, 3, page.Pagination.Page)
	})
}

func TestOrderUpdateStatus(t *testing.T) {
	t.Run("merges the confirmed change into the mirror", func(t *testing.T) {
		orders, users := orderFixtures(t)
		fixture := &backendFixture{
			Orders:    orders,
			Users:     users,
			PatchBody: `{"order_id": 1, "order_status": "picked", "updated_at": "2025-06-12T10:00:00Z"}`,
		}
		store, client := newFixtureStore(t, fixture)
		store.ReplaceOrders(orders)
		store.ReplaceUsers(users)

		notified := 0
		svc := NewOrderService(store, client, func() { notified++ })

		err := svc.UpdateStatus(context.Background(), 1, models.OrderStatusPicked)
		assert.NoError(t, err)
		assert.Equal(t, []string{"/orders/1/"}, fixture.PatchedPaths())
		assert.Equal(t, 1, notified)

		got := store.Orders()
		assert.Equal(t, models.OrderStatusPicked, got[0].Status)
		assert.Equal(t, ft(t, "2025-06-12T10:00:00Z"), got[0].UpdatedAt)
		// Local fields survive the merge
		assert.Equal(t, 100.0, got[0].TotalAmount.Value)
	})

	t.Run("keeps local fields when the confirmation is sparse", func(t *testing.T) {
		orders, users := orderFixtures(t)
		fixture := &backendFixture{Orders: orders, Users: users, PatchBody: `{"ok": true}`}
		store, client := newFixtureStore(t, fixture)
		store.ReplaceOrders(orders)

		svc := NewOrderService(store, client, nil)
		err := svc.UpdateStatus(context.Background(), 1, models.OrderStatusPicked)
		assert.NoError(t, err)

		got := store.Orders()
		assert.Equal(t, models.OrderStatusPicked, got[0].Status)
		assert.True(t, got[0].UpdatedAt.IsZero())
	})

	t.Run("backend rejection leaves the mirror untouched", func(t *testing.T) {
		orders, users := orderFixtures(t)
		fixture := &backendFixture{
			Orders:      orders,
			Users:       users,
			PatchStatus: 400,
			PatchBody:   `{"detail": "order already picked"}`,
		}
		store, client := newFixtureStore(t, fixture)
		store.ReplaceOrders(orders)

		notified := 0
		svc := NewOrderService(store, client, func() { notified++ })

		err := svc.UpdateStatus(context.Background(), 1, models.OrderStatusPicked)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "order already picked")
		assert.Equal(t, 0, notified)

		got := store.Orders()
		assert.Equal(t, models.OrderStatusPending, got[0].Status)
	})

	t.Run("rejects unknown statuses locally", func(t *testing.T) {
		orders, users := orderFixtures(t)
		fixture := &backendFixture{Orders: orders, Users: users}
		store, client := newFixtureStore(t, fixture)

		svc := NewOrderService(store, client, nil)
		err := svc.UpdateStatus(context.Background(), 1, models.OrderStatus("shipped"))
		assert.Error(t, err)
		assert.Empty(t, fixture.PatchedPaths())
	})
}
