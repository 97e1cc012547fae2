package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"feedlink-backend/internal/models"
	"feedlink-backend/internal/upstream"
)

// OrdersPageSize is the fixed page size of the orders table
const OrdersPageSize = 6

// OrderFilter holds the orders table's filter controls
type OrderFilter struct {
	Status string // "", "all", "pending" or "picked"
	Date   string // exact calendar day of order_date, YYYY-MM-DD
	Search string // case-insensitive substring of the buyer's display name
}

// OrderPage is one rendered page of the orders table
type OrderPage struct {
	Orders     []OrderRow        `json:"orders"`
	Pagination models.Pagination `json:"pagination"`
}

// OrderRow is an order joined with its resolved buyer name
type OrderRow struct {
	models.Order
	CustomerName string `json:"customer_name"`
}

// OrderService produces the filtered orders view and applies status updates
type OrderService struct {
	store  *StoreService
	client *upstream.Client
	notify func()
}

// NewOrderService creates a new order service. notify, when non-nil, is
// called after a successful status mutation (dashboard refresh broadcast).
func NewOrderService(store *StoreService, client *upstream.Client, notify func()) *OrderService {
	return &OrderService{
		store:  store,
		client: client,
		notify: notify,
	}
}

// Filter applies the filter controls to an order collection. The incoming
// order of the slice — the backend's order — is preserved.
func (s *OrderService) Filter(orders []models.Order, filter OrderFilter) []OrderRow {
	status := strings.ToLower(strings.TrimSpace(filter.Status))
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	var day time.Time
	if filter.Date != "" {
		parsed, err := time.Parse("2006-01-02", filter.Date)
		if err == nil {
			day = parsed
		}
	}

	rows := make([]OrderRow, 0, len(orders))
	for _, o := range orders {
		if status != "" && status != "all" && string(o.Status) != status {
			continue
		}
		if filter.Date != "" && !o.OrderDate.SameDay(day) {
			continue
		}

		name := s.store.UserName(o.UserID)
		if search != "" && !strings.Contains(strings.ToLower(name), search) {
			continue
		}

		rows = append(rows, OrderRow{Order: o, CustomerName: name})
	}

	return rows
}

// View returns one page of the filtered orders table
func (s *OrderService) View(ctx context.Context, filter OrderFilter, page int) (*OrderPage, error) {
	if err := s.store.EnsureFresh(ctx); err != nil {
		return nil, err
	}

	rows := s.Filter(s.store.Orders(), filter)

	total := totalPages(len(rows), OrdersPageSize)
	page = clampPage(page, total)
	start := (page - 1) * OrdersPageSize
	end := start + OrdersPageSize
	if start > len(rows) {
		start = len(rows)
	}
	if end > len(rows) {
		end = len(rows)
	}

	return &OrderPage{
		Orders: rows[start:end],
		Pagination: models.Pagination{
			Page:       page,
			PageSize:   OrdersPageSize,
			TotalItems: len(rows),
			TotalPages: total,
		},
	}, nil
}

// UpdateStatus PATCHes the new status to the backend and, on success, merges
// the server-confirmed fields into the cached order. On failure the cache is
// untouched and the error propagates so the caller can react.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid order status: %s", status)
	}

	confirmed, err := s.client.PatchOrderStatus(ctx, orderID, status)
	if err != nil {
		return err
	}

	s.store.ApplyOrderPatch(orderID, status, confirmed)

	if s.notify != nil {
		s.notify()
	}
	return nil
}
