package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"feedlink-backend/internal/models"
	"feedlink-backend/internal/upstream"
)

// StoreService mirrors the backend's collections in memory. It is the
// server-side counterpart of the dashboard's per-page fetch state: collections
// are refreshed on demand, each independently, and successful status mutations
// are merged into the mirror without a full refetch.
//
// Upstream array order is preserved on refresh and survives filtering; the
// orders and waste-claims tables rely on it as their default ordering.
type StoreService struct {
	client *upstream.Client
	maxAge time.Duration

	mu          sync.RWMutex
	listings    []models.Listing
	orders      []models.Order
	claims      []models.WasteClaim
	users       map[int64]models.User
	lastRefresh time.Time
}

// NewStoreService creates a new collection store
func NewStoreService(client *upstream.Client, maxAge time.Duration) *StoreService {
	return &StoreService{
		client: client,
		maxAge: maxAge,
		users:  make(map[int64]models.User),
	}
}

// Refresh fetches all collections from the backend. Fetches run concurrently
// and each collection updates independently, so one failing resource does not
// discard the others; the first error is reported.
func (s *StoreService) Refresh(ctx context.Context) error {
	var wg sync.WaitGroup
	var errMu sync.Mutex
	var firstErr error

	record := func(err error) {
		errMu.Lock()
		defer errMu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	wg.Add(4)

	go func() {
		defer wg.Done()
		listings, err := s.client.Listings(ctx)
		if err != nil {
			record(err)
			return
		}
		s.ReplaceListings(listings)
	}()

	go func() {
		defer wg.Done()
		orders, err := s.client.Orders(ctx)
		if err != nil {
			record(err)
			return
		}
		s.ReplaceOrders(orders)
	}()

	go func() {
		defer wg.Done()
		claims, err := s.client.WasteClaims(ctx)
		if err != nil {
			record(err)
			return
		}
		s.ReplaceClaims(claims)
	}()

	go func() {
		defer wg.Done()
		users, err := s.client.Users(ctx)
		if err != nil {
			record(err)
			return
		}
		s.ReplaceUsers(users)
	}()

	wg.Wait()

	if firstErr != nil {
		return fmt.Errorf("store refresh: %w", firstErr)
	}

	s.mu.Lock()
	s.lastRefresh = time.Now()
	s.mu.Unlock()

	return nil
}

// EnsureFresh refreshes the store when the mirror is older than maxAge
func (s *StoreService) EnsureFresh(ctx context.Context) error {
	s.mu.RLock()
	stale := time.Since(s.lastRefresh) > s.maxAge
	s.mu.RUnlock()

	if !stale {
		return nil
	}
	return s.Refresh(ctx)
}

// ReplaceListings swaps in a freshly fetched listing collection
func (s *StoreService) ReplaceListings(listings []models.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings = listings
}

// ReplaceOrders swaps in a freshly fetched order collection.
// Backend array order is kept as-is; it is the tables' default ordering.
func (s *StoreService) ReplaceOrders(orders []models.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = orders
}

// ReplaceClaims swaps in a freshly fetched waste-claim collection
func (s *StoreService) ReplaceClaims(claims []models.WasteClaim) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claims = claims
}

// ReplaceUsers swaps in a freshly fetched user collection
func (s *StoreService) ReplaceUsers(users []models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[int64]models.User, len(users))
	for _, u := range users {
		s.users[u.ID] = u
	}
}

// Listings returns a copy of the mirrored listing collection
func (s *StoreService) Listings() []models.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Listing, len(s.listings))
	copy(out, s.listings)
	return out
}

// Orders returns a copy of the mirrored order collection
func (s *StoreService) Orders() []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// Claims returns a copy of the mirrored waste-claim collection
func (s *StoreService) Claims() []models.WasteClaim {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.WasteClaim, len(s.claims))
	copy(out, s.claims)
	return out
}

// Users returns a copy of the mirrored user map
func (s *StoreService) Users() map[int64]models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]models.User, len(s.users))
	for id, u := range s.users {
		out[id] = u
	}
	return out
}

// ListingByID looks up a mirrored listing
func (s *StoreService) ListingByID(id int64) (models.Listing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.listings {
		if l.ID == id {
			return l, true
		}
	}
	return models.Listing{}, false
}

// ListingIndex returns the mirrored listings keyed by id
func (s *StoreService) ListingIndex() map[int64]models.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	index := make(map[int64]models.Listing, len(s.listings))
	for _, l := range s.listings {
		index[l.ID] = l
	}
	return index
}

// UserName resolves a user id to a display name; unknown ids resolve to ""
func (s *StoreService) UserName(id int64) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return u.DisplayName()
	}
	return ""
}

// ApplyOrderPatch merges a server-confirmed status change into the mirror.
// The cached entry keeps all local fields; only the status and, when the
// server sent one, the update timestamp are replaced.
func (s *StoreService) ApplyOrderPatch(orderID int64, status models.OrderStatus, confirmed *models.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].ID != orderID {
			continue
		}
		s.orders[i].Status = status
		if confirmed != nil && !confirmed.UpdatedAt.IsZero() {
			s.orders[i].UpdatedAt = confirmed.UpdatedAt
		}
		return
	}
}

// ApplyClaimPatch merges a server-confirmed status change into the mirror
func (s *StoreService) ApplyClaimPatch(claimID int64, status models.ClaimStatus, confirmed *models.WasteClaim) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.claims {
		if s.claims[i].ID != claimID {
			continue
		}
		s.claims[i].Status = status
		if confirmed != nil && !confirmed.ClaimTime.IsZero() {
			s.claims[i].ClaimTime = confirmed.ClaimTime
		}
		return
	}
}

// LastRefresh returns the time of the last successful full refresh
func (s *StoreService) LastRefresh() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh
}
