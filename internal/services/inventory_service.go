package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"feedlink-backend/internal/models"
)

// InventoryPageSize is the fixed page size of the inventory table
const InventoryPageSize = 10

// ExpiringSoonDays is the default window for the expiring-soon indicator
const ExpiringSoonDays = 3

// InventoryFilter holds the inventory view's filter controls. Empty fields
// pass all items through.
type InventoryFilter struct {
	Search     string // case-insensitive prefix match on product_type
	Category   string // exact match
	Status     string // derived status: "available" or "expired"
	UploadDate string // exact calendar day of created_at, YYYY-MM-DD
}

// InventoryPage is one rendered page of the inventory view
type InventoryPage struct {
	Listings     []models.Listing  `json:"listings"`
	Pagination   models.Pagination `json:"pagination"`
	ExpiringSoon int               `json:"expiringSoon"`
}

// InventoryService produces the filtered, paginated inventory view
type InventoryService struct {
	store *StoreService
	now   func() time.Time
}

// NewInventoryService creates a new inventory service
func NewInventoryService(store *StoreService) *InventoryService {
	return &InventoryService{
		store: store,
		now:   time.Now,
	}
}

// IsExpired reports whether the given expiry timestamp is in the past.
// Zero (missing or malformed) timestamps are never expired.
func IsExpired(expiry time.Time, now time.Time) bool {
	if expiry.IsZero() {
		return false
	}
	return expiry.Before(now)
}

// IsExpiringSoon reports whether the expiry falls within the next days days.
// The boundary day counts as expiring soon; zero timestamps never do.
func IsExpiringSoon(expiry time.Time, now time.Time, days int) bool {
	if expiry.IsZero() {
		return false
	}
	until := expiry.Sub(now)
	if until < 0 {
		return false
	}
	return until <= time.Duration(days)*24*time.Hour
}

// Filter applies the filter controls to a listing collection and returns a
// newest-first ordered result. Listings with malformed created_at timestamps
// decode as the zero time and therefore sort oldest.
func (s *InventoryService) Filter(listings []models.Listing, filter InventoryFilter) []models.Listing {
	now := s.now()
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	filtered := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		l.DeriveStatus(now)

		if search != "" && !strings.HasPrefix(strings.ToLower(l.ProductType), search) {
			continue
		}
		if filter.Category != "" && l.Category != filter.Category {
			continue
		}
		if filter.Status != "" && string(l.Status) != filter.Status {
			continue
		}
		if filter.UploadDate != "" {
			day, err := time.Parse("2006-01-02", filter.UploadDate)
			if err != nil || !l.CreatedAt.SameDay(day) {
				continue
			}
		}

		filtered = append(filtered, l)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt.Time)
	})

	return filtered
}

// View returns one page of the filtered inventory, refreshing the mirror
// first when it has gone stale
func (s *InventoryService) View(ctx context.Context, filter InventoryFilter, page int) (*InventoryPage, error) {
	if err := s.store.EnsureFresh(ctx); err != nil {
		return nil, err
	}

	filtered := s.Filter(s.store.Listings(), filter)
	pageItems, pagination := paginateListings(filtered, page, InventoryPageSize)

	now := s.now()
	expiringSoon := 0
	for _, l := range filtered {
		if IsExpiringSoon(l.ExpiryDate.Time, now, ExpiringSoonDays) {
			expiringSoon++
		}
	}

	return &InventoryPage{
		Listings:     pageItems,
		Pagination:   pagination,
		ExpiringSoon: expiringSoon,
	}, nil
}

// clampPage bounds a requested page to [1, totalPages]. Out-of-range requests
// land on the nearest valid page instead of an empty slice.
func clampPage(page, totalPages int) int {
	if totalPages <= 0 || page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

func totalPages(totalItems, pageSize int) int {
	if totalItems == 0 {
		return 0
	}
	return (totalItems + pageSize - 1) / pageSize
}

func paginateListings(items []models.Listing, page, pageSize int) ([]models.Listing, models.Pagination) {
	total := totalPages(len(items), pageSize)
	page = clampPage(page, total)

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}

	return items[start:end], models.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: len(items),
		TotalPages: total,
	}
}
