package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"feedlink-backend/internal/models"
	"feedlink-backend/internal/upstream"
)

// ClaimsPageSize is the fixed page size of the waste-claims table
const ClaimsPageSize = 6

// ClaimFilter holds the waste-claims table's filter controls
type ClaimFilter struct {
	Status string // "", "all", "pending" or "collected"
	Date   string // exact calendar day of claim_time, YYYY-MM-DD
	Search string // case-insensitive substring of the recycler's display name
}

// ClaimRow is a waste claim joined with its resolved recycler name and the
// claimed listing's product type
type ClaimRow struct {
	models.WasteClaim
	RecyclerName string `json:"recycler_name"`
	ProductType  string `json:"product_type,omitempty"`
}

// ClaimPage is one rendered page of the waste-claims table
type ClaimPage struct {
	Claims     []ClaimRow        `json:"claims"`
	Pagination models.Pagination `json:"pagination"`
}

// WasteClaimService produces the filtered claims view and applies status updates
type WasteClaimService struct {
	store  *StoreService
	client *upstream.Client
	notify func()
}

// NewWasteClaimService creates a new waste claim service
func NewWasteClaimService(store *StoreService, client *upstream.Client, notify func()) *WasteClaimService {
	return &WasteClaimService{
		store:  store,
		client: client,
		notify: notify,
	}
}

// Filter applies the filter controls to a claim collection, preserving the
// backend's array order.
func (s *WasteClaimService) Filter(claims []models.WasteClaim, filter ClaimFilter) []ClaimRow {
	status := strings.ToLower(strings.TrimSpace(filter.Status))
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	var day time.Time
	if filter.Date != "" {
		parsed, err := time.Parse("2006-01-02", filter.Date)
		if err == nil {
			day = parsed
		}
	}

	listings := s.store.ListingIndex()

	rows := make([]ClaimRow, 0, len(claims))
	for _, c := range claims {
		if status != "" && status != "all" && string(c.Status) != status {
			continue
		}
		if filter.Date != "" && !c.ClaimTime.SameDay(day) {
			continue
		}

		name := s.store.UserName(c.UserID)
		if search != "" && !strings.Contains(strings.ToLower(name), search) {
			continue
		}

		row := ClaimRow{WasteClaim: c, RecyclerName: name}
		if l, ok := listings[c.ListingID]; ok {
			row.ProductType = l.ProductType
		}
		rows = append(rows, row)
	}

	return rows
}

// View returns one page of the filtered waste-claims table
func (s *WasteClaimService) View(ctx context.Context, filter ClaimFilter, page int) (*ClaimPage, error) {
	if err := s.store.EnsureFresh(ctx); err != nil {
		return nil, err
	}

	rows := s.Filter(s.store.Claims(), filter)

	total := totalPages(len(rows), ClaimsPageSize)
	page = clampPage(page, total)
	start := (page - 1) * ClaimsPageSize
	end := start + ClaimsPageSize
	if start > len(rows) {
		start = len(rows)
	}
	if end > len(rows) {
		end = len(rows)
	}

	return &ClaimPage{
		Claims: rows[start:end],
		Pagination: models.Pagination{
			Page:       page,
			PageSize:   ClaimsPageSize,
			TotalItems: len(rows),
			TotalPages: total,
		},
	}, nil
}

// UpdateStatus PATCHes the new status to the backend and merges the
// server-confirmed claim time into the cached claim. Single attempt; the
// cache is untouched on failure.
func (s *WasteClaimService) UpdateStatus(ctx context.Context, claimID int64, status models.ClaimStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid claim status: %s", status)
	}

	confirmed, err := s.client.PatchClaimStatus(ctx, claimID, status)
	if err != nil {
		return err
	}

	s.store.ApplyClaimPatch(claimID, status, confirmed)

	if s.notify != nil {
		s.notify()
	}
	return nil
}

// VerifyPIN checks a collection PIN against the cached claim. The comparison
// is constant-time.
func (s *WasteClaimService) VerifyPIN(claimID int64, pin string) (bool, error) {
	for _, c := range s.store.Claims() {
		if c.ID != claimID {
			continue
		}
		if c.PIN == "" {
			return false, fmt.Errorf("waste claim %d has no collection PIN", claimID)
		}
		return subtle.ConstantTimeCompare([]byte(c.PIN), []byte(pin)) == 1, nil
	}
	return false, fmt.Errorf("waste claim %d not found", claimID)
}
