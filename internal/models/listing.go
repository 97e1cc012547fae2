package models

import "time"

// ListingStatus represents the derived availability of a listing.
// It is computed from the expiry date and never persisted.
type ListingStatus string

const (
	ListingStatusAvailable ListingStatus = "available"
	ListingStatusExpired   ListingStatus = "expired"
)

// Listing represents a surplus-food or recyclable item posted by a producer
type Listing struct {
	ID           int64          `json:"listing_id"`
	ProducerID   int64          `json:"producer,omitempty"`
	ProductType  string         `json:"product_type"`
	Category     string         `json:"category"`
	Quantity     NumericString  `json:"quantity"`
	Unit         string         `json:"unit"`
	PricePerUnit *NumericString `json:"price_per_unit,omitempty"`
	TotalPrice   *NumericString `json:"total_price,omitempty"`
	ExpiryDate   FlexibleTime   `json:"expiry_date"`
	CreatedAt    FlexibleTime   `json:"created_at"`

	// Derived, recomputed from ExpiryDate on every read
	Status ListingStatus `json:"status,omitempty"`
}

// ListingCreation represents the fields required to post a new listing
type ListingCreation struct {
	ProductType string  `json:"product_type"`
	Category    string  `json:"category"`
	Quantity    string  `json:"quantity"`
	Unit        string  `json:"unit"`
	ExpiryDate  *string `json:"expiry_date,omitempty"`
	Price       *string `json:"price,omitempty"`
}

// StatusAt returns the derived status of the listing at the given time
func (l *Listing) StatusAt(now time.Time) ListingStatus {
	if !l.ExpiryDate.IsZero() && l.ExpiryDate.Before(now) {
		return ListingStatusExpired
	}
	return ListingStatusAvailable
}

// DeriveStatus recomputes and stores the listing's status at the given time
func (l *Listing) DeriveStatus(now time.Time) {
	l.Status = l.StatusAt(now)
}
