package models

// ClaimStatus represents the collection state of a waste claim
type ClaimStatus string

const (
	ClaimStatusPending   ClaimStatus = "pending"
	ClaimStatusCollected ClaimStatus = "collected"
)

// IsValid reports whether the status is one the backend accepts
func (s ClaimStatus) IsValid() bool {
	return s == ClaimStatusPending || s == ClaimStatusCollected
}

// WasteClaim represents a recycler's claim on a listing's waste material
type WasteClaim struct {
	ID        int64        `json:"waste_id"`
	ListingID int64        `json:"listing_id"`
	UserID    int64        `json:"user"`
	Status    ClaimStatus  `json:"claim_status"`
	ClaimTime FlexibleTime `json:"claim_time"`
	PIN       string       `json:"pin,omitempty"`
}
