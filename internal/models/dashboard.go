package models

// DashboardMetrics holds the aggregate figures shown on the dashboard cards
type DashboardMetrics struct {
	FoodFromOrders    float64 `json:"foodFromOrders"`
	FoodFromWaste     float64 `json:"foodFromWaste"`
	FoodDiverted      float64 `json:"foodDiverted"`
	RevenueRecovered  float64 `json:"revenueRecovered"`
	CarbonSavedKg     float64 `json:"carbonSavedKg"`
	CarbonSavedTonnes float64 `json:"carbonSavedTonnes"`
	RecyclingPartners int     `json:"recyclingPartners"`
}

// MonthlyBucket accumulates revenue and weight for one calendar month
type MonthlyBucket struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	Weight  float64 `json:"weight"`
}

// Badge represents an achievement with a fixed goal
type Badge struct {
	Name     string  `json:"name"`
	Goal     float64 `json:"goal"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit"`
	Achieved bool    `json:"achieved"`
	Progress float64 `json:"progress"`
}

// Pagination describes one page of a filtered collection
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}
