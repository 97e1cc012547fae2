package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"math"
	"time"

	"feedlink-backend/database"
	"feedlink-backend/internal/models"
)

// CarbonPerKg is the CO2 saved per kilogram of waste diverted from landfill
const CarbonPerKg = 2.5

// Badge goals. Fixed per product decision, not configurable.
const (
	LandfillHeroGoalKg     = 10000
	HungerHeroGoalKg       = 2500
	PlanetHeroGoalTonnes   = 20
	RecyclingHeroGoalUsers = 20
)

var monthLabels = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// FoodFromOrders sums item quantities over all orders
func FoodFromOrders(orders []models.Order) float64 {
	total := 0.0
	for i := range orders {
		total += orders[i].ItemWeight()
	}
	return total
}

// FoodFromWaste sums the claimed listings' quantities over all waste claims.
// Claims whose listing reference does not resolve contribute 0.
func FoodFromWaste(claims []models.WasteClaim, listings map[int64]models.Listing) float64 {
	total := 0.0
	for _, c := range claims {
		if l, ok := listings[c.ListingID]; ok {
			total += l.Quantity.Value
		}
	}
	return total
}

// RevenueRecovered sums order totals; unparseable amounts decoded as 0
func RevenueRecovered(orders []models.Order) float64 {
	total := 0.0
	for _, o := range orders {
		total += o.TotalAmount.Value
	}
	return total
}

// RecyclingPartners counts distinct users across waste claims
func RecyclingPartners(claims []models.WasteClaim) int {
	seen := make(map[int64]bool)
	for _, c := range claims {
		seen[c.UserID] = true
	}
	return len(seen)
}

// CarbonTonnes converts saved CO2 from kilograms to tonnes, one decimal
func CarbonTonnes(kg float64) float64 {
	return math.Round(kg/1000*10) / 10
}

// ComputeMetrics derives the dashboard card figures from the collections
func ComputeMetrics(orders []models.Order, claims []models.WasteClaim, listings map[int64]models.Listing) models.DashboardMetrics {
	fromOrders := FoodFromOrders(orders)
	fromWaste := FoodFromWaste(claims, listings)
	carbonKg := fromWaste * CarbonPerKg

	return models.DashboardMetrics{
		FoodFromOrders:    fromOrders,
		FoodFromWaste:     fromWaste,
		FoodDiverted:      fromOrders + fromWaste,
		RevenueRecovered:  RevenueRecovered(orders),
		CarbonSavedKg:     carbonKg,
		CarbonSavedTonnes: CarbonTonnes(carbonKg),
		RecyclingPartners: RecyclingPartners(claims),
	}
}

// MonthlyBreakdown buckets order revenue and weight into the 12 calendar
// months of the year, fixed Jan through Dec. Orders with invalid created_at
// timestamps are skipped.
func MonthlyBreakdown(orders []models.Order) []models.MonthlyBucket {
	buckets := make([]models.MonthlyBucket, 12)
	for i := range buckets {
		buckets[i].Month = monthLabels[i]
	}

	for i := range orders {
		o := &orders[i]
		if o.CreatedAt.IsZero() {
			continue
		}
		m := int(o.CreatedAt.Month()) - 1
		if m < 0 || m > 11 {
			continue
		}
		buckets[m].Revenue += o.TotalAmount.Value
		buckets[m].Weight += o.ItemWeight()
	}

	return buckets
}

// badgeProgress caps progress at 100 percent
func badgeProgress(value, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	return math.Min(value/goal*100, 100)
}

func makeBadge(name, unit string, value, goal float64) models.Badge {
	return models.Badge{
		Name:     name,
		Goal:     goal,
		Value:    value,
		Unit:     unit,
		Achieved: value >= goal,
		Progress: badgeProgress(value, goal),
	}
}

// Badges derives the four fixed achievement badges from the metrics
func Badges(m models.DashboardMetrics) []models.Badge {
	return []models.Badge{
		makeBadge("Landfill Hero", "kg", m.FoodDiverted, LandfillHeroGoalKg),
		makeBadge("Hunger Hero", "kg", m.FoodFromOrders, HungerHeroGoalKg),
		makeBadge("Planet Hero", "t", m.CarbonSavedTonnes, PlanetHeroGoalTonnes),
		makeBadge("Recycling Hero", "partners", float64(m.RecyclingPartners), RecyclingHeroGoalUsers),
	}
}

// MetricsService computes dashboard aggregates over the mirrored collections
// and optionally records snapshots for the history view
type MetricsService struct {
	store         *StoreService
	db            *sql.DB
	snapshots     bool
	snapshotLimit int
}

// NewMetricsService creates a new metrics service. db may be nil when
// snapshotting is disabled.
func NewMetricsService(store *StoreService, db *sql.DB, snapshots bool, snapshotLimit int) *MetricsService {
	return &MetricsService{
		store:         store,
		db:            db,
		snapshots:     snapshots,
		snapshotLimit: snapshotLimit,
	}
}

// Compute refreshes the mirror if stale and derives the dashboard metrics
func (s *MetricsService) Compute(ctx context.Context) (models.DashboardMetrics, error) {
	if err := s.store.EnsureFresh(ctx); err != nil {
		return models.DashboardMetrics{}, err
	}

	metrics := ComputeMetrics(s.store.Orders(), s.store.Claims(), s.store.ListingIndex())
	s.snapshot(metrics)
	return metrics, nil
}

// Monthly refreshes the mirror if stale and derives the monthly chart
func (s *MetricsService) Monthly(ctx context.Context) ([]models.MonthlyBucket, error) {
	if err := s.store.EnsureFresh(ctx); err != nil {
		return nil, err
	}
	return MonthlyBreakdown(s.store.Orders()), nil
}

// BadgeProgress refreshes the mirror if stale and derives badge state
func (s *MetricsService) BadgeProgress(ctx context.Context) ([]models.Badge, error) {
	metrics, err := s.Compute(ctx)
	if err != nil {
		return nil, err
	}
	return Badges(metrics), nil
}

// History returns recently stored metric snapshots, newest first
func (s *MetricsService) History(limit int) ([]database.MetricSnapshot, error) {
	if s.db == nil {
		return nil, nil
	}
	if limit <= 0 || limit > s.snapshotLimit {
		limit = s.snapshotLimit
	}
	return database.RecentMetricSnapshots(s.db, limit)
}

// snapshot persists a metrics payload; failures are logged, never surfaced
func (s *MetricsService) snapshot(metrics models.DashboardMetrics) {
	if !s.snapshots || s.db == nil {
		return
	}

	payload, err := json.Marshal(metrics)
	if err != nil {
		log.Printf("Failed to encode metric snapshot: %v", err)
		return
	}
	if err := database.InsertMetricSnapshot(s.db, time.Now(), string(payload)); err != nil {
		log.Printf("Failed to store metric snapshot: %v", err)
		return
	}
	if err := database.PruneMetricSnapshots(s.db, s.snapshotLimit); err != nil {
		log.Printf("Failed to prune metric snapshots: %v", err)
	}
}
