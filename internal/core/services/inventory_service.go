package services

import (
	"context"
	"errors"
	"log"
	"math"
	"sync"
	"time"

	"bloodlink/internal/adapters/persistence/models"
	"bloodlink/internal/adapters/persistence/repositories"
	"bloodlink/internal/core/domain"
	"bloodlink/internal/pkg/metrics"
)

// Defaults for newly created inventory accounts (mL)
const (
	DefaultMinThreshold = 1000
	DefaultMaxCapacity  = 10000
)

// InventoryService handles the blood stock ledger. Every mutation on one
// account runs under that account's mutex, so operations on the same blood
// type serialize while different blood types never contend. The repository
// additionally guards writes with a version stamp against external writers.
type InventoryService struct {
	inventoryRepo repositories.InventoryRepository
	locks         map[domain.BloodType]*sync.Mutex
}

// NewInventoryService creates a new inventory service
func NewInventoryService(inventoryRepo repositories.InventoryRepository) *InventoryService {
	locks := make(map[domain.BloodType]*sync.Mutex, len(domain.BloodTypes))
	for _, bt := range domain.BloodTypes {
		locks[bt] = &sync.Mutex{}
	}
	return &InventoryService{
		inventoryRepo: inventoryRepo,
		locks:         locks,
	}
}

// round2 rounds a quantity to 2-decimal mL precision
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Initialize creates any missing inventory accounts with zero stock.
// Idempotent: existing accounts are never overwritten.
func (s *InventoryService) Initialize(ctx context.Context) error {
	for _, bt := range domain.BloodTypes {
		existing, err := s.inventoryRepo.GetByBloodType(ctx, bt.String())
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if existing != nil {
			metrics.ObserveStock(existing.BloodType, existing.CurrentStock)
			continue
		}

		inv := &models.BloodInventory{
			BloodType:    bt.String(),
			CurrentStock: 0,
			MinThreshold: DefaultMinThreshold,
			MaxCapacity:  DefaultMaxCapacity,
			LastUpdated:  time.Now().UTC(),
		}
		if err := s.inventoryRepo.Create(ctx, inv); err != nil {
			return err
		}
		metrics.ObserveStock(inv.BloodType, 0)
		log.Printf("   Created inventory account: %s", bt)
	}
	return nil
}

// GetStock returns the inventory account for one blood type
func (s *InventoryService) GetStock(ctx context.Context, bloodType string) (*models.BloodInventory, error) {
	bt, err := domain.ParseBloodType(bloodType)
	if err != nil {
		return nil, err
	}
	return s.inventoryRepo.GetByBloodType(ctx, bt.String())
}

// ListStock returns all inventory accounts
func (s *InventoryService) ListStock(ctx context.Context) ([]models.BloodInventory, error) {
	return s.inventoryRepo.List(ctx)
}

// SetStock sets the stock level directly (administrative override, no
// capacity check) and maintains the daily counters for the transaction kind.
func (s *InventoryService) SetStock(ctx context.Context, bloodType string, newLevel float64, kind string) (*models.BloodInventory, error) {
	bt, err := domain.ParseBloodType(bloodType)
	if err != nil {
		return nil, err
	}
	if newLevel < 0 {
		return nil, domain.ErrInvalidAmount
	}

	mu := s.locks[bt]
	mu.Lock()
	defer mu.Unlock()

	inv, err := s.inventoryRepo.GetByBloodType(ctx, bt.String())
	if err != nil {
		return nil, err
	}

	s.applyLevel(inv, newLevel, kind)
	if err := s.inventoryRepo.Save(ctx, inv); err != nil {
		return nil, err
	}

	s.observe("set", inv)
	return inv, nil
}

// AddStock credits stock, rejecting amounts that would exceed capacity
func (s *InventoryService) AddStock(ctx context.Context, bloodType string, quantity float64, kind string) (*models.BloodInventory, error) {
	bt, err := domain.ParseBloodType(bloodType)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	mu := s.locks[bt]
	mu.Lock()
	defer mu.Unlock()

	inv, err := s.inventoryRepo.GetByBloodType(ctx, bt.String())
	if err != nil {
		return nil, err
	}

	newLevel := round2(inv.CurrentStock + quantity)
	if newLevel > inv.MaxCapacity {
		return nil, domain.ErrCapacityExceeded
	}

	s.applyLevel(inv, newLevel, kind)
	if err := s.inventoryRepo.Save(ctx, inv); err != nil {
		return nil, err
	}

	s.observe("add", inv)
	return inv, nil
}

// RemoveStock debits stock, rejecting amounts above the current level
func (s *InventoryService) RemoveStock(ctx context.Context, bloodType string, quantity float64, kind string) (*models.BloodInventory, error) {
	bt, err := domain.ParseBloodType(bloodType)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	mu := s.locks[bt]
	mu.Lock()
	defer mu.Unlock()

	inv, err := s.inventoryRepo.GetByBloodType(ctx, bt.String())
	if err != nil {
		return nil, err
	}

	if quantity > inv.CurrentStock {
		return nil, domain.ErrInsufficientStock
	}

	s.applyLevel(inv, round2(inv.CurrentStock-quantity), kind)
	if err := s.inventoryRepo.Save(ctx, inv); err != nil {
		return nil, err
	}

	s.observe("remove", inv)
	return inv, nil
}

// ReserveStock earmarks part of the available stock
func (s *InventoryService) ReserveStock(ctx context.Context, bloodType string, quantity float64) (*models.BloodInventory, error) {
	bt, err := domain.ParseBloodType(bloodType)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	mu := s.locks[bt]
	mu.Lock()
	defer mu.Unlock()

	inv, err := s.inventoryRepo.GetByBloodType(ctx, bt.String())
	if err != nil {
		return nil, err
	}

	if quantity > inv.AvailableStock() {
		return nil, domain.ErrInsufficientAvailable
	}

	inv.ReservedStock = round2(inv.ReservedStock + quantity)
	inv.LastUpdated = time.Now().UTC()
	if err := s.inventoryRepo.Save(ctx, inv); err != nil {
		return nil, err
	}

	s.observe("reserve", inv)
	return inv, nil
}

// ReleaseReservedStock returns earmarked stock to the available pool
func (s *InventoryService) ReleaseReservedStock(ctx context.Context, bloodType string, quantity float64) (*models.BloodInventory, error) {
	bt, err := domain.ParseBloodType(bloodType)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	mu := s.locks[bt]
	mu.Lock()
	defer mu.Unlock()

	inv, err := s.inventoryRepo.GetByBloodType(ctx, bt.String())
	if err != nil {
		return nil, err
	}

	if quantity > inv.ReservedStock {
		return nil, domain.ErrOverRelease
	}

	inv.ReservedStock = round2(inv.ReservedStock - quantity)
	inv.LastUpdated = time.Now().UTC()
	if err := s.inventoryRepo.Save(ctx, inv); err != nil {
		return nil, err
	}

	s.observe("release", inv)
	return inv, nil
}

// MarkExpired sets the expired quantity awaiting disposal. The value replaces
// any previous mark; it does not accumulate. The reserved+expired ≤ current
// invariant must still hold afterwards.
func (s *InventoryService) MarkExpired(ctx context.Context, bloodType string, quantity float64) (*models.BloodInventory, error) {
	bt, err := domain.ParseBloodType(bloodType)
	if err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, domain.ErrInvalidAmount
	}

	mu := s.locks[bt]
	mu.Lock()
	defer mu.Unlock()

	inv, err := s.inventoryRepo.GetByBloodType(ctx, bt.String())
	if err != nil {
		return nil, err
	}

	if inv.ReservedStock+quantity > inv.CurrentStock {
		return nil, domain.ErrInvalidAmount
	}

	inv.ExpiredStock = round2(quantity)
	inv.LastUpdated = time.Now().UTC()
	if err := s.inventoryRepo.Save(ctx, inv); err != nil {
		return nil, err
	}

	s.observe("mark_expired", inv)
	return inv, nil
}

// DisposeExpired removes the expired quantity from current stock and returns
// the disposed amount. No-op when nothing is marked expired.
func (s *InventoryService) DisposeExpired(ctx context.Context, bloodType string) (float64, error) {
	bt, err := domain.ParseBloodType(bloodType)
	if err != nil {
		return 0, err
	}

	mu := s.locks[bt]
	mu.Lock()
	defer mu.Unlock()

	inv, err := s.inventoryRepo.GetByBloodType(ctx, bt.String())
	if err != nil {
		return 0, err
	}

	if inv.ExpiredStock == 0 {
		return 0, nil
	}

	disposed := inv.ExpiredStock
	inv.CurrentStock = round2(inv.CurrentStock - disposed)
	inv.ExpiredStock = 0
	inv.LastUpdated = time.Now().UTC()
	if err := s.inventoryRepo.Save(ctx, inv); err != nil {
		return 0, err
	}

	s.observe("dispose_expired", inv)
	log.Printf("🗑️ Disposed %.2fmL expired %s stock", disposed, bt)
	return disposed, nil
}

// ResetDailyCounters zeroes the received/dispensed counters for one account
func (s *InventoryService) ResetDailyCounters(ctx context.Context, bloodType string) error {
	bt, err := domain.ParseBloodType(bloodType)
	if err != nil {
		return err
	}

	mu := s.locks[bt]
	mu.Lock()
	defer mu.Unlock()

	inv, err := s.inventoryRepo.GetByBloodType(ctx, bt.String())
	if err != nil {
		return err
	}

	inv.UnitsReceivedToday = 0
	inv.UnitsDispensedToday = 0
	inv.LastUpdated = time.Now().UTC()
	return s.inventoryRepo.Save(ctx, inv)
}

// ResetAllDailyCounters resets daily counters for every blood type
func (s *InventoryService) ResetAllDailyCounters(ctx context.Context) error {
	for _, bt := range domain.BloodTypes {
		if err := s.ResetDailyCounters(ctx, bt.String()); err != nil {
			return err
		}
	}
	return nil
}

// StockAlert describes one account below its threshold
type StockAlert struct {
	BloodType      string    `json:"blood_type"`
	CurrentStock   float64   `json:"current_stock"`
	MinThreshold   float64   `json:"min_threshold"`
	AvailableStock float64   `json:"available_stock"`
	Status         string    `json:"status"`
	LastUpdated    time.Time `json:"last_updated"`
}

// AlertsResponse groups alerts by severity. A critically low account appears
// in both lists: the tiers overlap rather than partition.
type AlertsResponse struct {
	LowStock      []StockAlert `json:"low_stock"`
	CriticalStock []StockAlert `json:"critical_stock"`
	TotalAlerts   int          `json:"total_alerts"`
}

// GetAlerts scans all accounts and reports low/critical stock
func (s *InventoryService) GetAlerts(ctx context.Context) (*AlertsResponse, error) {
	items, err := s.inventoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	alerts := &AlertsResponse{
		LowStock:      []StockAlert{},
		CriticalStock: []StockAlert{},
	}

	for i := range items {
		inv := &items[i]
		if inv.IsLowStock() {
			alerts.LowStock = append(alerts.LowStock, StockAlert{
				BloodType:      inv.BloodType,
				CurrentStock:   inv.CurrentStock,
				MinThreshold:   inv.MinThreshold,
				AvailableStock: inv.AvailableStock(),
				Status:         "low",
				LastUpdated:    inv.LastUpdated,
			})
		}
		if inv.IsCriticalStock() {
			alerts.CriticalStock = append(alerts.CriticalStock, StockAlert{
				BloodType:      inv.BloodType,
				CurrentStock:   inv.CurrentStock,
				MinThreshold:   inv.MinThreshold,
				AvailableStock: inv.AvailableStock(),
				Status:         "critical",
				LastUpdated:    inv.LastUpdated,
			})
		}
	}

	alerts.TotalAlerts = len(alerts.LowStock) + len(alerts.CriticalStock)
	return alerts, nil
}

// BloodTypeDetail is the per-type line in the inventory statistics
type BloodTypeDetail struct {
	BloodType           string  `json:"blood_type"`
	CurrentStock        float64 `json:"current_stock"`
	AvailableStock      float64 `json:"available_stock"`
	StockStatus         string  `json:"stock_status"`
	UnitsReceivedToday  float64 `json:"units_received_today"`
	UnitsDispensedToday float64 `json:"units_dispensed_today"`
}

// InventoryStats summarizes the whole ledger
type InventoryStats struct {
	TotalBloodTypes     int               `json:"total_blood_types"`
	TotalStock          float64           `json:"total_stock"`
	TotalAvailableStock float64           `json:"total_available_stock"`
	TotalReservedStock  float64           `json:"total_reserved_stock"`
	TotalExpiredStock   float64           `json:"total_expired_stock"`
	LowStockCount       int               `json:"low_stock_count"`
	CriticalStockCount  int               `json:"critical_stock_count"`
	BloodTypeDetails    []BloodTypeDetail `json:"blood_type_details"`
}

// GetStats aggregates current ledger figures across all blood types
func (s *InventoryService) GetStats(ctx context.Context) (*InventoryStats, error) {
	items, err := s.inventoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &InventoryStats{
		TotalBloodTypes:  len(items),
		BloodTypeDetails: make([]BloodTypeDetail, 0, len(items)),
	}

	for i := range items {
		inv := &items[i]
		stats.TotalStock += inv.CurrentStock
		stats.TotalAvailableStock += inv.AvailableStock()
		stats.TotalReservedStock += inv.ReservedStock
		stats.TotalExpiredStock += inv.ExpiredStock

		if inv.IsCriticalStock() {
			stats.CriticalStockCount++
		} else if inv.IsLowStock() {
			stats.LowStockCount++
		}

		stats.BloodTypeDetails = append(stats.BloodTypeDetails, BloodTypeDetail{
			BloodType:           inv.BloodType,
			CurrentStock:        inv.CurrentStock,
			AvailableStock:      inv.AvailableStock(),
			StockStatus:         inv.StockStatus(),
			UnitsReceivedToday:  inv.UnitsReceivedToday,
			UnitsDispensedToday: inv.UnitsDispensedToday,
		})
	}

	return stats, nil
}

// applyLevel moves the stock level and maintains daily counters/timestamps.
// Caller holds the account lock.
func (s *InventoryService) applyLevel(inv *models.BloodInventory, newLevel float64, kind string) {
	oldLevel := inv.CurrentStock
	now := time.Now().UTC()

	inv.CurrentStock = round2(newLevel)
	inv.LastUpdated = now

	switch kind {
	case models.TxKindDonation:
		inv.UnitsReceivedToday = round2(inv.UnitsReceivedToday + (newLevel - oldLevel))
		inv.LastDonationDate = &now
	case models.TxKindDispensed:
		inv.UnitsDispensedToday = round2(inv.UnitsDispensedToday + (oldLevel - newLevel))
		inv.LastDispensedDate = &now
	}
}

func (s *InventoryService) observe(operation string, inv *models.BloodInventory) {
	metrics.ObserveStock(inv.BloodType, inv.CurrentStock)
	metrics.StockOperations.WithLabelValues(operation, inv.BloodType).Inc()
}
