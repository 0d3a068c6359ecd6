package repositories

import (
	"context"
	"errors"

	"bloodlink/internal/adapters/persistence/models"
	"bloodlink/internal/core/domain"

	"gorm.io/gorm"
)

// inventoryRepository implements InventoryRepository interface
type inventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

// Create creates a new inventory account
func (r *inventoryRepository) Create(ctx context.Context, inv *models.BloodInventory) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

// GetByBloodType gets the inventory account for a blood type
func (r *inventoryRepository) GetByBloodType(ctx context.Context, bloodType string) (*models.BloodInventory, error) {
	var inv models.BloodInventory
	err := r.db.WithContext(ctx).Where("blood_type = ?", bloodType).First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// List returns all inventory accounts ordered by blood type
func (r *inventoryRepository) List(ctx context.Context) ([]models.BloodInventory, error) {
	var items []models.BloodInventory
	err := r.db.WithContext(ctx).Order("blood_type ASC").Find(&items).Error
	return items, err
}

// Save writes all mutable fields of an account guarded by its version stamp.
// A stale version means another writer got there first.
func (r *inventoryRepository) Save(ctx context.Context, inv *models.BloodInventory) error {
	result := r.db.WithContext(ctx).Model(&models.BloodInventory{}).
		Where("id = ? AND version = ?", inv.ID, inv.Version).
		Updates(map[string]interface{}{
			"current_stock":         inv.CurrentStock,
			"min_threshold":         inv.MinThreshold,
			"max_capacity":          inv.MaxCapacity,
			"reserved_stock":        inv.ReservedStock,
			"expired_stock":         inv.ExpiredStock,
			"units_received_today":  inv.UnitsReceivedToday,
			"units_dispensed_today": inv.UnitsDispensedToday,
			"last_updated":          inv.LastUpdated,
			"last_donation_date":    inv.LastDonationDate,
			"last_dispensed_date":   inv.LastDispensedDate,
			"version":               inv.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrConcurrencyConflict
	}
	inv.Version++
	return nil
}
