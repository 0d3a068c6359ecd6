package repositories

import (
	"context"
	"errors"

	"bloodlink/internal/adapters/persistence/models"
	"bloodlink/internal/core/domain"

	"gorm.io/gorm"
)

// locationRepository implements LocationRepository interface
type locationRepository struct {
	db *gorm.DB
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

// Create creates a new location
func (r *locationRepository) Create(ctx context.Context, location *models.Location) error {
	return r.db.WithContext(ctx).Create(location).Error
}

// GetByID gets a location by ID
func (r *locationRepository) GetByID(ctx context.Context, id uint) (*models.Location, error) {
	var location models.Location
	err := r.db.WithContext(ctx).First(&location, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &location, nil
}

// List returns locations, optionally active only
func (r *locationRepository) List(ctx context.Context, activeOnly bool) ([]models.Location, error) {
	query := r.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var locations []models.Location
	err := query.Order("id ASC").Find(&locations).Error
	return locations, err
}

// ListAcceptingDonations returns active locations currently accepting donations
func (r *locationRepository) ListAcceptingDonations(ctx context.Context) ([]models.Location, error) {
	var locations []models.Location
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND is_accepting_donations = ?", true, true).
		Order("id ASC").
		Find(&locations).Error
	return locations, err
}

// SearchByName searches active locations by name
func (r *locationRepository) SearchByName(ctx context.Context, term string) ([]models.Location, error) {
	var locations []models.Location
	err := r.db.WithContext(ctx).
		Where("name LIKE ? AND is_active = ?", "%"+term+"%", true).
		Order("id ASC").
		Find(&locations).Error
	return locations, err
}

// Save persists all fields of a location
func (r *locationRepository) Save(ctx context.Context, location *models.Location) error {
	return r.db.WithContext(ctx).Save(location).Error
}

// IncrementDonationCount bumps the collected-donations counter
func (r *locationRepository) IncrementDonationCount(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Location{}).
		Where("id = ?", id).
		UpdateColumn("total_donations_collected", gorm.Expr("total_donations_collected + 1")).Error
}
