package repositories

import (
	"context"
	"errors"
	"time"

	"bloodlink/internal/adapters/persistence/models"
	"bloodlink/internal/core/domain"

	"gorm.io/gorm"
)

// donationRepository implements DonationRepository interface
type donationRepository struct {
	db *gorm.DB
}

// NewDonationRepository creates a new donation repository
func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepository{db: db}
}

// Create creates a new donation record
func (r *donationRepository) Create(ctx context.Context, donation *models.Donation) error {
	return r.db.WithContext(ctx).Create(donation).Error
}

// GetByID gets a donation by ID with preloaded relations
func (r *donationRepository) GetByID(ctx context.Context, id uint) (*models.Donation, error) {
	var donation models.Donation
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Location").
		First(&donation, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDonationNotFound
		}
		return nil, err
	}
	return &donation, nil
}

// List lists donations matching the filter, most recent first
func (r *donationRepository) List(ctx context.Context, filter DonationFilter, offset, limit int) ([]models.Donation, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.Donation{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var donations []models.Donation
	err := query.
		Preload("User").
		Preload("Location").
		Order("donation_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&donations).Error
	return donations, total, err
}

// ListByUser returns all donations for a donor, most recent first
func (r *donationRepository) ListByUser(ctx context.Context, userID uint) ([]models.Donation, error) {
	var donations []models.Donation
	err := r.db.WithContext(ctx).
		Preload("Location").
		Where("user_id = ?", userID).
		Order("donation_date DESC").
		Find(&donations).Error
	return donations, err
}

// Save persists all fields of a donation
func (r *donationRepository) Save(ctx context.Context, donation *models.Donation) error {
	return r.db.WithContext(ctx).Save(donation).Error
}

// Aggregate computes donation statistics for a date range
func (r *donationRepository) Aggregate(ctx context.Context, start, end time.Time) (*DonationAggregates, error) {
	base := r.db.WithContext(ctx).Model(&models.Donation{}).
		Where("donation_date >= ? AND donation_date <= ?", start, end)

	agg := &DonationAggregates{
		CountByType:  make(map[string]int64),
		VolumeByType: make(map[string]float64),
	}

	type statusRow struct {
		Status string
		Count  int64
	}
	var statusRows []statusRow
	if err := base.Session(&gorm.Session{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Find(&statusRows).Error; err != nil {
		return nil, err
	}
	for _, row := range statusRows {
		agg.Total += row.Count
		switch row.Status {
		case models.DonationStatusCompleted:
			agg.Completed = row.Count
		case models.DonationStatusPending:
			agg.Pending = row.Count
		case models.DonationStatusCancelled:
			agg.Cancelled = row.Count
		}
	}

	type typeRow struct {
		BloodType string
		Count     int64
		Volume    float64
	}
	var typeRows []typeRow
	if err := base.Session(&gorm.Session{}).
		Select("blood_type, COUNT(*) as count, COALESCE(SUM(quantity), 0) as volume").
		Where("status = ?", models.DonationStatusCompleted).
		Group("blood_type").
		Find(&typeRows).Error; err != nil {
		return nil, err
	}
	for _, row := range typeRows {
		agg.CountByType[row.BloodType] = row.Count
		agg.VolumeByType[row.BloodType] = row.Volume
		agg.TotalVolume += row.Volume
	}

	return agg, nil
}

// applyFilter adds filter conditions to a donation query
func (r *donationRepository) applyFilter(query *gorm.DB, filter DonationFilter) *gorm.DB {
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.BloodType != "" {
		query = query.Where("blood_type = ?", filter.BloodType)
	}
	if filter.StartDate != nil {
		query = query.Where("donation_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("donation_date <= ?", *filter.EndDate)
	}
	return query
}
