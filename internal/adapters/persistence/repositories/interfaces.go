package repositories

import (
	"context"
	"time"

	"bloodlink/internal/adapters/persistence/models"
)

// DonorAggregates holds donor census figures
type DonorAggregates struct {
	Total            int64
	Active           int64
	Eligible         int64
	CountByBloodType map[string]int64
}

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateLastDonationDate(ctx context.Context, id uint, date time.Time) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	SearchDonors(ctx context.Context, term, bloodType string, offset, limit int) ([]*models.User, int64, error)
	AggregateDonors(ctx context.Context) (*DonorAggregates, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// InventoryRepository defines blood inventory repository interface.
// Save is a versioned write: it must only apply when the stored row still
// carries the version the account was loaded with, and return
// domain.ErrConcurrencyConflict otherwise.
type InventoryRepository interface {
	Create(ctx context.Context, inv *models.BloodInventory) error
	GetByBloodType(ctx context.Context, bloodType string) (*models.BloodInventory, error)
	List(ctx context.Context) ([]models.BloodInventory, error)
	Save(ctx context.Context, inv *models.BloodInventory) error
}

// DonationFilter narrows donation listings
type DonationFilter struct {
	UserID    *uint
	Status    string
	BloodType string
	StartDate *time.Time
	EndDate   *time.Time
}

// DonationAggregates holds donation statistics for a date range
type DonationAggregates struct {
	Total        int64
	Completed    int64
	Pending      int64
	Cancelled    int64
	TotalVolume  float64
	CountByType  map[string]int64
	VolumeByType map[string]float64
}

// DonationRepository defines donation repository interface
type DonationRepository interface {
	Create(ctx context.Context, donation *models.Donation) error
	GetByID(ctx context.Context, id uint) (*models.Donation, error)
	List(ctx context.Context, filter DonationFilter, offset, limit int) ([]models.Donation, int64, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Donation, error)
	Save(ctx context.Context, donation *models.Donation) error
	Aggregate(ctx context.Context, start, end time.Time) (*DonationAggregates, error)
}

// LocationRepository defines donation center repository interface
type LocationRepository interface {
	Create(ctx context.Context, location *models.Location) error
	GetByID(ctx context.Context, id uint) (*models.Location, error)
	List(ctx context.Context, activeOnly bool) ([]models.Location, error)
	ListAcceptingDonations(ctx context.Context) ([]models.Location, error)
	SearchByName(ctx context.Context, term string) ([]models.Location, error)
	Save(ctx context.Context, location *models.Location) error
	IncrementDonationCount(ctx context.Context, id uint) error
}
