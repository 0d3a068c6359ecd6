package repositories

import (
	"context"
	"time"

	"bloodlink/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID gets a user by ID
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername gets a user by username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail gets a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates a user
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// UpdateLastDonationDate records the donor's most recent donation date
func (r *userRepository) UpdateLastDonationDate(ctx context.Context, id uint, date time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("last_donation_date", date).Error
}

// Delete soft deletes a user
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.User{}, id).Error
}

// List lists users with pagination
func (r *userRepository) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	return users, total, err
}

// SearchDonors finds donor accounts by name, username or email, optionally
// narrowed to one blood type
func (r *userRepository) SearchDonors(ctx context.Context, term, bloodType string, offset, limit int) ([]*models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", models.RoleDonor)

	if term != "" {
		like := "%" + term + "%"
		query = query.Where(
			"username LIKE ? OR first_name LIKE ? OR last_name LIKE ? OR email LIKE ?",
			like, like, like, like,
		)
	}
	if bloodType != "" {
		query = query.Where("blood_type = ?", bloodType)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*models.User
	err := query.
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	return users, total, err
}

// AggregateDonors computes donor census figures
func (r *userRepository) AggregateDonors(ctx context.Context) (*DonorAggregates, error) {
	agg := &DonorAggregates{CountByBloodType: make(map[string]int64)}

	base := r.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", models.RoleDonor)

	if err := base.Session(&gorm.Session{}).Count(&agg.Total).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).
		Where("is_active = ?", true).
		Count(&agg.Active).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).
		Where("is_active = ? AND is_eligible = ?", true, true).
		Count(&agg.Eligible).Error; err != nil {
		return nil, err
	}

	type typeRow struct {
		BloodType string
		Count     int64
	}
	var typeRows []typeRow
	if err := base.Session(&gorm.Session{}).
		Select("blood_type, COUNT(*) as count").
		Where("blood_type IS NOT NULL").
		Group("blood_type").
		Find(&typeRows).Error; err != nil {
		return nil, err
	}
	for _, row := range typeRows {
		agg.CountByBloodType[row.BloodType] = row.Count
	}

	return agg, nil
}

// ExistsByUsername checks if a username is taken
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).Error
	return count > 0, err
}

// ExistsByEmail checks if an email is taken
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}
