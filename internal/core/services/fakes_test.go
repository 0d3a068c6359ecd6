package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"bloodlink/internal/adapters/persistence/models"
	"bloodlink/internal/adapters/persistence/repositories"
	"bloodlink/internal/core/domain"

	"gorm.io/gorm"
)

// fakeInventoryRepo is an in-memory InventoryRepository with the same
// versioned-write semantics as the real one.
type fakeInventoryRepo struct {
	mu     sync.Mutex
	nextID uint
	items  map[string]*models.BloodInventory
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{items: make(map[string]*models.BloodInventory), nextID: 1}
}

func (r *fakeInventoryRepo) Create(_ context.Context, inv *models.BloodInventory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv.ID = r.nextID
	r.nextID++
	cp := *inv
	r.items[inv.BloodType] = &cp
	return nil
}

func (r *fakeInventoryRepo) GetByBloodType(_ context.Context, bloodType string) (*models.BloodInventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.items[bloodType]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInventoryRepo) List(_ context.Context) ([]models.BloodInventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.BloodInventory, 0, len(r.items))
	for _, bt := range domain.BloodTypes {
		if inv, ok := r.items[bt.String()]; ok {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *fakeInventoryRepo) Save(_ context.Context, inv *models.BloodInventory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[inv.BloodType]
	if !ok || stored.Version != inv.Version {
		return domain.ErrConcurrencyConflict
	}
	cp := *inv
	cp.Version++
	r.items[inv.BloodType] = &cp
	inv.Version++
	return nil
}

// fakeUserRepo is an in-memory UserRepository
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User), nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			cp := *user
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdateLastDonationDate(_ context.Context, id uint, date time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		d := date
		user.LastDonationDate = &d
	}
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, offset, limit int) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.User, 0, len(r.users))
	for _, user := range r.users {
		cp := *user
		out = append(out, &cp)
	}
	return out, int64(len(r.users)), nil
}

func (r *fakeUserRepo) SearchDonors(_ context.Context, term, bloodType string, offset, limit int) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, user := range r.users {
		if user.Role != models.RoleDonor {
			continue
		}
		if term != "" && !donorMatchesTerm(user, term) {
			continue
		}
		if bloodType != "" && (user.BloodType == nil || *user.BloodType != bloodType) {
			continue
		}
		cp := *user
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func donorMatchesTerm(user *models.User, term string) bool {
	term = strings.ToLower(term)
	for _, field := range []string{user.Username, user.FirstName, user.LastName, user.Email} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func (r *fakeUserRepo) AggregateDonors(_ context.Context) (*repositories.DonorAggregates, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	agg := &repositories.DonorAggregates{CountByBloodType: make(map[string]int64)}
	for _, user := range r.users {
		if user.Role != models.RoleDonor {
			continue
		}
		agg.Total++
		if user.IsActive {
			agg.Active++
			if user.IsEligible {
				agg.Eligible++
			}
		}
		if user.BloodType != nil {
			agg.CountByBloodType[*user.BloodType]++
		}
	}
	return agg, nil
}

func (r *fakeUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// fakeDonationRepo is an in-memory DonationRepository
type fakeDonationRepo struct {
	mu        sync.Mutex
	nextID    uint
	donations map[uint]*models.Donation
}

func newFakeDonationRepo() *fakeDonationRepo {
	return &fakeDonationRepo{donations: make(map[uint]*models.Donation), nextID: 1}
}

func (r *fakeDonationRepo) Create(_ context.Context, donation *models.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	donation.ID = r.nextID
	r.nextID++
	cp := *donation
	r.donations[donation.ID] = &cp
	return nil
}

func (r *fakeDonationRepo) GetByID(_ context.Context, id uint) (*models.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	donation, ok := r.donations[id]
	if !ok {
		return nil, domain.ErrDonationNotFound
	}
	cp := *donation
	return &cp, nil
}

func (r *fakeDonationRepo) List(_ context.Context, filter repositories.DonationFilter, offset, limit int) ([]models.Donation, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Donation
	for _, d := range r.donations {
		if r.matches(d, filter) {
			out = append(out, *d)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeDonationRepo) ListByUser(_ context.Context, userID uint) ([]models.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Donation
	for _, d := range r.donations {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeDonationRepo) Save(_ context.Context, donation *models.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *donation
	r.donations[donation.ID] = &cp
	return nil
}

func (r *fakeDonationRepo) Aggregate(_ context.Context, start, end time.Time) (*repositories.DonationAggregates, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	agg := &repositories.DonationAggregates{
		CountByType:  make(map[string]int64),
		VolumeByType: make(map[string]float64),
	}
	for _, d := range r.donations {
		if d.DonationDate.Before(start) || d.DonationDate.After(end) {
			continue
		}
		agg.Total++
		switch d.Status {
		case models.DonationStatusCompleted:
			agg.Completed++
			agg.CountByType[d.BloodType]++
			agg.VolumeByType[d.BloodType] += d.Quantity
			agg.TotalVolume += d.Quantity
		case models.DonationStatusPending:
			agg.Pending++
		case models.DonationStatusCancelled:
			agg.Cancelled++
		}
	}
	return agg, nil
}

func (r *fakeDonationRepo) matches(d *models.Donation, filter repositories.DonationFilter) bool {
	if filter.UserID != nil && d.UserID != *filter.UserID {
		return false
	}
	if filter.Status != "" && d.Status != filter.Status {
		return false
	}
	if filter.BloodType != "" && d.BloodType != filter.BloodType {
		return false
	}
	if filter.StartDate != nil && d.DonationDate.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && d.DonationDate.After(*filter.EndDate) {
		return false
	}
	return true
}

// fakeLocationRepo is an in-memory LocationRepository
type fakeLocationRepo struct {
	mu        sync.Mutex
	nextID    uint
	locations map[uint]*models.Location
}

func newFakeLocationRepo() *fakeLocationRepo {
	return &fakeLocationRepo{locations: make(map[uint]*models.Location), nextID: 1}
}

func (r *fakeLocationRepo) Create(_ context.Context, location *models.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	location.ID = r.nextID
	r.nextID++
	cp := *location
	r.locations[location.ID] = &cp
	return nil
}

func (r *fakeLocationRepo) GetByID(_ context.Context, id uint) (*models.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	location, ok := r.locations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *location
	return &cp, nil
}

func (r *fakeLocationRepo) List(_ context.Context, activeOnly bool) ([]models.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Location
	for _, l := range r.locations {
		if activeOnly && !l.IsActive {
			continue
		}
		out = append(out, *l)
	}
	return out, nil
}

func (r *fakeLocationRepo) ListAcceptingDonations(_ context.Context) ([]models.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Location
	for _, l := range r.locations {
		if l.IsActive && l.IsAcceptingDonations {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeLocationRepo) SearchByName(_ context.Context, term string) ([]models.Location, error) {
	return r.List(context.Background(), true)
}

func (r *fakeLocationRepo) Save(_ context.Context, location *models.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *location
	r.locations[location.ID] = &cp
	return nil
}

func (r *fakeLocationRepo) IncrementDonationCount(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.locations[id]; ok {
		l.TotalDonationsCollected++
	}
	return nil
}
