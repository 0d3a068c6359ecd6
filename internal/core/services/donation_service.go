package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"bloodlink/internal/adapters/persistence/models"
	"bloodlink/internal/adapters/persistence/repositories"
	"bloodlink/internal/core/domain"
	"bloodlink/internal/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Blood shelf life used for auto-assigned expiry dates (whole blood, days)
const bloodShelfLifeDays = 42

// DonationService manages the donation lifecycle: PENDING → COMPLETED or
// PENDING → CANCELLED. Completion credits the inventory ledger.
type DonationService struct {
	donationRepo repositories.DonationRepository
	userRepo     repositories.UserRepository
	locationRepo repositories.LocationRepository
	inventorySvc *InventoryService
}

// NewDonationService creates a new donation service
func NewDonationService(
	donationRepo repositories.DonationRepository,
	userRepo repositories.UserRepository,
	locationRepo repositories.LocationRepository,
	inventorySvc *InventoryService,
) *DonationService {
	return &DonationService{
		donationRepo: donationRepo,
		userRepo:     userRepo,
		locationRepo: locationRepo,
		inventorySvc: inventorySvc,
	}
}

// RecordDonationInput carries the fields for registering a donation
type RecordDonationInput struct {
	UserID       uint       `json:"user_id" validate:"required"`
	BloodType    string     `json:"blood_type" validate:"required"`
	Quantity     float64    `json:"quantity" validate:"required,gt=0"`
	DonationDate *time.Time `json:"donation_date"`
	LocationID   *uint      `json:"location_id"`

	HemoglobinLevel        *float64 `json:"hemoglobin_level"`
	BloodPressureSystolic  *int     `json:"blood_pressure_systolic"`
	BloodPressureDiastolic *int     `json:"blood_pressure_diastolic"`
	Weight                 *float64 `json:"weight"`
	Temperature            *float64 `json:"temperature"`
}

// RecordDonation registers a new PENDING donation
func (s *DonationService) RecordDonation(ctx context.Context, input RecordDonationInput) (*models.Donation, error) {
	bt, err := domain.ParseBloodType(input.BloodType)
	if err != nil {
		return nil, err
	}
	if input.Quantity <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	donor, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	if input.LocationID != nil {
		if _, err := s.locationRepo.GetByID(ctx, *input.LocationID); err != nil {
			return nil, err
		}
	}

	donationDate := time.Now().UTC()
	if input.DonationDate != nil {
		donationDate = *input.DonationDate
	}

	donation := &models.Donation{
		UserID:                 donor.ID,
		BloodType:              bt.String(),
		Quantity:               round2(input.Quantity),
		DonationDate:           donationDate,
		LocationID:             input.LocationID,
		Status:                 models.DonationStatusPending,
		HemoglobinLevel:        input.HemoglobinLevel,
		BloodPressureSystolic:  input.BloodPressureSystolic,
		BloodPressureDiastolic: input.BloodPressureDiastolic,
		Weight:                 input.Weight,
		Temperature:            input.Temperature,
	}

	if err := s.donationRepo.Create(ctx, donation); err != nil {
		return nil, err
	}

	metrics.DonationsRecorded.WithLabelValues(donation.BloodType).Inc()
	log.Printf("🩸 Donation #%d recorded: %s %.2fmL (donor %d)", donation.ID, donation.BloodType, donation.Quantity, donor.ID)
	return donation, nil
}

// GetDonation returns one donation by ID
func (s *DonationService) GetDonation(ctx context.Context, id uint) (*models.Donation, error) {
	return s.donationRepo.GetByID(ctx, id)
}

// ListDonations lists donations matching a filter with pagination
func (s *DonationService) ListDonations(ctx context.Context, filter repositories.DonationFilter, offset, limit int) ([]models.Donation, int64, error) {
	return s.donationRepo.List(ctx, filter, offset, limit)
}

// ListUserDonations returns all donations for one donor
func (s *DonationService) ListUserDonations(ctx context.Context, userID uint) ([]models.Donation, error) {
	return s.donationRepo.ListByUser(ctx, userID)
}

// DonationPatch carries the updatable donation fields. Only the medical
// screening values and notes may change after registration; blood type,
// quantity, date and location are fixed at recording time.
type DonationPatch struct {
	HemoglobinLevel        *float64 `json:"hemoglobin_level"`
	BloodPressureSystolic  *int     `json:"blood_pressure_systolic"`
	BloodPressureDiastolic *int     `json:"blood_pressure_diastolic"`
	Weight                 *float64 `json:"weight"`
	Temperature            *float64 `json:"temperature"`

	ProcessingNotes *string `json:"processing_notes"`
}

// UpdateDonation patches the medical screening fields and notes of a
// donation. Legal in any state; the ledger is never touched.
func (s *DonationService) UpdateDonation(ctx context.Context, id uint, patch DonationPatch) (*models.Donation, error) {
	donation, err := s.donationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.HemoglobinLevel != nil {
		donation.HemoglobinLevel = patch.HemoglobinLevel
	}
	if patch.BloodPressureSystolic != nil {
		donation.BloodPressureSystolic = patch.BloodPressureSystolic
	}
	if patch.BloodPressureDiastolic != nil {
		donation.BloodPressureDiastolic = patch.BloodPressureDiastolic
	}
	if patch.Weight != nil {
		donation.Weight = patch.Weight
	}
	if patch.Temperature != nil {
		donation.Temperature = patch.Temperature
	}
	if patch.ProcessingNotes != nil {
		donation.ProcessingNotes = *patch.ProcessingNotes
	}

	if err := s.donationRepo.Save(ctx, donation); err != nil {
		return nil, err
	}
	return donation, nil
}

// CompleteDonationInput carries the optional processing fields set at completion
type CompleteDonationInput struct {
	CollectionBagNumber *string    `json:"collection_bag_number"`
	ExpiryDate          *time.Time `json:"expiry_date"`
	ProcessingNotes     string     `json:"processing_notes"`
}

// CompleteResult is the outcome of completing a donation. SecondaryErr holds
// any post-completion failure (inventory credit, donor/location bookkeeping);
// the donation itself stays COMPLETED regardless.
type CompleteResult struct {
	Donation     *models.Donation
	SecondaryErr error
}

// CompleteDonation transitions a PENDING donation to COMPLETED, then credits
// the blood stock and updates donor/location records. The completion commits
// first: a failed stock credit is reported but never rolls it back, so the
// ledger can be reconciled manually.
func (s *DonationService) CompleteDonation(ctx context.Context, id uint, input CompleteDonationInput) (*CompleteResult, error) {
	donation, err := s.donationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if donation.Status != models.DonationStatusPending {
		return nil, domain.ErrInvalidStateTransition
	}

	now := time.Now().UTC()
	donation.Status = models.DonationStatusCompleted
	donation.CollectionBagNumber = input.CollectionBagNumber
	if donation.CollectionBagNumber == nil {
		bag := generateBagNumber()
		donation.CollectionBagNumber = &bag
	}
	donation.ExpiryDate = input.ExpiryDate
	if donation.ExpiryDate == nil {
		expiry := now.AddDate(0, 0, bloodShelfLifeDays)
		donation.ExpiryDate = &expiry
	}
	if input.ProcessingNotes != "" {
		donation.ProcessingNotes = input.ProcessingNotes
	}

	if err := s.donationRepo.Save(ctx, donation); err != nil {
		return nil, err
	}

	metrics.DonationsCompleted.WithLabelValues(donation.BloodType).Inc()

	result := &CompleteResult{Donation: donation}

	if _, err := s.inventorySvc.AddStock(ctx, donation.BloodType, donation.Quantity, models.TxKindDonation); err != nil {
		log.Printf("⚠️ Donation #%d completed but stock credit failed: %v", donation.ID, err)
		result.SecondaryErr = fmt.Errorf("stock credit failed: %w", err)
		return result, nil
	}

	if err := s.userRepo.UpdateLastDonationDate(ctx, donation.UserID, donation.DonationDate); err != nil {
		log.Printf("⚠️ Donation #%d: failed to update donor record: %v", donation.ID, err)
	}
	if donation.LocationID != nil {
		if err := s.locationRepo.IncrementDonationCount(ctx, *donation.LocationID); err != nil {
			log.Printf("⚠️ Donation #%d: failed to update location stats: %v", donation.ID, err)
		}
	}

	log.Printf("✅ Donation #%d completed: +%.2fmL %s", donation.ID, donation.Quantity, donation.BloodType)
	return result, nil
}

// CancelDonation transitions a PENDING donation to CANCELLED
func (s *DonationService) CancelDonation(ctx context.Context, id uint, reason string) (*models.Donation, error) {
	donation, err := s.donationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if donation.Status != models.DonationStatusPending {
		return nil, domain.ErrInvalidStateTransition
	}

	donation.Status = models.DonationStatusCancelled
	if reason != "" {
		donation.ProcessingNotes = reason
	}

	if err := s.donationRepo.Save(ctx, donation); err != nil {
		return nil, err
	}

	log.Printf("🚫 Donation #%d cancelled", donation.ID)
	return donation, nil
}

// DonationStats summarizes donations over a date range
type DonationStats struct {
	PeriodStart    time.Time          `json:"period_start"`
	PeriodEnd      time.Time          `json:"period_end"`
	TotalDonations int64              `json:"total_donations"`
	Completed      int64              `json:"completed"`
	Pending        int64              `json:"pending"`
	Cancelled      int64              `json:"cancelled"`
	CompletionRate float64            `json:"completion_rate"`
	TotalVolume    float64            `json:"total_volume"`
	CountByType    map[string]int64   `json:"count_by_type"`
	VolumeByType   map[string]float64 `json:"volume_by_type"`
}

// GetStats aggregates donation figures for a date range. Every blood type
// appears in the breakdown even with zero donations.
func (s *DonationService) GetStats(ctx context.Context, start, end time.Time) (*DonationStats, error) {
	agg, err := s.donationRepo.Aggregate(ctx, start, end)
	if err != nil {
		return nil, err
	}

	stats := &DonationStats{
		PeriodStart:    start,
		PeriodEnd:      end,
		TotalDonations: agg.Total,
		Completed:      agg.Completed,
		Pending:        agg.Pending,
		Cancelled:      agg.Cancelled,
		TotalVolume:    round2(agg.TotalVolume),
		CountByType:    make(map[string]int64, len(domain.BloodTypes)),
		VolumeByType:   make(map[string]float64, len(domain.BloodTypes)),
	}

	for _, bt := range domain.BloodTypes {
		stats.CountByType[bt.String()] = agg.CountByType[bt.String()]
		stats.VolumeByType[bt.String()] = round2(agg.VolumeByType[bt.String()])
	}

	if agg.Total > 0 {
		stats.CompletionRate = round2(float64(agg.Completed) / float64(agg.Total) * 100)
	}

	return stats, nil
}

// generateBagNumber creates a collection bag identifier
func generateBagNumber() string {
	return "BAG-" + strings.ToUpper(uuid.New().String()[:8])
}
