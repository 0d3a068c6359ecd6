package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"bloodlink/internal/adapters/persistence/models"
	"bloodlink/internal/adapters/persistence/repositories"
	"bloodlink/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type donationFixture struct {
	svc          *DonationService
	inventorySvc *InventoryService
	userRepo     *fakeUserRepo
	locationRepo *fakeLocationRepo
	donationRepo *fakeDonationRepo
	donor        *models.User
	location     *models.Location
}

func newDonationFixture(t *testing.T) *donationFixture {
	t.Helper()

	inventoryRepo := newFakeInventoryRepo()
	inventorySvc := NewInventoryService(inventoryRepo)
	require.NoError(t, inventorySvc.Initialize(context.Background()))

	userRepo := newFakeUserRepo()
	donor := &models.User{Username: "donor1", Email: "donor1@example.com", Role: models.RoleDonor, IsActive: true}
	require.NoError(t, userRepo.Create(context.Background(), donor))

	locationRepo := newFakeLocationRepo()
	location := &models.Location{Name: "Central Blood Bank", Address: "1 Health District Road", IsActive: true, IsAcceptingDonations: true}
	require.NoError(t, locationRepo.Create(context.Background(), location))

	donationRepo := newFakeDonationRepo()

	return &donationFixture{
		svc:          NewDonationService(donationRepo, userRepo, locationRepo, inventorySvc),
		inventorySvc: inventorySvc,
		userRepo:     userRepo,
		locationRepo: locationRepo,
		donationRepo: donationRepo,
		donor:        donor,
		location:     location,
	}
}

func (f *donationFixture) record(t *testing.T, bloodType string, quantity float64) *models.Donation {
	t.Helper()
	donation, err := f.svc.RecordDonation(context.Background(), RecordDonationInput{
		UserID:     f.donor.ID,
		BloodType:  bloodType,
		Quantity:   quantity,
		LocationID: &f.location.ID,
	})
	require.NoError(t, err)
	return donation
}

func TestRecordDonationStartsPending(t *testing.T) {
	f := newDonationFixture(t)

	donation := f.record(t, "O-", 500)
	assert.Equal(t, models.DonationStatusPending, donation.Status)
	assert.Equal(t, "O-", donation.BloodType)
	assert.Equal(t, 500.0, donation.Quantity)
	assert.False(t, donation.IsTerminal())

	// Recording does not touch stock
	inv, err := f.inventorySvc.GetStock(context.Background(), "O-")
	require.NoError(t, err)
	assert.Equal(t, 0.0, inv.CurrentStock)
}

func TestRecordDonationValidation(t *testing.T) {
	f := newDonationFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordDonation(ctx, RecordDonationInput{UserID: f.donor.ID, BloodType: "X+", Quantity: 500})
	assert.ErrorIs(t, err, domain.ErrInvalidBloodType)

	_, err = f.svc.RecordDonation(ctx, RecordDonationInput{UserID: f.donor.ID, BloodType: "O-", Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.svc.RecordDonation(ctx, RecordDonationInput{UserID: 999, BloodType: "O-", Quantity: 500})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	badLocation := uint(999)
	_, err = f.svc.RecordDonation(ctx, RecordDonationInput{UserID: f.donor.ID, BloodType: "O-", Quantity: 500, LocationID: &badLocation})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCompleteDonationCreditsStock(t *testing.T) {
	f := newDonationFixture(t)
	ctx := context.Background()

	first := f.record(t, "O-", 500)
	second := f.record(t, "O-", 600)

	result, err := f.svc.CompleteDonation(ctx, first.ID, CompleteDonationInput{})
	require.NoError(t, err)
	require.Nil(t, result.SecondaryErr)
	assert.Equal(t, models.DonationStatusCompleted, result.Donation.Status)

	result, err = f.svc.CompleteDonation(ctx, second.ID, CompleteDonationInput{})
	require.NoError(t, err)
	require.Nil(t, result.SecondaryErr)

	inv, err := f.inventorySvc.GetStock(ctx, "O-")
	require.NoError(t, err)
	assert.Equal(t, 1100.0, inv.CurrentStock)
	assert.Equal(t, 1100.0, inv.UnitsReceivedToday)

	// Donor bookkeeping updated
	donor, err := f.userRepo.GetByID(ctx, f.donor.ID)
	require.NoError(t, err)
	require.NotNil(t, donor.LastDonationDate)

	// Location counter updated
	location, err := f.locationRepo.GetByID(ctx, f.location.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, location.TotalDonationsCollected)
}

func TestCompleteDonationIsNotRepeatable(t *testing.T) {
	f := newDonationFixture(t)
	ctx := context.Background()

	donation := f.record(t, "O-", 500)

	_, err := f.svc.CompleteDonation(ctx, donation.ID, CompleteDonationInput{})
	require.NoError(t, err)

	_, err = f.svc.CompleteDonation(ctx, donation.ID, CompleteDonationInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	// Stock credited exactly once
	inv, err := f.inventorySvc.GetStock(ctx, "O-")
	require.NoError(t, err)
	assert.Equal(t, 500.0, inv.CurrentStock)
}

func TestCompleteDonationAssignsProcessingFields(t *testing.T) {
	f := newDonationFixture(t)
	ctx := context.Background()

	donation := f.record(t, "A+", 450)

	result, err := f.svc.CompleteDonation(ctx, donation.ID, CompleteDonationInput{})
	require.NoError(t, err)

	require.NotNil(t, result.Donation.CollectionBagNumber)
	assert.True(t, strings.HasPrefix(*result.Donation.CollectionBagNumber, "BAG-"))
	require.NotNil(t, result.Donation.ExpiryDate)
	assert.True(t, result.Donation.ExpiryDate.After(time.Now()))

	// Explicit fields are kept as given
	donation2 := f.record(t, "A+", 450)
	bag := "BAG-CUSTOM01"
	expiry := time.Now().AddDate(0, 0, 35)
	result, err = f.svc.CompleteDonation(ctx, donation2.ID, CompleteDonationInput{
		CollectionBagNumber: &bag,
		ExpiryDate:          &expiry,
		ProcessingNotes:     "processed same day",
	})
	require.NoError(t, err)
	assert.Equal(t, bag, *result.Donation.CollectionBagNumber)
	assert.Equal(t, "processed same day", result.Donation.ProcessingNotes)
}

func TestCompleteDonationStockFailureIsNotRolledBack(t *testing.T) {
	f := newDonationFixture(t)
	ctx := context.Background()

	// Fill the O- account so the completion credit must fail
	_, err := f.inventorySvc.SetStock(ctx, "O-", DefaultMaxCapacity, models.TxKindManual)
	require.NoError(t, err)

	donation := f.record(t, "O-", 500)

	result, err := f.svc.CompleteDonation(ctx, donation.ID, CompleteDonationInput{})
	require.NoError(t, err)
	require.NotNil(t, result.SecondaryErr)
	assert.ErrorIs(t, result.SecondaryErr, domain.ErrCapacityExceeded)

	// The donation stays completed despite the failed credit
	stored, err := f.svc.GetDonation(ctx, donation.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DonationStatusCompleted, stored.Status)

	// Stock is unchanged
	inv, err := f.inventorySvc.GetStock(ctx, "O-")
	require.NoError(t, err)
	assert.Equal(t, float64(DefaultMaxCapacity), inv.CurrentStock)
}

func TestCancelDonation(t *testing.T) {
	f := newDonationFixture(t)
	ctx := context.Background()

	donation := f.record(t, "B+", 500)

	cancelled, err := f.svc.CancelDonation(ctx, donation.ID, "donor deferred")
	require.NoError(t, err)
	assert.Equal(t, models.DonationStatusCancelled, cancelled.Status)
	assert.Equal(t, "donor deferred", cancelled.ProcessingNotes)

	// Terminal: cannot complete or cancel again
	_, err = f.svc.CompleteDonation(ctx, donation.ID, CompleteDonationInput{})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	_, err = f.svc.CancelDonation(ctx, donation.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	// Cancelled donations never touch stock
	inv, err := f.inventorySvc.GetStock(ctx, "B+")
	require.NoError(t, err)
	assert.Equal(t, 0.0, inv.CurrentStock)
}

func TestUpdateDonationMedicalFieldsAnyState(t *testing.T) {
	f := newDonationFixture(t)
	ctx := context.Background()

	donation := f.record(t, "A-", 400)

	hb := 13.5
	notes := "screening passed"
	updated, err := f.svc.UpdateDonation(ctx, donation.ID, DonationPatch{
		HemoglobinLevel: &hb,
		ProcessingNotes: &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, 13.5, *updated.HemoglobinLevel)
	assert.Equal(t, "screening passed", updated.ProcessingNotes)

	_, err = f.svc.CompleteDonation(ctx, donation.ID, CompleteDonationInput{})
	require.NoError(t, err)

	// Still patchable after completion; the ledger fields stay fixed
	weight := 72.5
	postNotes := "bag relabelled"
	updated, err = f.svc.UpdateDonation(ctx, donation.ID, DonationPatch{
		Weight:          &weight,
		ProcessingNotes: &postNotes,
	})
	require.NoError(t, err)
	assert.Equal(t, 72.5, *updated.Weight)
	assert.Equal(t, "bag relabelled", updated.ProcessingNotes)
	assert.Equal(t, models.DonationStatusCompleted, updated.Status)
	assert.Equal(t, 400.0, updated.Quantity)
	assert.Equal(t, "A-", updated.BloodType)

	// Stock credited exactly once, untouched by the patch
	inv, err := f.inventorySvc.GetStock(ctx, "A-")
	require.NoError(t, err)
	assert.Equal(t, 400.0, inv.CurrentStock)
}

func TestUpdateDonationUnknownID(t *testing.T) {
	f := newDonationFixture(t)

	_, err := f.svc.UpdateDonation(context.Background(), 999, DonationPatch{})
	assert.ErrorIs(t, err, domain.ErrDonationNotFound)
}

func TestListDonationsFilters(t *testing.T) {
	f := newDonationFixture(t)
	ctx := context.Background()

	a := f.record(t, "A+", 400)
	f.record(t, "O-", 500)
	_, err := f.svc.CompleteDonation(ctx, a.ID, CompleteDonationInput{})
	require.NoError(t, err)

	completed, total, err := f.svc.ListDonations(ctx, repositories.DonationFilter{Status: models.DonationStatusCompleted}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, completed, 1)
	assert.Equal(t, "A+", completed[0].BloodType)

	mine, err := f.svc.ListUserDonations(ctx, f.donor.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestDonationStatsZeroFilledBreakdown(t *testing.T) {
	f := newDonationFixture(t)
	ctx := context.Background()

	a := f.record(t, "A+", 400)
	b := f.record(t, "A+", 450)
	c := f.record(t, "O-", 500)
	f.record(t, "B+", 350)

	_, err := f.svc.CompleteDonation(ctx, a.ID, CompleteDonationInput{})
	require.NoError(t, err)
	_, err = f.svc.CompleteDonation(ctx, b.ID, CompleteDonationInput{})
	require.NoError(t, err)
	_, err = f.svc.CancelDonation(ctx, c.ID, "")
	require.NoError(t, err)

	start := time.Now().AddDate(0, 0, -1)
	end := time.Now().AddDate(0, 0, 1)
	stats, err := f.svc.GetStats(ctx, start, end)
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.TotalDonations)
	assert.Equal(t, int64(2), stats.Completed)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(1), stats.Cancelled)
	assert.Equal(t, 850.0, stats.TotalVolume)
	assert.Equal(t, 50.0, stats.CompletionRate)

	// Every blood type appears, even with zero donations
	assert.Len(t, stats.CountByType, 8)
	assert.Len(t, stats.VolumeByType, 8)
	assert.Equal(t, int64(2), stats.CountByType["A+"])
	assert.Equal(t, 850.0, stats.VolumeByType["A+"])
	assert.Equal(t, int64(0), stats.CountByType["AB-"])
}
