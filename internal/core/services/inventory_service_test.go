package services

import (
	"context"
	"sync"
	"testing"

	"bloodlink/internal/adapters/persistence/models"
	"bloodlink/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInventoryService(t *testing.T) (*InventoryService, *fakeInventoryRepo) {
	t.Helper()
	repo := newFakeInventoryRepo()
	svc := NewInventoryService(repo)
	require.NoError(t, svc.Initialize(context.Background()))
	return svc, repo
}

func TestInitializeCreatesAllAccounts(t *testing.T) {
	svc, _ := newTestInventoryService(t)

	items, err := svc.ListStock(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 8)

	for _, inv := range items {
		assert.Equal(t, float64(0), inv.CurrentStock)
		assert.Equal(t, float64(DefaultMinThreshold), inv.MinThreshold)
		assert.Equal(t, float64(DefaultMaxCapacity), inv.MaxCapacity)
	}

	// Second run must not reset existing accounts
	_, err = svc.AddStock(context.Background(), "A+", 500, models.TxKindManual)
	require.NoError(t, err)
	require.NoError(t, svc.Initialize(context.Background()))

	inv, err := svc.GetStock(context.Background(), "A+")
	require.NoError(t, err)
	assert.Equal(t, 500.0, inv.CurrentStock)
}

func TestAddRemoveRoundTrip(t *testing.T) {
	svc, _ := newTestInventoryService(t)
	ctx := context.Background()

	before, err := svc.AddStock(ctx, "B+", 1200, models.TxKindDonation)
	require.NoError(t, err)
	assert.Equal(t, 1200.0, before.CurrentStock)

	_, err = svc.AddStock(ctx, "B+", 300.5, models.TxKindManual)
	require.NoError(t, err)

	after, err := svc.RemoveStock(ctx, "B+", 300.5, models.TxKindDispensed)
	require.NoError(t, err)
	assert.Equal(t, before.CurrentStock, after.CurrentStock)
}

func TestAddStockRejectsOverCapacity(t *testing.T) {
	svc, _ := newTestInventoryService(t)
	ctx := context.Background()

	_, err := svc.AddStock(ctx, "O+", 9000, models.TxKindDonation)
	require.NoError(t, err)

	_, err = svc.AddStock(ctx, "O+", 1500, models.TxKindDonation)
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)

	// Account unchanged after the rejected credit
	inv, err := svc.GetStock(ctx, "O+")
	require.NoError(t, err)
	assert.Equal(t, 9000.0, inv.CurrentStock)
}

func TestRemoveStockRejectionLeavesAccountUnchanged(t *testing.T) {
	svc, _ := newTestInventoryService(t)
	ctx := context.Background()

	_, err := svc.AddStock(ctx, "AB-", 400, models.TxKindDonation)
	require.NoError(t, err)

	_, err = svc.RemoveStock(ctx, "AB-", 400.01, models.TxKindDispensed)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	inv, err := svc.GetStock(ctx, "AB-")
	require.NoError(t, err)
	assert.Equal(t, 400.0, inv.CurrentStock)
	assert.Equal(t, 400.0, inv.AvailableStock())
}

func TestInvalidAmountsRejected(t *testing.T) {
	svc, _ := newTestInventoryService(t)
	ctx := context.Background()

	_, err := svc.AddStock(ctx, "A-", 0, models.TxKindManual)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.AddStock(ctx, "A-", -10, models.TxKindManual)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.RemoveStock(ctx, "A-", -10, models.TxKindDispensed)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.ReserveStock(ctx, "A-", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestUnknownBloodTypeRejected(t *testing.T) {
	svc, _ := newTestInventoryService(t)

	_, err := svc.AddStock(context.Background(), "C+", 100, models.TxKindManual)
	assert.ErrorIs(t, err, domain.ErrInvalidBloodType)

	_, err = svc.GetStock(context.Background(), "ab+")
	assert.ErrorIs(t, err, domain.ErrInvalidBloodType)
}

func TestReserveReleaseIdentity(t *testing.T) {
	svc, _ := newTestInventoryService(t)
	ctx := context.Background()

	_, err := svc.AddStock(ctx, "O-", 2000, models.TxKindDonation)
	require.NoError(t, err)

	reserved, err := svc.ReserveStock(ctx, "O-", 750)
	require.NoError(t, err)
	assert.Equal(t, 750.0, reserved.ReservedStock)
	assert.Equal(t, 1250.0, reserved.AvailableStock())
	assert.Equal(t, 2000.0, reserved.CurrentStock)

	released, err := svc.ReleaseReservedStock(ctx, "O-", 750)
	require.NoError(t, err)
	assert.Equal(t, 0.0, released.ReservedStock)
	assert.Equal(t, 2000.0, released.AvailableStock())
}

func TestReserveLimitedByAvailable(t *testing.T) {
	svc, _ := newTestInventoryService(t)
	ctx := context.Background()

	_, err := svc.AddStock(ctx, "B-", 1000, models.TxKindDonation)
	require.NoError(t, err)
	_, err = svc.ReserveStock(ctx, "B-", 600)
	require.NoError(t, err)

	// Only 400 remains available
	_, err = svc.ReserveStock(ctx, "B-", 500)
	assert.ErrorIs(t, err, domain.ErrInsufficientAvailable)
}

func TestReleaseMoreThanReservedRejected(t *testing.T) {
	svc, _ := newTestInventoryService(t)
	ctx := context.Background()

	_, err := svc.AddStock(ctx, "A+", 1000, models.TxKindDonation)
	require.NoError(t, err)
	_, err = svc.ReserveStock(ctx, "A+", 100)
	require.NoError(t, err)

	_, err = svc.ReleaseReservedStock(ctx, "A+", 100.5)
	assert.ErrorIs(t, err, domain.ErrOverRelease)
}

func TestMarkExpiredReplacesPreviousMark(t *testing.T) {
	svc, _ := newTestInventoryService(t)
	ctx := context.Background()

	_, err := svc.AddStock(ctx, "AB+", 1000, models.TxKindDonation)
	require.NoError(t, err)

	inv, err := svc.MarkExpired(ctx, "AB+", 300)
	require.NoError(t, err)
	assert.Equal(t, 300.0, inv.ExpiredStock)

	// Absolute set, not accumulation
	inv, err = svc.MarkExpired(ctx, "AB+", 200)
	require.NoError(t, err)
	assert.Equal(t, 200.0, inv.ExpiredStock)
	assert.Equal(t, 800.0, inv.AvailableStock())
}

func TestMarkExpiredGuardsInvariant(t *testing.T) {
	svc, _ := newTestInventoryService(t)
	ctx := context.Background()

	_, err := svc.AddStock(ctx, "AB+", 1000, models.TxKindDonation)
	require.NoError(t, err)
	_, err = svc.ReserveStock(ctx, "AB+", 700)
	require.NoError(t, err)

	// reserved (700) + expired (400) would exceed current (1000)
	_, err = svc.MarkExpired(ctx, "AB+", 400)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = svc.MarkExpired(ctx, "AB+", -1)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestDisposeExpired(t *testing.T) {
	svc, _ := newTestInventoryService(t)
	ctx := context.Background()

	_, err := svc.AddStock(ctx, "O+", 1000, models.TxKindDonation)
	require.NoError(t, err)
	_, err = svc.MarkExpired(ctx, "O+", 250)
	require.NoError(t, err)

	disposed, err := svc.DisposeExpired(ctx, "O+")
	require.NoError(t, err)
	assert.Equal(t, 250.0, disposed)

	inv, err := svc.GetStock(ctx, "O+")
	require.NoError(t, err)
	assert.Equal(t, 750.0, inv.CurrentStock)
	assert.Equal(t, 0.0, inv.ExpiredStock)

	// Nothing marked: no-op returning zero
	disposed, err = svc.DisposeExpired(ctx, "O+")
	require.NoError(t, err)
	assert.Equal(t, 0.0, disposed)
}

func TestDailyCountersAndReset(t *testing.T) {
	svc, _ := newTestInventoryService(t)
	ctx := context.Background()

	_, err := svc.AddStock(ctx, "A+", 450, models.TxKindDonation)
	require.NoError(t, err)
	_, err = svc.RemoveStock(ctx, "A+", 200, models.TxKindDispensed)
	require.NoError(t, err)

	inv, err := svc.GetStock(ctx, "A+")
	require.NoError(t, err)
	assert.Equal(t, 450.0, inv.UnitsReceivedToday)
	assert.Equal(t, 200.0, inv.UnitsDispensedToday)
	require.NotNil(t, inv.LastDonationDate)
	require.NotNil(t, inv.LastDispensedDate)

	require.NoError(t, svc.ResetAllDailyCounters(ctx))

	inv, err = svc.GetStock(ctx, "A+")
	require.NoError(t, err)
	assert.Equal(t, 0.0, inv.UnitsReceivedToday)
	assert.Equal(t, 0.0, inv.UnitsDispensedToday)
	// Reset only touches the counters
	assert.Equal(t, 250.0, inv.CurrentStock)
}

func TestManualKindDoesNotTouchDailyCounters(t *testing.T) {
	svc, _ := newTestInventoryService(t)
	ctx := context.Background()

	inv, err := svc.AddStock(ctx, "B+", 500, models.TxKindManual)
	require.NoError(t, err)
	assert.Equal(t, 0.0, inv.UnitsReceivedToday)
	assert.Nil(t, inv.LastDonationDate)
}

func TestSetStockOverride(t *testing.T) {
	svc, _ := newTestInventoryService(t)
	ctx := context.Background()

	inv, err := svc.SetStock(ctx, "O-", 5000, models.TxKindManual)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, inv.CurrentStock)

	_, err = svc.SetStock(ctx, "O-", -1, models.TxKindManual)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestThresholdBoundariesInclusive(t *testing.T) {
	svc, _ := newTestInventoryService(t)
	ctx := context.Background()

	// Exactly at threshold: low
	inv, err := svc.SetStock(ctx, "A+", DefaultMinThreshold, models.TxKindManual)
	require.NoError(t, err)
	assert.True(t, inv.IsLowStock())
	assert.False(t, inv.IsCriticalStock())
	assert.Equal(t, models.StockStatusLow, inv.StockStatus())

	// Exactly at half threshold: critical
	inv, err = svc.SetStock(ctx, "A+", DefaultMinThreshold*0.5, models.TxKindManual)
	require.NoError(t, err)
	assert.True(t, inv.IsLowStock())
	assert.True(t, inv.IsCriticalStock())
	assert.Equal(t, models.StockStatusCritical, inv.StockStatus())

	// Just above threshold: neither
	inv, err = svc.SetStock(ctx, "A+", DefaultMinThreshold+0.01, models.TxKindManual)
	require.NoError(t, err)
	assert.False(t, inv.IsLowStock())
}

func TestAlertsOverlapForCriticalAccounts(t *testing.T) {
	svc, _ := newTestInventoryService(t)
	ctx := context.Background()

	// All 8 start at zero stock, so all are both low and critical
	alerts, err := svc.GetAlerts(ctx)
	require.NoError(t, err)
	assert.Len(t, alerts.LowStock, 8)
	assert.Len(t, alerts.CriticalStock, 8)
	assert.Equal(t, 16, alerts.TotalAlerts)

	// Raise one type above threshold: it leaves both lists
	_, err = svc.SetStock(ctx, "O-", 5000, models.TxKindManual)
	require.NoError(t, err)

	alerts, err = svc.GetAlerts(ctx)
	require.NoError(t, err)
	assert.Len(t, alerts.LowStock, 7)
	assert.Len(t, alerts.CriticalStock, 7)

	// Between half-threshold and threshold: low only
	_, err = svc.SetStock(ctx, "A+", 700, models.TxKindManual)
	require.NoError(t, err)

	alerts, err = svc.GetAlerts(ctx)
	require.NoError(t, err)
	assert.Len(t, alerts.LowStock, 7)
	assert.Len(t, alerts.CriticalStock, 6)
}

func TestGetStatsAggregation(t *testing.T) {
	svc, _ := newTestInventoryService(t)
	ctx := context.Background()

	_, err := svc.AddStock(ctx, "A+", 3000, models.TxKindDonation)
	require.NoError(t, err)
	_, err = svc.AddStock(ctx, "O-", 2000, models.TxKindDonation)
	require.NoError(t, err)
	_, err = svc.ReserveStock(ctx, "O-", 500)
	require.NoError(t, err)

	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, stats.TotalBloodTypes)
	assert.Equal(t, 5000.0, stats.TotalStock)
	assert.Equal(t, 500.0, stats.TotalReservedStock)
	assert.Equal(t, 4500.0, stats.TotalAvailableStock)
	assert.Len(t, stats.BloodTypeDetails, 8)
	// Six accounts are still at zero, counted as critical only
	assert.Equal(t, 6, stats.CriticalStockCount)
	assert.Equal(t, 0, stats.LowStockCount)
}

func TestConcurrentAddStockNoLostUpdates(t *testing.T) {
	svc, _ := newTestInventoryService(t)
	ctx := context.Background()

	const workers = 20
	const perWorker = 5

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				_, err := svc.AddStock(ctx, "O-", 10, models.TxKindDonation)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	inv, err := svc.GetStock(ctx, "O-")
	require.NoError(t, err)
	assert.Equal(t, float64(workers*perWorker*10), inv.CurrentStock)
	assert.Equal(t, float64(workers*perWorker*10), inv.UnitsReceivedToday)
}

func TestConcurrentMixedOperationsKeepInvariants(t *testing.T) {
	svc, _ := newTestInventoryService(t)
	ctx := context.Background()

	_, err := svc.AddStock(ctx, "AB-", 5000, models.TxKindManual)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = svc.ReserveStock(ctx, "AB-", 100)
		}()
		go func() {
			defer wg.Done()
			_, _ = svc.RemoveStock(ctx, "AB-", 50, models.TxKindDispensed)
		}()
	}
	wg.Wait()

	inv, err := svc.GetStock(ctx, "AB-")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, inv.CurrentStock, 0.0)
	assert.GreaterOrEqual(t, inv.AvailableStock(), 0.0)
	assert.LessOrEqual(t, inv.ReservedStock+inv.ExpiredStock, inv.CurrentStock)
}

func TestSaveConflictSurfacesAsConcurrencyError(t *testing.T) {
	repo := newFakeInventoryRepo()
	svc := NewInventoryService(repo)
	require.NoError(t, svc.Initialize(context.Background()))

	inv, err := repo.GetByBloodType(context.Background(), "A+")
	require.NoError(t, err)

	// First write with the loaded version succeeds
	require.NoError(t, repo.Save(context.Background(), inv))

	// Replay with the stale version is rejected
	stale := *inv
	stale.Version--
	assert.ErrorIs(t, repo.Save(context.Background(), &stale), domain.ErrConcurrencyConflict)
}
