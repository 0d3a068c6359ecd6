package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailableStock(t *testing.T) {
	inv := &BloodInventory{CurrentStock: 5000, ReservedStock: 1200, ExpiredStock: 300}
	assert.Equal(t, 3500.0, inv.AvailableStock())
}

func TestStockStatusBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		status  string
	}{
		{"critical at zero", 0, StockStatusCritical},
		{"critical at half threshold", 500, StockStatusCritical},
		{"low just above half threshold", 500.01, StockStatusLow},
		{"low at threshold", 1000, StockStatusLow},
		{"normal just above threshold", 1000.01, StockStatusNormal},
		{"normal below high mark", 8999.99, StockStatusNormal},
		{"high at 90 percent of capacity", 9000, StockStatusHigh},
		{"high at capacity", 10000, StockStatusHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &BloodInventory{CurrentStock: tt.current, MinThreshold: 1000, MaxCapacity: 10000}
			assert.Equal(t, tt.status, inv.StockStatus())
		})
	}
}

func TestLowAndCriticalFlagsInclusive(t *testing.T) {
	inv := &BloodInventory{CurrentStock: 1000, MinThreshold: 1000, MaxCapacity: 10000}
	assert.True(t, inv.IsLowStock())
	assert.False(t, inv.IsCriticalStock())

	inv.CurrentStock = 500
	assert.True(t, inv.IsLowStock())
	assert.True(t, inv.IsCriticalStock())
}

func TestDonationIsTerminal(t *testing.T) {
	d := &Donation{Status: DonationStatusPending}
	assert.False(t, d.IsTerminal())

	d.Status = DonationStatusCompleted
	assert.True(t, d.IsTerminal())

	d.Status = DonationStatusCancelled
	assert.True(t, d.IsTerminal())
}

func TestInventorySummaryHidesQuantities(t *testing.T) {
	inv := &BloodInventory{BloodType: "O-", CurrentStock: 400, MinThreshold: 1000, MaxCapacity: 10000}

	full := inv.ToResponse()
	assert.Equal(t, 400.0, full.CurrentStock)
	assert.Equal(t, StockStatusCritical, full.StockStatus)

	summary := inv.ToSummary()
	assert.Equal(t, "O-", summary.BloodType)
	assert.Equal(t, StockStatusCritical, summary.StockStatus)
	assert.True(t, summary.IsCriticalStock)
}
