package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StockLevel tracks the current stock per blood type in mL
	StockLevel = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "bloodlink_stock_level_ml",
		Help: "Current blood stock level per blood type in mL.",
	}, []string{"blood_type"})

	// StockOperations counts ledger mutations by operation and blood type
	StockOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloodlink_stock_operations_total",
		Help: "Total number of stock ledger operations.",
	}, []string{"operation", "blood_type"})

	// DonationsCompleted counts completed donations by blood type
	DonationsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloodlink_donations_completed_total",
		Help: "Total number of completed donations.",
	}, []string{"blood_type"})

	// DonationsRecorded counts recorded donations by blood type
	DonationsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloodlink_donations_recorded_total",
		Help: "Total number of recorded donations.",
	}, []string{"blood_type"})
)

// ObserveStock updates the stock level gauge for one account
func ObserveStock(bloodType string, currentStock float64) {
	StockLevel.WithLabelValues(bloodType).Set(currentStock)
}
