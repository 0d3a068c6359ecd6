package models

import (
	"time"
)

// ============================================================
// Blood Inventory & Donation Tables
// ============================================================

// Stock status values derived from current stock level
const (
	StockStatusCritical = "critical"
	StockStatusLow      = "low"
	StockStatusHigh     = "high"
	StockStatusNormal   = "normal"
)

// Stock transaction kinds (affect daily counters)
const (
	TxKindDonation  = "donation"
	TxKindDispensed = "dispensed"
	TxKindManual    = "manual"
)

// BloodInventory represents blood_inventory table (one row per blood type).
// All quantities are in mL with 2-decimal precision. Version is the optimistic
// lock stamp: every persisted mutation must match the loaded version.
type BloodInventory struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	BloodType string `gorm:"size:3;uniqueIndex;not null" json:"blood_type"`

	CurrentStock float64 `gorm:"type:decimal(10,2);not null;default:0" json:"current_stock"`
	MinThreshold float64 `gorm:"type:decimal(10,2);default:1000" json:"min_threshold"`
	MaxCapacity  float64 `gorm:"type:decimal(10,2);default:10000" json:"max_capacity"`

	ReservedStock       float64 `gorm:"type:decimal(10,2);default:0" json:"reserved_stock"`
	ExpiredStock        float64 `gorm:"type:decimal(10,2);default:0" json:"expired_stock"`
	UnitsReceivedToday  float64 `gorm:"type:decimal(10,2);default:0" json:"units_received_today"`
	UnitsDispensedToday float64 `gorm:"type:decimal(10,2);default:0" json:"units_dispensed_today"`

	Version uint `gorm:"not null;default:0" json:"-"`

	LastUpdated       time.Time  `json:"last_updated"`
	LastDonationDate  *time.Time `json:"last_donation_date"`
	LastDispensedDate *time.Time `json:"last_dispensed_date"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (BloodInventory) TableName() string {
	return "blood_inventory"
}

// AvailableStock is current − reserved − expired.
func (inv *BloodInventory) AvailableStock() float64 {
	return inv.CurrentStock - inv.ReservedStock - inv.ExpiredStock
}

// IsLowStock reports current ≤ threshold (inclusive).
func (inv *BloodInventory) IsLowStock() bool {
	return inv.CurrentStock <= inv.MinThreshold
}

// IsCriticalStock reports current ≤ 50% of threshold (inclusive).
func (inv *BloodInventory) IsCriticalStock() bool {
	return inv.CurrentStock <= inv.MinThreshold*0.5
}

// StockStatus returns critical, low, high or normal.
func (inv *BloodInventory) StockStatus() string {
	switch {
	case inv.IsCriticalStock():
		return StockStatusCritical
	case inv.IsLowStock():
		return StockStatusLow
	case inv.CurrentStock >= inv.MaxCapacity*0.9:
		return StockStatusHigh
	default:
		return StockStatusNormal
	}
}

// InventoryResponse is the full DTO for staff users.
type InventoryResponse struct {
	ID                  uint       `json:"id"`
	BloodType           string     `json:"blood_type"`
	CurrentStock        float64    `json:"current_stock"`
	MinThreshold        float64    `json:"min_threshold"`
	MaxCapacity         float64    `json:"max_capacity"`
	ReservedStock       float64    `json:"reserved_stock"`
	ExpiredStock        float64    `json:"expired_stock"`
	AvailableStock      float64    `json:"available_stock"`
	UnitsReceivedToday  float64    `json:"units_received_today"`
	UnitsDispensedToday float64    `json:"units_dispensed_today"`
	IsLowStock          bool       `json:"is_low_stock"`
	IsCriticalStock     bool       `json:"is_critical_stock"`
	StockStatus         string     `json:"stock_status"`
	LastUpdated         time.Time  `json:"last_updated"`
	LastDonationDate    *time.Time `json:"last_donation_date"`
	LastDispensedDate   *time.Time `json:"last_dispensed_date"`
	CreatedAt           time.Time  `json:"created_at"`
}

func (inv *BloodInventory) ToResponse() *InventoryResponse {
	return &InventoryResponse{
		ID:                  inv.ID,
		BloodType:           inv.BloodType,
		CurrentStock:        inv.CurrentStock,
		MinThreshold:        inv.MinThreshold,
		MaxCapacity:         inv.MaxCapacity,
		ReservedStock:       inv.ReservedStock,
		ExpiredStock:        inv.ExpiredStock,
		AvailableStock:      inv.AvailableStock(),
		UnitsReceivedToday:  inv.UnitsReceivedToday,
		UnitsDispensedToday: inv.UnitsDispensedToday,
		IsLowStock:          inv.IsLowStock(),
		IsCriticalStock:     inv.IsCriticalStock(),
		StockStatus:         inv.StockStatus(),
		LastUpdated:         inv.LastUpdated,
		LastDonationDate:    inv.LastDonationDate,
		LastDispensedDate:   inv.LastDispensedDate,
		CreatedAt:           inv.CreatedAt,
	}
}

// InventorySummary is the limited DTO shown to donors.
type InventorySummary struct {
	BloodType       string    `json:"blood_type"`
	StockStatus     string    `json:"stock_status"`
	IsLowStock      bool      `json:"is_low_stock"`
	IsCriticalStock bool      `json:"is_critical_stock"`
	LastUpdated     time.Time `json:"last_updated"`
}

func (inv *BloodInventory) ToSummary() *InventorySummary {
	return &InventorySummary{
		BloodType:       inv.BloodType,
		StockStatus:     inv.StockStatus(),
		IsLowStock:      inv.IsLowStock(),
		IsCriticalStock: inv.IsCriticalStock(),
		LastUpdated:     inv.LastUpdated,
	}
}

// Donation statuses
const (
	DonationStatusPending   = "PENDING"
	DonationStatusCompleted = "COMPLETED"
	DonationStatusCancelled = "CANCELLED"
)

// Donation represents donations table (one donor contribution event).
type Donation struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	BloodType    string    `gorm:"size:3;not null;index" json:"blood_type"`
	Quantity     float64   `gorm:"type:decimal(10,2);not null" json:"quantity"`
	DonationDate time.Time `gorm:"not null;index" json:"donation_date"`
	LocationID   *uint     `gorm:"index" json:"location_id"`
	Status       string    `gorm:"size:15;default:'PENDING';index" json:"status"`

	// Medical screening (advisory only, no range invariants)
	HemoglobinLevel        *float64 `gorm:"type:decimal(4,2)" json:"hemoglobin_level"`
	BloodPressureSystolic  *int     `json:"blood_pressure_systolic"`
	BloodPressureDiastolic *int     `json:"blood_pressure_diastolic"`
	Weight                 *float64 `gorm:"type:decimal(5,2)" json:"weight"`
	Temperature            *float64 `gorm:"type:decimal(4,1)" json:"temperature"`

	// Processing information
	CollectionBagNumber *string    `gorm:"size:50" json:"collection_bag_number"`
	ExpiryDate          *time.Time `json:"expiry_date"`
	ProcessingNotes     string     `gorm:"type:text" json:"processing_notes"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User     User      `gorm:"foreignKey:UserID" json:"donor,omitempty"`
	Location *Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
}

func (Donation) TableName() string {
	return "donations"
}

// IsTerminal reports whether the donation can no longer transition.
func (d *Donation) IsTerminal() bool {
	return d.Status == DonationStatusCompleted || d.Status == DonationStatusCancelled
}

// ============================================================
// Donation Center Locations
// ============================================================

// Location types
const (
	LocationTypeBloodBank       = "blood_bank"
	LocationTypeHospital        = "hospital"
	LocationTypeMobileUnit      = "mobile_unit"
	LocationTypeCommunityCenter = "community_center"
)

// Location represents locations table (donation centers and blood banks)
type Location struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	Name      string   `gorm:"size:255;not null" json:"name"`
	Address   string   `gorm:"size:255;not null" json:"address"`
	Latitude  *float64 `gorm:"type:decimal(10,8)" json:"latitude"`
	Longitude *float64 `gorm:"type:decimal(11,8)" json:"longitude"`

	// Contact information
	PhoneNumber string `gorm:"size:20" json:"phone_number"`
	Email       string `gorm:"size:255" json:"email"`
	Website     string `gorm:"size:255" json:"website"`

	// Operating hours
	OpenTime  *string `gorm:"size:10" json:"open_time"`
	CloseTime *string `gorm:"size:10" json:"close_time"`

	// Additional information
	LocationType string `gorm:"size:50" json:"location_type"`
	Capacity     *int   `json:"capacity"`
	Amenities    string `gorm:"type:text" json:"amenities"`

	// Status and availability
	IsActive             bool `gorm:"default:true" json:"is_active"`
	IsAcceptingDonations bool `gorm:"default:true" json:"is_accepting_donations"`
	CurrentWaitTime      int  `gorm:"default:0" json:"current_wait_time"`
	AppointmentsRequired bool `gorm:"default:false" json:"appointments_required"`

	// Statistics
	TotalDonationsCollected int      `gorm:"default:0" json:"total_donations_collected"`
	Rating                  *float64 `gorm:"type:decimal(3,2)" json:"rating"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Location) TableName() string {
	return "locations"
}
