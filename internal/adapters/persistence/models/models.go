package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User roles
const (
	RoleDonor = "DONOR"
	RoleAdmin = "ADMIN"
	RoleLab   = "LAB"
)

// User represents users table (donors and staff)
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"`
	Role     string `gorm:"size:20;default:'DONOR'" json:"role"`

	// Personal information
	FirstName   string     `gorm:"size:100" json:"first_name"`
	LastName    string     `gorm:"size:100" json:"last_name"`
	PhoneNumber string     `gorm:"size:20" json:"phone_number"`
	BirthDate   *time.Time `gorm:"type:date" json:"birth_date"`
	BloodType   *string    `gorm:"size:3" json:"blood_type"`

	// Address information
	Address string `gorm:"size:500" json:"address"`
	City    string `gorm:"size:100" json:"city"`
	State   string `gorm:"size:100" json:"state"`
	ZipCode string `gorm:"size:20" json:"zip_code"`
	Country string `gorm:"size:100" json:"country"`

	// Account status
	IsActive         bool       `gorm:"default:true" json:"is_active"`
	IsEligible       bool       `gorm:"default:true" json:"is_eligible"`
	LastDonationDate *time.Time `json:"last_donation_date"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// IsStaff reports whether the user may manage inventory and donations.
func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleLab
}

// UserResponse DTO
type UserResponse struct {
	ID               uint       `json:"id"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	Role             string     `json:"role"`
	FirstName        string     `json:"first_name,omitempty"`
	LastName         string     `json:"last_name,omitempty"`
	PhoneNumber      string     `json:"phone_number,omitempty"`
	BirthDate        *time.Time `json:"birth_date,omitempty"`
	BloodType        *string    `json:"blood_type,omitempty"`
	Address          string     `json:"address,omitempty"`
	City             string     `json:"city,omitempty"`
	State            string     `json:"state,omitempty"`
	ZipCode          string     `json:"zip_code,omitempty"`
	Country          string     `json:"country,omitempty"`
	IsActive         bool       `json:"is_active"`
	IsEligible       bool       `json:"is_eligible"`
	LastDonationDate *time.Time `json:"last_donation_date"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		Role:             u.Role,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		PhoneNumber:      u.PhoneNumber,
		BirthDate:        u.BirthDate,
		BloodType:        u.BloodType,
		Address:          u.Address,
		City:             u.City,
		State:            u.State,
		ZipCode:          u.ZipCode,
		Country:          u.Country,
		IsActive:         u.IsActive,
		IsEligible:       u.IsEligible,
		LastDonationDate: u.LastDonationDate,
		CreatedAt:        u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Location{},
		&BloodInventory{},
		&Donation{},
	)
}
