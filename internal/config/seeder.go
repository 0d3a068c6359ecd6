package config

import (
	"log"

	"bloodlink/internal/adapters/persistence/models"
	"bloodlink/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedStaffUsers(); err != nil {
		log.Printf("⚠️ Staff seeder skipped: %v", err)
	}
	if err := s.seedLocations(); err != nil {
		log.Printf("⚠️ Location seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedStaffUsers seeds default admin and lab accounts
// This is for development/testing only
// In production, create staff through secure process
func (s *Seeder) seedStaffUsers() error {
	var count int64
	s.db.Model(&models.User{}).Where("role IN ?", []string{models.RoleAdmin, models.RoleLab}).Count(&count)
	if count > 0 {
		return nil // Staff already exists
	}

	adminPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}
	labPassword, err := password.Hash("lab1234567")
	if err != nil {
		return err
	}

	staff := []*models.User{
		{
			Username: "admin",
			Email:    "admin@bloodlink.local",
			Password: adminPassword,
			Role:     models.RoleAdmin,
			IsActive: true,
		},
		{
			Username: "labtech",
			Email:    "lab@bloodlink.local",
			Password: labPassword,
			Role:     models.RoleLab,
			IsActive: true,
		},
	}

	for _, user := range staff {
		if err := s.db.Create(user).Error; err != nil {
			return err
		}
		log.Printf("✅ Staff user created: %s (%s)", user.Username, user.Role)
	}

	return nil
}

// seedLocations seeds a default donation center
func (s *Seeder) seedLocations() error {
	var count int64
	s.db.Model(&models.Location{}).Count(&count)
	if count > 0 {
		return nil // Locations already exist
	}

	openTime := "08:00"
	closeTime := "17:00"

	center := &models.Location{
		Name:                 "Central Blood Bank",
		Address:              "1 Health District Road",
		PhoneNumber:          "02-000-0000",
		Email:                "center@bloodlink.local",
		OpenTime:             &openTime,
		CloseTime:            &closeTime,
		LocationType:         models.LocationTypeBloodBank,
		IsActive:             true,
		IsAcceptingDonations: true,
	}

	if err := s.db.Create(center).Error; err != nil {
		return err
	}

	log.Printf("✅ Default location created: %s", center.Name)
	return nil
}
