package services

import (
	"context"
	"log"

	"bloodlink/internal/adapters/persistence/models"
	"bloodlink/internal/adapters/persistence/repositories"
)

// LocationService handles donation center management
type LocationService struct {
	locationRepo repositories.LocationRepository
}

// NewLocationService creates a new location service
func NewLocationService(locationRepo repositories.LocationRepository) *LocationService {
	return &LocationService{locationRepo: locationRepo}
}

// CreateLocationInput represents location creation input
type CreateLocationInput struct {
	Name      string   `json:"name" validate:"required"`
	Address   string   `json:"address" validate:"required"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	Website     string `json:"website"`

	OpenTime  *string `json:"open_time"`
	CloseTime *string `json:"close_time"`

	LocationType string `json:"location_type"`
	Capacity     *int   `json:"capacity"`
	Amenities    string `json:"amenities"`

	AppointmentsRequired bool `json:"appointments_required"`
}

// UpdateLocationInput represents location update input
type UpdateLocationInput struct {
	Name      *string  `json:"name"`
	Address   *string  `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	PhoneNumber *string `json:"phone_number"`
	Email       *string `json:"email"`
	Website     *string `json:"website"`

	OpenTime  *string `json:"open_time"`
	CloseTime *string `json:"close_time"`

	LocationType *string `json:"location_type"`
	Capacity     *int    `json:"capacity"`
	Amenities    *string `json:"amenities"`

	IsActive             *bool `json:"is_active"`
	IsAcceptingDonations *bool `json:"is_accepting_donations"`
	CurrentWaitTime      *int  `json:"current_wait_time"`
	AppointmentsRequired *bool `json:"appointments_required"`
}

// CreateLocation registers a new donation center
func (s *LocationService) CreateLocation(ctx context.Context, input *CreateLocationInput) (*models.Location, error) {
	locationType := input.LocationType
	if locationType == "" {
		locationType = models.LocationTypeBloodBank
	}

	location := &models.Location{
		Name:                 input.Name,
		Address:              input.Address,
		Latitude:             input.Latitude,
		Longitude:            input.Longitude,
		PhoneNumber:          input.PhoneNumber,
		Email:                input.Email,
		Website:              input.Website,
		OpenTime:             input.OpenTime,
		CloseTime:            input.CloseTime,
		LocationType:         locationType,
		Capacity:             input.Capacity,
		Amenities:            input.Amenities,
		IsActive:             true,
		IsAcceptingDonations: true,
		AppointmentsRequired: input.AppointmentsRequired,
	}

	if err := s.locationRepo.Create(ctx, location); err != nil {
		return nil, err
	}

	log.Printf("✅ Location created: %s", location.Name)
	return location, nil
}

// GetLocation returns one location by ID
func (s *LocationService) GetLocation(ctx context.Context, id uint) (*models.Location, error) {
	return s.locationRepo.GetByID(ctx, id)
}

// ListLocations returns locations, optionally active only
func (s *LocationService) ListLocations(ctx context.Context, activeOnly bool) ([]models.Location, error) {
	return s.locationRepo.List(ctx, activeOnly)
}

// ListAcceptingDonations returns locations currently open for donors
func (s *LocationService) ListAcceptingDonations(ctx context.Context) ([]models.Location, error) {
	return s.locationRepo.ListAcceptingDonations(ctx)
}

// SearchLocations searches active locations by name
func (s *LocationService) SearchLocations(ctx context.Context, term string) ([]models.Location, error) {
	return s.locationRepo.SearchByName(ctx, term)
}

// UpdateLocation edits a donation center
func (s *LocationService) UpdateLocation(ctx context.Context, id uint, input *UpdateLocationInput) (*models.Location, error) {
	location, err := s.locationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		location.Name = *input.Name
	}
	if input.Address != nil {
		location.Address = *input.Address
	}
	if input.Latitude != nil {
		location.Latitude = input.Latitude
	}
	if input.Longitude != nil {
		location.Longitude = input.Longitude
	}
	if input.PhoneNumber != nil {
		location.PhoneNumber = *input.PhoneNumber
	}
	if input.Email != nil {
		location.Email = *input.Email
	}
	if input.Website != nil {
		location.Website = *input.Website
	}
	if input.OpenTime != nil {
		location.OpenTime = input.OpenTime
	}
	if input.CloseTime != nil {
		location.CloseTime = input.CloseTime
	}
	if input.LocationType != nil {
		location.LocationType = *input.LocationType
	}
	if input.Capacity != nil {
		location.Capacity = input.Capacity
	}
	if input.Amenities != nil {
		location.Amenities = *input.Amenities
	}
	if input.IsActive != nil {
		location.IsActive = *input.IsActive
	}
	if input.IsAcceptingDonations != nil {
		location.IsAcceptingDonations = *input.IsAcceptingDonations
	}
	if input.CurrentWaitTime != nil {
		location.CurrentWaitTime = *input.CurrentWaitTime
	}
	if input.AppointmentsRequired != nil {
		location.AppointmentsRequired = *input.AppointmentsRequired
	}

	if err := s.locationRepo.Save(ctx, location); err != nil {
		return nil, err
	}

	return location, nil
}

// DeactivateLocation marks a location inactive without deleting records
func (s *LocationService) DeactivateLocation(ctx context.Context, id uint) error {
	location, err := s.locationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	location.IsActive = false
	location.IsAcceptingDonations = false

	if err := s.locationRepo.Save(ctx, location); err != nil {
		return err
	}

	log.Printf("✅ Location deactivated: %s", location.Name)
	return nil
}
