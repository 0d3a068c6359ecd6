package handlers

import (
	"errors"
	"strconv"

	"bloodlink/internal/core/domain"
	"bloodlink/internal/core/services"
	"bloodlink/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LocationHandler handles donation center endpoints
type LocationHandler struct {
	locationService *services.LocationService
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(locationService *services.LocationService) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

// ListLocations lists donation centers
// @Summary List locations
// @Description List donation centers (active only unless all=true)
// @Tags Locations
// @Accept json
// @Produce json
// @Param all query bool false "Include inactive locations (staff)"
// @Param search query string false "Search by name"
// @Param accepting query bool false "Only locations accepting donations"
// @Success 200 {object} response.Response
// @Router /locations [get]
func (h *LocationHandler) ListLocations(c *fiber.Ctx) error {
	if term := c.Query("search"); term != "" {
		locations, err := h.locationService.SearchLocations(c.Context(), term)
		if err != nil {
			return response.InternalServerError(c, "Failed to search locations")
		}
		return response.Success(c, "Locations retrieved successfully", locations)
	}

	if c.QueryBool("accepting") {
		locations, err := h.locationService.ListAcceptingDonations(c.Context())
		if err != nil {
			return response.InternalServerError(c, "Failed to list locations")
		}
		return response.Success(c, "Locations retrieved successfully", locations)
	}

	activeOnly := true
	if c.QueryBool("all") && isStaff(c) {
		activeOnly = false
	}

	locations, err := h.locationService.ListLocations(c.Context(), activeOnly)
	if err != nil {
		return response.InternalServerError(c, "Failed to list locations")
	}

	return response.Success(c, "Locations retrieved successfully", locations)
}

// GetLocation returns one donation center
// @Summary Get location
// @Description Get a donation center by ID
// @Tags Locations
// @Accept json
// @Produce json
// @Param id path int true "Location ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /locations/{id} [get]
func (h *LocationHandler) GetLocation(c *fiber.Ctx) error {
	id, err := locationIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid location ID")
	}

	location, err := h.locationService.GetLocation(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c, "Location not found")
		}
		return response.InternalServerError(c, "Failed to load location")
	}

	return response.Success(c, "Location retrieved successfully", location)
}

// CreateLocation registers a new donation center (admin)
// @Summary Create location
// @Description Register a new donation center
// @Tags Locations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateLocationInput true "Location data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /locations [post]
func (h *LocationHandler) CreateLocation(c *fiber.Ctx) error {
	var input services.CreateLocationInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.Name == "" {
		return response.BadRequest(c, "Name is required")
	}
	if input.Address == "" {
		return response.BadRequest(c, "Address is required")
	}

	location, err := h.locationService.CreateLocation(c.Context(), &input)
	if err != nil {
		return response.InternalServerError(c, "Failed to create location")
	}

	return response.Created(c, "Location created successfully", location)
}

// UpdateLocation edits a donation center (admin)
// @Summary Update location
// @Description Edit a donation center
// @Tags Locations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Location ID"
// @Param body body services.UpdateLocationInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /locations/{id} [put]
func (h *LocationHandler) UpdateLocation(c *fiber.Ctx) error {
	id, err := locationIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid location ID")
	}

	var input services.UpdateLocationInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	location, err := h.locationService.UpdateLocation(c.Context(), id, &input)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c, "Location not found")
		}
		return response.InternalServerError(c, "Failed to update location")
	}

	return response.Success(c, "Location updated successfully", location)
}

// DeactivateLocation marks a location inactive (admin)
// @Summary Deactivate location
// @Description Mark a donation center inactive
// @Tags Locations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Location ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /locations/{id} [delete]
func (h *LocationHandler) DeactivateLocation(c *fiber.Ctx) error {
	id, err := locationIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid location ID")
	}

	if err := h.locationService.DeactivateLocation(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c, "Location not found")
		}
		return response.InternalServerError(c, "Failed to deactivate location")
	}

	return response.Success(c, "Location deactivated successfully", nil)
}

// locationIDParam parses the location ID path parameter
func locationIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
