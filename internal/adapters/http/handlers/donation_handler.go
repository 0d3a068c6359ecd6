package handlers

import (
	"errors"
	"strconv"
	"time"

	"bloodlink/internal/adapters/persistence/repositories"
	"bloodlink/internal/core/domain"
	"bloodlink/internal/core/services"
	"bloodlink/internal/pkg/pagination"
	"bloodlink/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DonationHandler handles donation lifecycle endpoints
type DonationHandler struct {
	donationService *services.DonationService
}

// NewDonationHandler creates a new donation handler
func NewDonationHandler(donationService *services.DonationService) *DonationHandler {
	return &DonationHandler{donationService: donationService}
}

// CancelRequest represents a cancellation request body
type CancelRequest struct {
	Reason string `json:"reason"`
}

// RecordDonation registers a new donation
// Donors record for themselves; staff may record for any donor.
// @Summary Record donation
// @Description Register a new pending donation
// @Tags Donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.RecordDonationInput true "Donation data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /donations [post]
func (h *DonationHandler) RecordDonation(c *fiber.Ctx) error {
	var input services.RecordDonationInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	// Donors may only record their own donations
	if !isStaff(c) {
		input.UserID = userID
	} else if input.UserID == 0 {
		input.UserID = userID
	}

	donation, err := h.donationService.RecordDonation(c.Context(), input)
	if err != nil {
		return h.mapError(c, err)
	}

	return response.Created(c, "Donation recorded successfully", donation)
}

// ListDonations lists donations with filters (staff)
// @Summary List donations
// @Description List donations with optional filters and pagination
// @Tags Donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param blood_type query string false "Filter by blood type"
// @Param user_id query int false "Filter by donor ID"
// @Success 200 {object} pagination.Response
// @Router /donations [get]
func (h *DonationHandler) ListDonations(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	filter := repositories.DonationFilter{
		Status:    c.Query("status"),
		BloodType: c.Query("blood_type"),
	}

	if v := c.Query("user_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return response.BadRequest(c, "Invalid user_id")
		}
		uid := uint(id)
		filter.UserID = &uid
	}
	if v := c.Query("start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return response.BadRequest(c, "Invalid start_date (expected YYYY-MM-DD)")
		}
		filter.StartDate = &t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return response.BadRequest(c, "Invalid end_date (expected YYYY-MM-DD)")
		}
		filter.EndDate = &t
	}

	donations, total, err := h.donationService.ListDonations(c.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list donations")
	}

	return c.JSON(pagination.NewResponse(donations, params, total))
}

// MyDonations lists the authenticated donor's donations
// @Summary My donations
// @Description List the authenticated donor's donation history
// @Tags Donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /donations/my [get]
func (h *DonationHandler) MyDonations(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	donations, err := h.donationService.ListUserDonations(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list donations")
	}

	return response.Success(c, "Donations retrieved successfully", donations)
}

// GetDonation returns one donation
// Donors can only view their own donations.
// @Summary Get donation
// @Description Get a donation by ID
// @Tags Donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Donation ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /donations/{id} [get]
func (h *DonationHandler) GetDonation(c *fiber.Ctx) error {
	id, err := donationIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid donation ID")
	}

	donation, err := h.donationService.GetDonation(c.Context(), id)
	if err != nil {
		return h.mapError(c, err)
	}

	if !isStaff(c) {
		userID, _ := c.Locals("userID").(uint)
		if donation.UserID != userID {
			return response.Forbidden(c, "You don't have permission to access this resource")
		}
	}

	return response.Success(c, "Donation retrieved successfully", donation)
}

// UpdateDonation patches a donation's medical screening fields and notes (staff)
// @Summary Update donation
// @Description Update a donation's medical screening fields and notes
// @Tags Donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Donation ID"
// @Param body body services.DonationPatch true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /donations/{id} [put]
func (h *DonationHandler) UpdateDonation(c *fiber.Ctx) error {
	id, err := donationIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid donation ID")
	}

	var patch services.DonationPatch
	if err := c.BodyParser(&patch); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	donation, err := h.donationService.UpdateDonation(c.Context(), id, patch)
	if err != nil {
		return h.mapError(c, err)
	}

	return response.Success(c, "Donation updated successfully", donation)
}

// CompleteDonation marks a donation completed and credits stock (staff)
// @Summary Complete donation
// @Description Transition a pending donation to completed and credit blood stock
// @Tags Donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Donation ID"
// @Param body body services.CompleteDonationInput false "Processing fields"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /donations/{id}/complete [post]
func (h *DonationHandler) CompleteDonation(c *fiber.Ctx) error {
	id, err := donationIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid donation ID")
	}

	var input services.CompleteDonationInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	result, err := h.donationService.CompleteDonation(c.Context(), id, input)
	if err != nil {
		return h.mapError(c, err)
	}

	// The donation is completed even if the stock credit failed; surface
	// the warning so staff can reconcile the ledger.
	if result.SecondaryErr != nil {
		return response.Success(c, "Donation completed with warnings", fiber.Map{
			"donation": result.Donation,
			"warning":  result.SecondaryErr.Error(),
		})
	}

	return response.Success(c, "Donation completed successfully", fiber.Map{
		"donation": result.Donation,
	})
}

// CancelDonation cancels a pending donation
// Donors can only cancel their own donations.
// @Summary Cancel donation
// @Description Transition a pending donation to cancelled
// @Tags Donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Donation ID"
// @Param body body CancelRequest false "Cancellation reason"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /donations/{id}/cancel [post]
func (h *DonationHandler) CancelDonation(c *fiber.Ctx) error {
	id, err := donationIDParam(c)
	if err != nil {
		return response.BadRequest(c, "Invalid donation ID")
	}

	var req CancelRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	if !isStaff(c) {
		userID, _ := c.Locals("userID").(uint)
		donation, err := h.donationService.GetDonation(c.Context(), id)
		if err != nil {
			return h.mapError(c, err)
		}
		if donation.UserID != userID {
			return response.Forbidden(c, "You don't have permission to access this resource")
		}
	}

	donation, err := h.donationService.CancelDonation(c.Context(), id, req.Reason)
	if err != nil {
		return h.mapError(c, err)
	}

	return response.Success(c, "Donation cancelled successfully", donation)
}

// GetStats returns donation statistics for a date range (staff)
// @Summary Donation statistics
// @Description Get aggregated donation figures for a date range
// @Tags Donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "Start date (YYYY-MM-DD, default 30 days ago)"
// @Param end_date query string false "End date (YYYY-MM-DD, default today)"
// @Success 200 {object} response.Response
// @Router /donations/stats [get]
func (h *DonationHandler) GetStats(c *fiber.Ctx) error {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -30)

	if v := c.Query("start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return response.BadRequest(c, "Invalid start_date (expected YYYY-MM-DD)")
		}
		start = t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return response.BadRequest(c, "Invalid end_date (expected YYYY-MM-DD)")
		}
		// Include the whole end day
		end = t.AddDate(0, 0, 1).Add(-time.Second)
	}

	stats, err := h.donationService.GetStats(c.Context(), start, end)
	if err != nil {
		return response.InternalServerError(c, "Failed to load statistics")
	}

	return response.Success(c, "Statistics retrieved successfully", stats)
}

// mapError maps donation lifecycle errors to HTTP responses
func (h *DonationHandler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrDonationNotFound):
		return response.NotFound(c, "Donation not found")
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return response.Conflict(c, "Donation is already finalized")
	case errors.Is(err, domain.ErrInvalidBloodType):
		return response.BadRequest(c, "Invalid blood type")
	case errors.Is(err, domain.ErrInvalidAmount):
		return response.BadRequest(c, "Invalid quantity")
	case errors.Is(err, domain.ErrUserNotFound):
		return response.NotFound(c, "Donor not found")
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, "Location not found")
	default:
		return response.InternalServerError(c, "Donation operation failed")
	}
}

// donationIDParam parses the donation ID path parameter
func donationIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
