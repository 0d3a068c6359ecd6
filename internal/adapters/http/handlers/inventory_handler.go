package handlers

import (
	"errors"
	"net/url"

	"bloodlink/internal/adapters/persistence/models"
	"bloodlink/internal/core/domain"
	"bloodlink/internal/core/services"
	"bloodlink/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// InventoryHandler handles blood stock endpoints
type InventoryHandler struct {
	inventoryService *services.InventoryService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// StockRequest represents a stock mutation request body
type StockRequest struct {
	Quantity        float64 `json:"quantity"`
	TransactionType string  `json:"transaction_type"`
}

// SetStockRequest represents a direct stock level override
type SetStockRequest struct {
	CurrentStock    float64 `json:"current_stock"`
	TransactionType string  `json:"transaction_type"`
}

// ListInventory returns all blood stock accounts
// Staff see full figures; donors see status summaries only.
// @Summary List blood inventory
// @Description Get stock levels for all blood types
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /inventory [get]
func (h *InventoryHandler) ListInventory(c *fiber.Ctx) error {
	items, err := h.inventoryService.ListStock(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load inventory")
	}

	if isStaff(c) {
		out := make([]*models.InventoryResponse, len(items))
		for i := range items {
			out[i] = items[i].ToResponse()
		}
		return response.Success(c, "Inventory retrieved successfully", out)
	}

	out := make([]*models.InventorySummary, len(items))
	for i := range items {
		out[i] = items[i].ToSummary()
	}
	return response.Success(c, "Inventory retrieved successfully", out)
}

// GetInventory returns the stock account for one blood type
// @Summary Get blood type stock
// @Description Get the stock account for a single blood type
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bloodType path string true "Blood type (URL-encoded, e.g. A%2B)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /inventory/{bloodType} [get]
func (h *InventoryHandler) GetInventory(c *fiber.Ctx) error {
	inv, err := h.inventoryService.GetStock(c.Context(), bloodTypeParam(c))
	if err != nil {
		return h.mapError(c, err)
	}

	if isStaff(c) {
		return response.Success(c, "Stock retrieved successfully", inv.ToResponse())
	}
	return response.Success(c, "Stock retrieved successfully", inv.ToSummary())
}

// SetStock overrides the stock level directly
// @Summary Set stock level
// @Description Set the current stock level for a blood type (admin)
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bloodType path string true "Blood type"
// @Param body body SetStockRequest true "New stock level"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /inventory/{bloodType} [put]
func (h *InventoryHandler) SetStock(c *fiber.Ctx) error {
	var req SetStockRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	inv, err := h.inventoryService.SetStock(c.Context(), bloodTypeParam(c), req.CurrentStock, req.TransactionType)
	if err != nil {
		return h.mapError(c, err)
	}

	return response.Success(c, "Stock level updated", inv.ToResponse())
}

// AddStock credits stock for a blood type
// @Summary Add stock
// @Description Credit stock for a blood type
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bloodType path string true "Blood type"
// @Param body body StockRequest true "Quantity to add"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /inventory/{bloodType}/add [post]
func (h *InventoryHandler) AddStock(c *fiber.Ctx) error {
	var req StockRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	kind := req.TransactionType
	if kind == "" {
		kind = models.TxKindManual
	}

	inv, err := h.inventoryService.AddStock(c.Context(), bloodTypeParam(c), req.Quantity, kind)
	if err != nil {
		return h.mapError(c, err)
	}

	return response.Success(c, "Stock added successfully", inv.ToResponse())
}

// RemoveStock debits stock for a blood type
// @Summary Remove stock
// @Description Debit stock for a blood type (dispensing)
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bloodType path string true "Blood type"
// @Param body body StockRequest true "Quantity to remove"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /inventory/{bloodType}/remove [post]
func (h *InventoryHandler) RemoveStock(c *fiber.Ctx) error {
	var req StockRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	kind := req.TransactionType
	if kind == "" {
		kind = models.TxKindDispensed
	}

	inv, err := h.inventoryService.RemoveStock(c.Context(), bloodTypeParam(c), req.Quantity, kind)
	if err != nil {
		return h.mapError(c, err)
	}

	return response.Success(c, "Stock removed successfully", inv.ToResponse())
}

// ReserveStock earmarks available stock
// @Summary Reserve stock
// @Description Earmark available stock for a transfusion request
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bloodType path string true "Blood type"
// @Param body body StockRequest true "Quantity to reserve"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /inventory/{bloodType}/reserve [post]
func (h *InventoryHandler) ReserveStock(c *fiber.Ctx) error {
	var req StockRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	inv, err := h.inventoryService.ReserveStock(c.Context(), bloodTypeParam(c), req.Quantity)
	if err != nil {
		return h.mapError(c, err)
	}

	return response.Success(c, "Stock reserved successfully", inv.ToResponse())
}

// ReleaseStock returns reserved stock to the available pool
// @Summary Release reserved stock
// @Description Return earmarked stock to the available pool
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bloodType path string true "Blood type"
// @Param body body StockRequest true "Quantity to release"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /inventory/{bloodType}/release [post]
func (h *InventoryHandler) ReleaseStock(c *fiber.Ctx) error {
	var req StockRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	inv, err := h.inventoryService.ReleaseReservedStock(c.Context(), bloodTypeParam(c), req.Quantity)
	if err != nil {
		return h.mapError(c, err)
	}

	return response.Success(c, "Reserved stock released", inv.ToResponse())
}

// MarkExpired records the quantity awaiting disposal
// @Summary Mark expired stock
// @Description Record the expired quantity awaiting disposal
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bloodType path string true "Blood type"
// @Param body body StockRequest true "Expired quantity"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /inventory/{bloodType}/expire [post]
func (h *InventoryHandler) MarkExpired(c *fiber.Ctx) error {
	var req StockRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	inv, err := h.inventoryService.MarkExpired(c.Context(), bloodTypeParam(c), req.Quantity)
	if err != nil {
		return h.mapError(c, err)
	}

	return response.Success(c, "Expired stock marked", inv.ToResponse())
}

// DisposeExpired removes marked expired stock
// @Summary Dispose expired stock
// @Description Remove the marked expired quantity from stock
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bloodType path string true "Blood type"
// @Success 200 {object} response.Response
// @Router /inventory/{bloodType}/dispose [post]
func (h *InventoryHandler) DisposeExpired(c *fiber.Ctx) error {
	disposed, err := h.inventoryService.DisposeExpired(c.Context(), bloodTypeParam(c))
	if err != nil {
		return h.mapError(c, err)
	}

	return response.Success(c, "Expired stock disposed", fiber.Map{
		"disposed_quantity": disposed,
	})
}

// ResetDailyCounters resets daily counters for all blood types
// @Summary Reset daily counters
// @Description Zero the received/dispensed daily counters for all accounts
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /inventory/reset-daily [post]
func (h *InventoryHandler) ResetDailyCounters(c *fiber.Ctx) error {
	if err := h.inventoryService.ResetAllDailyCounters(c.Context()); err != nil {
		return h.mapError(c, err)
	}

	return response.Success(c, "Daily counters reset", nil)
}

// GetAlerts returns low and critical stock alerts
// @Summary Stock alerts
// @Description Get blood types at or below their thresholds
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /inventory/alerts [get]
func (h *InventoryHandler) GetAlerts(c *fiber.Ctx) error {
	alerts, err := h.inventoryService.GetAlerts(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load alerts")
	}

	return response.Success(c, "Alerts retrieved successfully", alerts)
}

// GetStats returns aggregated inventory statistics
// @Summary Inventory statistics
// @Description Get aggregated ledger figures across all blood types
// @Tags Inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /inventory/stats [get]
func (h *InventoryHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.inventoryService.GetStats(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to load statistics")
	}

	return response.Success(c, "Statistics retrieved successfully", stats)
}

// mapError maps stock ledger errors to HTTP responses
func (h *InventoryHandler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidBloodType):
		return response.BadRequest(c, "Invalid blood type")
	case errors.Is(err, domain.ErrInvalidAmount):
		return response.BadRequest(c, "Invalid quantity")
	case errors.Is(err, domain.ErrCapacityExceeded):
		return response.UnprocessableEntity(c, "Amount would exceed storage capacity")
	case errors.Is(err, domain.ErrInsufficientStock):
		return response.UnprocessableEntity(c, "Insufficient stock")
	case errors.Is(err, domain.ErrInsufficientAvailable):
		return response.UnprocessableEntity(c, "Insufficient available stock")
	case errors.Is(err, domain.ErrOverRelease):
		return response.UnprocessableEntity(c, "Release exceeds reserved stock")
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return response.Conflict(c, "Stock was modified concurrently, please retry")
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, "Blood type account not found")
	default:
		return response.InternalServerError(c, "Stock operation failed")
	}
}

// bloodTypeParam extracts and decodes the blood type path parameter
func bloodTypeParam(c *fiber.Ctx) string {
	raw := c.Params("bloodType")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// isStaff reports whether the authenticated user has a staff role
func isStaff(c *fiber.Ctx) bool {
	role, ok := c.Locals("role").(string)
	if !ok {
		return false
	}
	return role == models.RoleAdmin || role == models.RoleLab
}
